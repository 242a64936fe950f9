package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hongminglow/valide/internal/authflow"
	"github.com/hongminglow/valide/internal/session"
	"github.com/hongminglow/valide/internal/validation"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := a.commandFlags("login", "<email> [--password-file path]")
	passwordFile := fs.String("password-file", "", "read the password from this file instead of prompting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	email, err := oneArg(fs, "email")
	if err != nil {
		return err
	}
	password, err := a.term.readPassword(*passwordFile)
	if err != nil {
		return err
	}

	c := a.controller()
	c.SetFields(authflow.Fields{Email: email, Password: password})
	return a.submit(ctx, c)
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := a.commandFlags("register", "<email> --username name --phone number [flags]")
	passwordFile := fs.String("password-file", "", "read the password from this file instead of prompting")
	username := fs.String("username", "", "account username (at least 3 characters)")
	phone := fs.String("phone", "", "10-digit phone number")

	addr := a.cfg.Address
	fs.StringVar(&addr.Street, "street", addr.Street, "street address")
	fs.StringVar(&addr.City, "city", addr.City, "city")
	fs.StringVar(&addr.State, "state", addr.State, "state or region")
	fs.StringVar(&addr.Country, "country", addr.Country, "country")
	fs.StringVar(&addr.PostalCode, "postal-code", addr.PostalCode, "postal code")

	prefs := a.cfg.Preferences
	fs.StringVar(&prefs.Language, "language", prefs.Language, "preferred language")
	fs.StringVar(&prefs.Currency, "currency", prefs.Currency, "preferred currency")
	fs.BoolVar(&prefs.Email.Orders, "email-orders", prefs.Email.Orders, "email me about orders")
	fs.BoolVar(&prefs.Email.Promotions, "email-promotions", prefs.Email.Promotions, "email me about promotions")
	fs.BoolVar(&prefs.Email.NewArrivals, "email-new-arrivals", prefs.Email.NewArrivals, "email me about new arrivals")
	fs.BoolVar(&prefs.SMS.Orders, "sms-orders", prefs.SMS.Orders, "text me about orders")

	if err := fs.Parse(args); err != nil {
		return err
	}
	email, err := oneArg(fs, "email")
	if err != nil {
		return err
	}
	password, err := a.term.readPassword(*passwordFile)
	if err != nil {
		return err
	}

	c := a.controller()
	if err := c.SetMode(validation.ModeRegister); err != nil {
		return err
	}
	c.SetField(validation.FieldEmail, email)
	c.SetField(validation.FieldPassword, password)
	c.SetField(validation.FieldUsername, *username)
	c.SetField(validation.FieldPhone, *phone)
	c.SetAddress(addr)
	c.SetPreferences(prefs)
	return a.submit(ctx, c)
}

func (a *app) controller() *authflow.Controller {
	return authflow.New(a.identity, a.provider,
		authflow.WithLogger(a.logger),
		authflow.WithNotifier(authflow.NotifierFunc(func(msg string) {
			a.warnf("%s\n", msg)
		})),
		authflow.WithNavigator(authflow.NavigatorFunc(func(string) {
			if s, ok := a.provider.Current(); ok {
				a.printf("Logged in as %s\n", s.User.Username)
			}
			a.warnf("Session saved to %s\n", a.storage.Path())
		})),
	)
}

// submit runs the controller and reports field errors one per line.
func (a *app) submit(ctx context.Context, c *authflow.Controller) error {
	err := c.Submit(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, authflow.ErrInvalidForm) {
		errs := c.Errors()
		for _, f := range validation.Fields {
			if msg := errs.Get(f); msg != "" {
				a.warnf("%s: %s\n", f, msg)
			}
		}
		return &exitError{code: 2}
	}
	// The notifier has already shown the message.
	a.logger.Debug("submission failed", zap.Error(err))
	return &exitError{code: 1}
}

func runLogout(ctx context.Context, a *app, args []string) error {
	fs := a.commandFlags("logout", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	hadToken := a.provider.Token() != ""
	err := a.provider.Logout(ctx)
	if errors.Is(err, session.ErrClear) {
		return fmt.Errorf("clearing %s: %w", a.storage.Path(), err)
	}
	if err != nil {
		a.warnf("warning: server logout failed: %v\n", err)
	}
	if !hadToken {
		a.printf("Not logged in\n")
		return nil
	}
	a.printf("Logged out\n")
	return nil
}

func runStatus(ctx context.Context, a *app, args []string) error {
	fs := a.commandFlags("status", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !a.provider.Refresh(ctx) {
		a.printf("Not logged in\n")
		return &exitError{code: 1}
	}
	s, _ := a.provider.Current()
	a.printf("Logged in as %s\n", s.User.Username)
	return nil
}

func runWhoami(_ context.Context, a *app, args []string) error {
	fs := a.commandFlags("whoami", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, ok := a.provider.Current()
	if !ok {
		a.printf("Not logged in\n")
		return &exitError{code: 1}
	}
	a.printf("%s\n", s.User.Username)
	if s.User.Email != "" {
		a.printf("email: %s\n", s.User.Email)
	}
	if s.User.Phone != "" {
		a.printf("phone: %s\n", validation.FormatPhone(s.User.Phone))
	}
	if s.User.ID != "" {
		a.printf("id:    %s\n", s.User.ID)
	}
	return nil
}
