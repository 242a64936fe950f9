package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hongminglow/valide/internal/catalog"
	"github.com/hongminglow/valide/internal/config"
	"github.com/hongminglow/valide/internal/identity"
	"github.com/hongminglow/valide/internal/logging"
	"github.com/hongminglow/valide/internal/metrics"
	"github.com/hongminglow/valide/internal/session"
)

const usage = `Usage: valide [global flags] <command> [flags] [args]

Commands:
  login <email>        sign in and save the session
  register <email>     create an account and save the session
  logout               sign out and forget the saved session
  status               check the saved session with the server
  whoami               print the saved user without contacting the server
  arrivals             list new arrivals
  brand <name>         list one designer's products
  designers            list the designer directory
  cart <product-id>    add a product to your cart

Global flags:
`

// app is one invocation of the CLI with its collaborators resolved.
type app struct {
	term     *terminal
	cfg      config.CLI
	identity *identity.Client
	catalog  *catalog.Client
	storage  *session.FileStorage
	provider *session.Provider
	logger   *zap.Logger
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":     runLogin,
	"register":  runRegister,
	"logout":    runLogout,
	"status":    runStatus,
	"whoami":    runWhoami,
	"arrivals":  runArrivals,
	"brand":     runBrand,
	"designers": runDesigners,
	"cart":      runCart,
}

func run(ctx context.Context, args []string, t *terminal) error {
	flags := pflag.NewFlagSet("valide", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.SetOutput(t.errOut)
	configPath := flags.String("config", "", "path to the YAML config file (default $XDG_CONFIG_HOME/valide/config.yaml)")
	apiURL := flags.String("api", "", "identity API base URL")
	catalogURL := flags.String("catalog-api", "", "catalog API base URL (defaults to --api)")
	sessionFile := flags.String("session-file", "", "where the session is stored")
	verbose := flags.BoolP("verbose", "v", false, "log requests and session changes")
	flags.Usage = func() {
		fmt.Fprint(t.errOut, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return &exitError{code: 2}
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		flags.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}

	path := *configPath
	if path == "" {
		path = config.DefaultCLIPath()
	}
	cfg, err := config.LoadCLI(path, *configPath != "")
	if err != nil {
		return err
	}
	if *apiURL != "" {
		cfg.IdentityAPIURL = *apiURL
	}
	if *catalogURL != "" {
		cfg.CatalogAPIURL = *catalogURL
	}
	if cfg.CatalogAPIURL == "" {
		cfg.CatalogAPIURL = cfg.IdentityAPIURL
	}
	if *sessionFile != "" {
		cfg.SessionFile = *sessionFile
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = session.DefaultFilePath()
	}
	cfg.Verbose = cfg.Verbose || *verbose

	a := newApp(t, cfg)
	defer func() { _ = a.logger.Sync() }()
	return cmd(ctx, a, rest[1:])
}

func newApp(t *terminal, cfg config.CLI) *app {
	logger := logging.Quiet(cfg.Verbose)
	id := identity.NewClient(cfg.IdentityAPIURL, identity.WithHTTPClient(metrics.InstrumentedClient("identity")))
	storage := session.NewFileStorage(cfg.SessionFile)
	provider := session.NewProvider(storage, id, logger)
	provider.OnChange(func(s session.State) {
		logger.Debug("session changed", zap.Bool("logged_in", s.LoggedIn), zap.String("path", storage.Path()))
	})
	return &app{
		term:     t,
		cfg:      cfg,
		identity: id,
		catalog:  catalog.NewClient(cfg.CatalogAPIURL, catalog.WithHTTPClient(metrics.InstrumentedClient("catalog"))),
		storage:  storage,
		provider: provider,
		logger:   logger,
	}
}

// commandFlags returns a flag set for one subcommand that reports errors to
// the terminal.
func (a *app) commandFlags(name, synopsis string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.term.errOut)
	fs.Usage = func() {
		fmt.Fprintf(a.term.errOut, "Usage: valide %s %s\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.term.out, format, args...)
}

func (a *app) warnf(format string, args ...any) {
	fmt.Fprintf(a.term.errOut, format, args...)
}

func oneArg(fs *pflag.FlagSet, what string) (string, error) {
	args := fs.Args()
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fs.Usage()
		return "", fmt.Errorf("%s is required", what)
	}
	return args[0], nil
}
