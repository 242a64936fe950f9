package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Mode selects which fields the form collects.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// PasswordMinLength is the canonical minimum password length.
const PasswordMinLength = 8

// User-facing messages, one per failing rule.
const (
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgPasswordRequired = "Password is required"
	MsgPasswordWeak     = "Password must be at least 8 characters and include an upper-case letter, a lower-case letter and a digit"
	MsgUsernameRequired = "Username is required"
	MsgUsernameShort    = "Username must be at least 3 characters"
	MsgPhoneRequired    = "Phone number is required"
	MsgPhoneLength      = "Phone number must be 10 digits"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Input is a snapshot of the form's field values.
type Input struct {
	Email    string
	Password string
	Username string
	Phone    string
}

type credentials struct {
	Email    string `validate:"required,email_address"`
	Password string `validate:"required,password_policy"`
}

type registration struct {
	Email    string `validate:"required,email_address"`
	Password string `validate:"required,password_policy"`
	Username string `validate:"required,username"`
	Phone    string `validate:"required,phone10"`
}

// Validator wraps a configured go-playground validator. It is safe for
// concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the storefront's custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails on duplicate or empty tags, which would be a
	// programming error here.
	mustRegister(v, "email_address", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	mustRegister(v, "password_policy", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
	mustRegister(v, "phone10", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	mustRegister(v, "supported_image", validateImageType)

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("validation: register " + tag + ": " + err.Error())
	}
}

// Struct validates any struct against its `validate` tags.
func (v *Validator) Struct(s any) error {
	return v.validate.Struct(s)
}

// Validate checks in for the given mode and returns the accumulated errors.
// It never touches the Submit slot.
func (v *Validator) Validate(mode Mode, in Input) FormErrors {
	var err error
	if mode == ModeRegister {
		err = v.validate.Struct(registration{
			Email:    in.Email,
			Password: in.Password,
			Username: in.Username,
			Phone:    in.Phone,
		})
	} else {
		err = v.validate.Struct(credentials{Email: in.Email, Password: in.Password})
	}

	var out FormErrors
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return out
	}
	for _, fe := range fieldErrs {
		field, msg := describe(fe)
		if out.Get(field) == "" {
			out.Set(field, msg)
		}
	}
	return out
}

func describe(fe validator.FieldError) (Field, string) {
	required := fe.Tag() == "required"
	switch fe.StructField() {
	case "Email":
		if required {
			return FieldEmail, MsgEmailRequired
		}
		return FieldEmail, MsgEmailInvalid
	case "Password":
		if required {
			return FieldPassword, MsgPasswordRequired
		}
		return FieldPassword, MsgPasswordWeak
	case "Username":
		if required {
			return FieldUsername, MsgUsernameRequired
		}
		return FieldUsername, MsgUsernameShort
	case "Phone":
		if required {
			return FieldPhone, MsgPhoneRequired
		}
		return FieldPhone, MsgPhoneLength
	}
	return FieldSubmit, fe.Error()
}

var std = New()

// Validate checks in with the package's shared Validator.
func Validate(mode Mode, in Input) FormErrors {
	return std.Validate(mode, in)
}

// Default returns the package's shared Validator.
func Default() *Validator {
	return std
}

// ValidEmail reports whether s looks like name@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPassword applies the canonical policy: at least PasswordMinLength
// characters with an upper-case letter, a lower-case letter and a digit.
func ValidPassword(s string) bool {
	if utf8.RuneCountInString(s) < PasswordMinLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// ValidUsername reports whether s has at least three characters once trimmed.
func ValidUsername(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= 3
}

// ValidPhone reports whether s carries exactly PhoneDigits digits.
func ValidPhone(s string) bool {
	return len(NormalizePhone(s)) == PhoneDigits
}

func validateImageType(fl validator.FieldLevel) bool {
	return strings.HasPrefix(fl.Field().String(), "image/")
}
