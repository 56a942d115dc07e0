package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 128
	UsernameMinLength = 3
)

var (
	validate = newValidator()

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return CheckPassword(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) >= UsernameMinLength && usernamePattern.MatchString(s)
	})
	return v
}

// CheckPassword enforces the account password policy: 8 to 128 characters
// with at least one letter, one digit and one symbol.
func CheckPassword(pw string) error {
	n := utf8.RuneCountInString(pw)
	if n < PasswordMinLength || n > PasswordMaxLength {
		return fmt.Errorf("must be between %d and %d characters", PasswordMinLength, PasswordMaxLength)
	}

	var letter, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	switch {
	case !letter:
		return errors.New("must contain a letter")
	case !digit:
		return errors.New("must contain a digit")
	case !symbol:
		return errors.New("must contain a symbol")
	}
	return nil
}

// validateStruct runs the struct tags of v and converts failures into a
// *ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = message(fe)
		}
	}
	return &ValidationError{Fields: fields}
}

// validateVar validates a single value reported under field.
func validateVar(field string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		return invalidField(field, message(ves[0]))
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must be at least " + fe.Param()
	case "password":
		if err := CheckPassword(fe.Value().(string)); err != nil {
			return err.Error()
		}
		return "does not meet the password policy"
	case "username":
		return fmt.Sprintf("must be at least %d characters of letters, digits, '_' or '-'", UsernameMinLength)
	}
	return "is invalid"
}
