// Package validation holds the shared go-playground validator and the custom
// rules registered on it.
package validation

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailPattern accepts local@domain.tld with a TLD of at least two letters.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	return v
}

// IsEmail reports whether s matches the contact form's email pattern.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	return defaultValidator.Struct(v)
}

// FailedTags returns the failing tag of every invalid field, in field order.
// Errors that are not validation errors yield nil.
func FailedTags(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}
	tags := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		tags = append(tags, fe.Tag())
	}
	return tags
}
