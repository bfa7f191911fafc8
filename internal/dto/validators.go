package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	alphanumUnderscorePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	containsLetterPattern     = regexp.MustCompile(`[a-zA-Z]`)
)

// RegisterValidators installs the custom username rules on a validator
// instance. Must run before any auth DTO is validated.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("alphanumunderscore", func(fl validator.FieldLevel) bool {
		return alphanumUnderscorePattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}

	return v.RegisterValidation("containsletter", func(fl validator.FieldLevel) bool {
		return containsLetterPattern.MatchString(fl.Field().String())
	})
}
