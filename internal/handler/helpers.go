package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// fieldErrors flattens validator errors into the field→message map carried
// in the response envelope.
func fieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	out := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		field := strings.ToLower(fieldError.Field())
		switch fieldError.Tag() {
		case "required", "eq":
			out[field] = field + " is required"
		case "min":
			out[field] = field + " must be at least " + fieldError.Param() + " characters long"
		case "max":
			out[field] = field + " must not exceed " + fieldError.Param() + " characters"
		case "len":
			out[field] = "invalid " + field
		case "email":
			out[field] = "invalid email address"
		case "url":
			out[field] = "please enter a valid url"
		case "oneof":
			out[field] = field + " must be one of: " + fieldError.Param()
		case "alphanumunderscore":
			out[field] = field + " can only contain letters, numbers, and underscores"
		case "containsletter":
			out[field] = field + " must contain at least one letter"
		case "numeric":
			out[field] = field + " must contain only numbers"
		default:
			out[field] = "invalid " + field
		}
	}
	return out
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
