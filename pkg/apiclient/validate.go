package apiclient

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// preflight runs the configured validator over struct payloads. It returns
// the envelope message for the first failing field.
func (c *Client) preflight(payload any) (string, bool) {
	if c.validate == nil || isNil(payload) {
		return "", true
	}
	if reflect.Indirect(reflect.ValueOf(payload)).Kind() != reflect.Struct {
		return "", true
	}

	err := c.validate.Struct(payload)
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) && len(valErrs) > 0 {
		return valErrs[0].Field() + " " + formatValidationError(valErrs[0]), false
	}
	return "", true
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", ve.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", ve.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
