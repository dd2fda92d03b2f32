// Package validation declares the request schemas for every resource action
// and checks field presence, bounds and enum membership before anything
// reaches persistence.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the structured list of field-level failures returned to clients.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report field names as their JSON tags.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Dynamic upper bound for construction years.
	_ = v.RegisterValidation("max_current_year", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year())
	})

	v.RegisterStructValidation(validateRegisterRoles, RegisterRequest{})
	v.RegisterStructValidation(validateBudgetRange, BuyerPreferencesRequest{})

	return v
}

// Check validates a request struct and converts validator output into
// field-level messages.
func Check(req any) Errors {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{{Field: "", Message: err.Error()}}
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe), Message: messageFor(fe)})
	}
	return out
}

// fieldPath strips the request type prefix from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "uri", "url":
		return "must be a valid URI"
	case "uuid":
		return "must be a valid identifier"
	case "max_current_year":
		return fmt.Sprintf("must not exceed the current year (%d)", time.Now().Year())
	case "excluded_with":
		return "is not allowed for this role"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
