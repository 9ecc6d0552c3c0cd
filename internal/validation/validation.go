package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"photo-inventory/internal/apperr"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := validate.RegisterValidation("notblank", notBlank); err != nil {
		panic(fmt.Sprintf("register notblank validator: %v", err))
	}
}

// Struct validates v against its validate tags and converts failures into an
// apperr validation error listing every offending field.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.Internal("validation failed", err)
	}

	return apperr.Validation(Summary(validationErrors), FormatValidationErrors(validationErrors)...)
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(errs validator.ValidationErrors) []apperr.FieldError {
	fields := make([]apperr.FieldError, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, apperr.FieldError{
			Field:   e.Field(),
			Message: Message(e),
		})
	}
	return fields
}

// Summary renders the first failure as a one-line message, e.g.
// "password must be at least 8 characters long".
func Summary(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "validation failed"
	}
	return errs[0].Field() + " " + Message(errs[0])
}

// Message returns the human readable text for a single field failure.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return "is invalid"
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
