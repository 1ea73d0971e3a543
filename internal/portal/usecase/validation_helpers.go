package usecase

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"consultancy-portal/internal/shared/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs struct tag validation and converts failures to an invalid-input AppError.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewValidationError("invalid request").WithCause(err)
	}
	ve := errors.NewValidationErrors()
	for _, fe := range fieldErrs {
		ve.Add(jsonName(fe.Field()), describe(fe), fe.Value())
	}
	return ve.ToAppError()
}

func describe(fe validator.FieldError) string {
	field := jsonName(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "url":
		return fmt.Sprintf("%s must be a URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
