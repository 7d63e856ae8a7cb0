package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateForm checks the field constraints declared on a form struct and
// returns one readable message covering every failed field.
func ValidateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describeFieldError(fe))
	}
	return errors.New(strings.Join(parts, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	name := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

func fieldLabel(field string) string {
	switch field {
	case "NumSeats":
		return "number of seats"
	case "DurationMinutes":
		return "duration"
	case "TotalSeats":
		return "total seats"
	default:
		return strings.ToLower(field)
	}
}
