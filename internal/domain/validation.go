package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validation struct {
	validator *validator.Validate
}

func NewValidation() *Validation {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("notblank", validateNotBlank)
	return &Validation{validator: v}
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidationError wraps the validator's FieldError
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (v ValidationError) Error() string {
	return fmt.Sprintf("Field '%s': %s", v.Field, v.Message)
}

// ValidationErrors is a slice of ValidationError
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	return strings.Join(ve.Messages(), "; ")
}

// Messages converts the errors to a slice of strings
func (ve ValidationErrors) Messages() []string {
	msgs := make([]string, 0, len(ve))
	for _, v := range ve {
		msgs = append(msgs, v.Error())
	}
	return msgs
}

func (v *Validation) Validate(i interface{}) ValidationErrors {
	var errs ValidationErrors

	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}

	for _, fe := range fieldErrors {
		errs = append(errs, ValidationError{
			Field:   fe.Namespace(),
			Message: fmt.Sprintf("failed on the '%s' tag", fe.Tag()),
		})
	}

	return errs
}
