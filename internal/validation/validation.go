// Package validation wires go-playground/validator with the rules shared by
// the usecases and the HTTP binding layer.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Register adds the custom tags to v
func Register(v *validator.Validate) error {
	return v.RegisterValidation("notblank", validators.NotBlank)
}

// Validator returns the process wide validator
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := Register(validate); err != nil {
			panic(err)
		}
	})
	return validate
}

// Struct validates s and folds every failure into domain.ErrValidation
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

// Var validates a single value against tag
func Var(field string, value any, tag string) error {
	if err := Validator().Var(value, tag); err != nil {
		return fmt.Errorf("%w: %s is invalid", domain.ErrValidation, strings.ToLower(field))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "notblank", "required":
		return field + " is required"
	case "oneof":
		return field + " must be one of " + fe.Param()
	case "max":
		return field + " is too long"
	default:
		return field + " is invalid"
	}
}
