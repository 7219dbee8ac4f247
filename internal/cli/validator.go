package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput marks input rejected before any service call.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New()

// validateInput checks i against its struct tags and joins every field
// failure into a single ErrInvalidInput.
func validateInput(i any) error {
	if err := validate.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

type categoryInput struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

// categoryPatchInput validates only the fields supplied on update.
type categoryPatchInput struct {
	Name        *string `validate:"omitempty,max=100"`
	Description *string `validate:"omitempty,max=500"`
}

type employeeInput struct {
	Name     string `validate:"required,max=120"`
	Email    string `validate:"required,email"`
	Phone    string `validate:"omitempty,max=30"`
	Position string `validate:"required,oneof=manager cashier stock"`
	Password string `validate:"required,min=8,max=72"`
}

// employeePatchInput has no upper bound on Password since a stored argon2id
// digest may be re-sent; the hasher rejects long plaintext with ErrTooLong.
type employeePatchInput struct {
	Name     *string `validate:"omitempty,max=120"`
	Email    *string `validate:"omitempty,email"`
	Phone    *string `validate:"omitempty,max=30"`
	Position *string `validate:"omitempty,oneof=manager cashier stock"`
	Password *string `validate:"omitempty,min=8"`
}

type loginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type passwordChangeInput struct {
	Current string `validate:"required"`
	Next    string `validate:"required,min=8,max=72"`
}
