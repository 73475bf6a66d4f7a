package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/omergehad405/EduMaster/internal/failure"
)

// InputError rejects login or registration input before any request is sent.
type InputError struct {
	Fields map[string]string // field name → problem
	Err    error
}

func (e *InputError) Error() string {
	return "invalid input: " + e.UserMessage()
}

func (e *InputError) UserMessage() string {
	keys := make([]string, 0, len(e.Fields))
	for _, f := range []string{"Username", "Email", "Password", "AvatarPath"} {
		if msg, ok := e.Fields[f]; ok {
			keys = append(keys, msg)
		}
	}
	return strings.Join(keys, "; ")
}

func (e *InputError) Unwrap() error { return e.Err }

func (e *InputError) Is(target error) bool {
	return target == failure.ErrValidation
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// check validates v and converts validator errors into an *InputError.
func check(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return &InputError{Fields: fields, Err: verrs}
}

func describe(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	if fe.Field() == "AvatarPath" {
		name = "avatar"
	}
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "file":
		return name + " must be an existing file"
	default:
		return name + " is invalid"
	}
}
