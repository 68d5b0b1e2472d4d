package service

import (
	"errors"
	"strings"

	"go-pos-ws/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionRevoked     = errors.New("session expired (signed out or logged in on another device)")
	ErrProductNotFound    = errors.New("product not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrMembershipInactive = errors.New("membership is inactive")
	ErrForbidden          = errors.New("you do not have permission for this operation")
	ErrWorkspaceMismatch  = errors.New("workspace does not match the active membership")
)

// ValidationError is a rejected input, raised before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// validate runs struct tags on req and converts the first failure.
func validate(req interface{}) error {
	fe := validator.First(req)
	if fe == nil {
		return nil
	}
	field := fe.FailedField
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	msg := "failed on '" + fe.Tag + "'"
	if fe.Value != "" {
		msg += " (" + fe.Value + ")"
	}
	return &ValidationError{Field: field, Message: msg}
}
