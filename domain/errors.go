package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrRoleNotFound    = errors.New("role not found")
)

// ArgumentError reports a missing or blank required argument.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

// RequireNotNil fails when v is nil.
func RequireNotNil[T any](name string, v *T) error {
	if v == nil {
		return &ArgumentError{Name: name, Reason: "must not be nil"}
	}
	return nil
}

// RequireNotBlank fails when s is empty or whitespace only.
func RequireNotBlank(name, s string) error {
	if strings.TrimSpace(s) == "" {
		return &ArgumentError{Name: name, Reason: "must not be blank"}
	}
	return nil
}
