package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
	"github.com/SAP-F-2025/scholarship-service/internal/validator"
)

// NotFoundError reports a missing resource. It matches repositories.ErrNotFound.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func NewNotFoundError(resource string, id interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return repositories.ErrNotFound
}

// ConflictError reports a write that collided with existing state
type ConflictError struct {
	Resource string
	Message  string
	Err      error
}

func NewConflictError(resource, message string, err error) *ConflictError {
	return &ConflictError{Resource: resource, Message: message, Err: err}
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s conflict: %s: %v", e.Resource, e.Message, e.Err)
	}
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
}

func (e *ConflictError) Unwrap() []error {
	if e.Err != nil {
		return []error{repositories.ErrConflict, e.Err}
	}
	return []error{repositories.ErrConflict}
}

// NewValidationError builds a single field error
func NewValidationError(field, message string, value interface{}) *validator.ValidationError {
	return &validator.ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    "business_logic",
	}
}

func IsValidationError(err error) bool {
	var many validator.ValidationErrors
	var one *validator.ValidationError
	return errors.As(err, &many) || errors.As(err, &one)
}

func IsNotFoundError(err error) bool {
	return repositories.IsNotFoundError(err)
}

func IsConflictError(err error) bool {
	return repositories.IsConflictError(err)
}
