// Package domain defines domain-specific errors.
// The render core never returns errors; these cover the host around it.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that hosts and adapters can return.
var (
	// ErrSourceRunning is returned when a feature source is started twice.
	ErrSourceRunning = errors.New("feature source already running")

	// ErrSourceClosed is returned when a stopped feature source is started again.
	ErrSourceClosed = errors.New("feature source closed")

	// ErrNoTempoTag is returned when an audio file carries no BPM tag.
	ErrNoTempoTag = errors.New("no tempo tag found")

	// ErrInvalidTempoTag is returned when a BPM tag cannot be parsed.
	ErrInvalidTempoTag = errors.New("invalid tempo tag")

	// ErrSchedulerClosed is returned when a closed scheduler is run again.
	ErrSchedulerClosed = errors.New("scheduler closed")

	// ErrBusClosed is returned when an event bus is closed twice.
	ErrBusClosed = errors.New("event bus closed")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string      // Field that failed validation
	Value   interface{} // Value that failed validation
	Message string      // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "FeatureService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
