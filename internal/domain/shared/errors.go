package shared

import "errors"

// DomainError represents a generic domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ValidationError indicates that caller-supplied data violates an invariant.
// It is always recoverable locally and carries the offending field when known.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error without field context
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// NewFieldValidationError creates a validation error for a specific field
func NewFieldValidationError(code, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}

// ConflictError indicates that the requested state transition is not legal
// given the current state of the resource. CurrentStatus is included so the
// caller can remediate.
type ConflictError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	CurrentStatus string `json:"current_status,omitempty"`
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a conflict error
func NewConflictError(code, message string) *ConflictError {
	return &ConflictError{Code: code, Message: message}
}

// NewStatusConflictError creates a conflict error carrying the current status
func NewStatusConflictError(code, message, currentStatus string) *ConflictError {
	return &ConflictError{Code: code, Message: message, CurrentStatus: currentStatus}
}

// PersistenceError indicates that the underlying store failed or timed out
// during a write that was supposed to be atomic. It is not retried by the
// core; callers may retry the whole operation since validation always
// re-reads current state.
type PersistenceError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return "persistence failure during " + e.Op + ": " + e.Err.Error()
	}
	return "persistence failure during " + e.Op
}

// Unwrap exposes the underlying storage error
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps a storage error with the failed operation name
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// EnsurePersistence wraps a storage error in a PersistenceError carrying the
// failed operation name. Errors already belonging to the domain taxonomy pass
// through unchanged so their codes survive to the API surface.
func EnsurePersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) || IsValidation(err) || IsConflict(err) || IsPersistence(err) {
		return err
	}
	return NewPersistenceError(op, err)
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is (or wraps) a ConflictError
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsPersistence reports whether err is (or wraps) a PersistenceError
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrConcurrencyConflict = NewConflictError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInsufficientStock   = NewConflictError("INSUFFICIENT_STOCK", "Insufficient stock available")
)
