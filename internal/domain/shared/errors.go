package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes shared across bounded contexts
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeStockConflict        = "STOCK_CONFLICT"
	CodePersistence          = "PERSISTENCE_ERROR"
	CodeSync                 = "SYNC_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeInvalidTransition    = "INVALID_STATE_TRANSITION"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so sentinel comparisons survive wrapping
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if errors.As(target, &t) {
		return t.Code == e.Code && (t.Message == e.Message || t.Message == "")
	}
	return false
}

// WithDetail returns a copy of the error carrying an extra detail
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports input rejected before any state change
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewStockConflictError reports cart lines whose quantity exceeds live stock.
// The offending product names are carried in Details["products"].
func NewStockConflictError(productNames []string) *DomainError {
	names := append([]string(nil), productNames...)
	err := NewDomainError(CodeStockConflict,
		"Insufficient stock for: "+strings.Join(names, ", "))
	return err.WithDetail("products", names)
}

// NewPersistenceError wraps a store failure. The outcome of the write is
// unknown and the caller should refresh before retrying.
func NewPersistenceError(op string, cause error) *DomainError {
	return &DomainError{
		Code:    CodePersistence,
		Message: "Failed to " + op + ", please refresh and retry",
		Details: map[string]any{"retryable": true},
		cause:   cause,
	}
}

// NewSyncError reports a dropped or failing realtime subscription
func NewSyncError(cause error) *DomainError {
	return &DomainError{
		Code:    CodeSync,
		Message: "Realtime subscription interrupted",
		cause:   cause,
	}
}

// StockConflictProducts extracts the offending product names from a
// stock conflict error. Returns nil for any other error.
func StockConflictProducts(err error) []string {
	var de *DomainError
	if !errors.As(err, &de) || de.Code != CodeStockConflict {
		return nil
	}
	names, _ := de.Details["products"].([]string)
	return names
}

// IsCode reports whether err is a DomainError with the given code
func IsCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists        = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrUnauthorized         = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden            = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrConfirmationRequired = NewDomainError(CodeConfirmationRequired, "This action requires explicit confirmation")
	ErrInsufficientStock    = NewDomainError(CodeStockConflict, "Insufficient stock available")
	ErrCheckoutInProgress   = NewDomainError(CodeConflict, "A checkout with this idempotency key is already in progress")
)
