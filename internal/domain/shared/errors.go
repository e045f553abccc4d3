package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies a DomainError for callers that only care about the failure family
type ErrorKind string

const (
	// KindValidation is bad input rejected before any side effect
	KindValidation ErrorKind = "VALIDATION"
	// KindNotFound is a referenced entity or transaction that does not exist
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindStateConflict is an illegal transition or insufficient stock
	KindStateConflict ErrorKind = "STATE_CONFLICT"
	// KindPersistence is a failure of the underlying store
	KindPersistence ErrorKind = "PERSISTENCE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind      `json:"kind"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if len(e.Context) == 0 {
		if e.cause != nil {
			return e.Message + ": " + e.cause.Error()
		}
		return e.Message
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}
	msg := e.Message + " (" + strings.Join(parts, ", ") + ")"
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches two domain errors by code so callers can compare against the sentinels below
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy of the error carrying an extra context value
func (e *DomainError) With(key string, value any) *DomainError {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Context: ctx,
		cause:   e.cause,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates an INVALID_INPUT error for a single field
func NewValidationError(field, message string) *DomainError {
	return NewDomainError(KindValidation, ErrInvalidInput.Code, message).With("field", field)
}

// NewNotFoundError creates a NOT_FOUND error naming the entity kind and id
func NewNotFoundError(entity string, id any) *DomainError {
	return NewDomainError(KindNotFound, ErrNotFound.Code, entity+" not found").
		With("entity", entity).
		With("id", id)
}

// NewStateConflictError creates an INVALID_STATE error
func NewStateConflictError(message string) *DomainError {
	return NewDomainError(KindStateConflict, ErrInvalidState.Code, message)
}

// NewInsufficientStockError creates an INSUFFICIENT_STOCK error carrying the offending product
// together with the required and available quantities
func NewInsufficientStockError(productID any, productName string, required, available int) *DomainError {
	return NewDomainError(KindStateConflict, ErrInsufficientStock.Code, "insufficient stock for "+productName).
		With("product_id", productID).
		With("product_name", productName).
		With("required", required).
		With("available", available)
}

// NewPersistenceError wraps a store failure for the named operation
func NewPersistenceError(op string, err error) *DomainError {
	return &DomainError{
		Kind:    KindPersistence,
		Code:    ErrPersistence.Code,
		Message: op + " failed",
		Context: map[string]any{"op": op},
		cause:   err,
	}
}

// KindOf returns the kind of a domain error anywhere in err's chain, or "" if there is none
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found failure
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsStateConflict reports whether err is an illegal transition or stock conflict
func IsStateConflict(err error) bool { return KindOf(err) == KindStateConflict }

// IsPersistence reports whether err is a store failure
func IsPersistence(err error) bool { return KindOf(err) == KindPersistence }

// Common domain errors
var (
	ErrNotFound          = NewDomainError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrInvalidInput      = NewDomainError(KindValidation, "INVALID_INPUT", "Invalid input provided")
	ErrInvalidState      = NewDomainError(KindStateConflict, "INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError(KindStateConflict, "INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrPersistence       = NewDomainError(KindPersistence, "PERSISTENCE", "Storage operation failed")
)
