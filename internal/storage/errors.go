package storage

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// ValidationError is returned for malformed input before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidTransitionError is returned when a status change or a lock/accept
// guard is violated. From and To are the current and the requested state.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s: invalid transition from %q to %q", e.Entity, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func InvalidTransition(entity, from, to, reason string) error {
	return &InvalidTransitionError{Entity: entity, From: from, To: to, Reason: reason}
}

// QuantityExceededError is returned when a delivery or an execution entry
// would overfill its line.
type QuantityExceededError struct {
	LineID    int64
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *QuantityExceededError) Error() string {
	return fmt.Sprintf("line %d: quantity %s exceeds remaining %s",
		e.LineID, e.Requested.String(), e.Remaining.String())
}

// ConflictError reports a duplicate unique key or a concurrent state change.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return ErrConflict }

func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}
