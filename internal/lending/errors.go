package lending

import (
	"errors"
	"fmt"
)

// Sentinel errors for the admission gate and lifecycle transitions.
// Handlers translate these into HTTP responses; the engine never
// swallows a violated guard.
var (
	// ErrItemNotFound: the referenced item does not exist.
	ErrItemNotFound = errors.New("item not found")
	// ErrRequestNotFound: the referenced borrow request does not exist.
	ErrRequestNotFound = errors.New("borrow request not found")
	// ErrForbidden: the authenticated actor is not allowed to perform
	// this action on this row (wrong owner or wrong borrower).
	ErrForbidden = errors.New("forbidden")
	// ErrItemUnavailable: the item is currently lent out.
	ErrItemUnavailable = errors.New("item is not available for borrowing")
	// ErrSelfBorrow: a user may not borrow their own item.
	ErrSelfBorrow = errors.New("cannot borrow your own item")
	// ErrDuplicatePending: the borrower already has a pending request
	// for this item.
	ErrDuplicatePending = errors.New("pending request already exists for this item")
	// ErrItemOnLoan: the item cannot be deleted while an approved
	// request references it.
	ErrItemOnLoan = errors.New("item is currently being borrowed")
)

// InvalidTransitionError reports a state-guard failure.  It always
// carries the request's current status and the transition that was
// attempted so callers can see why the action was refused.
type InvalidTransitionError struct {
	Current   string
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s request in status %q", e.Attempted, e.Current)
}

// NewInvalidTransition builds an InvalidTransitionError.
func NewInvalidTransition(current, attempted string) error {
	return &InvalidTransitionError{Current: current, Attempted: attempted}
}

// IsInvalidTransition reports whether err is a state-guard failure.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}

// ValidationError reports malformed input with field-level detail.  It
// belongs to the request-intake boundary; the engine assumes inputs
// already passed through it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
