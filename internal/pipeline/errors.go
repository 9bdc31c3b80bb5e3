package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors for the flight lifecycle pipeline. Handlers map these to
// HTTP status codes; services wrap them with context via fmt.Errorf("%w").
var (
	// ErrDuplicateBid is returned when a pilot already holds a non-terminal bid.
	ErrDuplicateBid = errors.New("pilot already has an active bid")

	// ErrAlreadyConsumed is returned on a second consume of the same bid.
	ErrAlreadyConsumed = errors.New("bid has already been consumed")

	// ErrExpired is returned when a bid is read or consumed past its TTL.
	ErrExpired = errors.New("bid has expired")

	// ErrInvalidTransition is returned for any illegal state-machine move,
	// including cancelling a consumed bid or re-deciding a terminal report.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrFleetViolation is returned when a restricted aircraft type is used.
	ErrFleetViolation = errors.New("fleet violation")

	// ErrMissingProof is returned for manual submissions without a tracker
	// link or proof image.
	ErrMissingProof = errors.New("proof artifact required for manual submission")

	// ErrInsufficientFunds is returned when the vault cannot cover a repair.
	ErrInsufficientFunds = errors.New("insufficient vault funds")

	// ErrConcurrentModification is returned after the bounded internal retry
	// on an optimistic-concurrency conflict is exhausted. Callers may retry
	// the whole operation once.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries a user-correctable reason for a malformed request.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validationf builds a ValidationError with a formatted reason.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
