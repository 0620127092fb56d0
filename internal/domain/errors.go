package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDuration      = errors.New("invalid time value or unit")
	ErrUnknownUnit          = errors.New("unknown time unit")
	ErrSubmissionInProgress = errors.New("a submission for this scope is already in progress")
	ErrScopeRequired        = errors.New("customerIds is required")
	ErrEmptyScope           = errors.New("customerIds must not be empty")
	ErrLockNotHeld          = errors.New("submission lock not held")
)

// InvalidDurationError reports a quantity/unit pair whose duration is not a finite,
// representable number of milliseconds.
type InvalidDurationError struct {
	Quantity float64
	Unit     FollowUpUnit
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration: %v %s", e.Quantity, e.Unit)
}

func (e *InvalidDurationError) Unwrap() error {
	return ErrInvalidDuration
}
