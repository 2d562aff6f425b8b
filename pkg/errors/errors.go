package errors

import (
	"fmt"
)

var (
	// ErrInvalidTransition means the requested state change is not in the
	// allowed graph. This is a programming or race error and is always
	// surfaced, never swallowed.
	ErrInvalidTransition = fmt.Errorf("invalid state transition")

	// ErrNotOwner means a worker tried to mutate a task it doesn't hold.
	// Callers may treat this as a no-op retry opportunity.
	ErrNotOwner = fmt.Errorf("worker does not own task")

	// ErrNothingToClaim means no waiting task's reservations can be granted
	// right now. This is an expected outcome of claiming, not a fault.
	ErrNothingToClaim = fmt.Errorf("nothing to claim")

	ErrNotFound      = fmt.Errorf("not found")
	ErrNoTaskType    = fmt.Errorf("no task type specified")
	ErrNotRegistered = fmt.Errorf("no handler registered")
	ErrMaxExceeded   = fmt.Errorf("max length exceeded")
	ErrInvalidArg    = fmt.Errorf("invalid arg")
	ErrNotSupported  = fmt.Errorf("not supported")
)
