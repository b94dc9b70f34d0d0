package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates the integrated pose stopped being finite.
	ErrInvalidState = errors.New("sim: invalid pose (NaN or Inf detected)")

	// ErrNoController indicates Run was called on a simulator without one.
	ErrNoController = errors.New("sim: no controller")

	// ErrInvalidLength indicates a malformed termination policy.
	ErrInvalidLength = errors.New("sim: invalid simulation length")
)

// SimError wraps an error with the tick it happened on.
type SimError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %s", e.Tick, e.Time, e.Wrapped)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
