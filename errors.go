package fractal

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNotReady is returned by operations that require an initialized
	// engine.
	ErrNotReady = errors.New("fractal: engine not initialized")

	// ErrScaleClamped matches *ScaleClampedError via errors.Is. The
	// operation that reports it completed; the error only signals that
	// the requested scale was limited.
	ErrScaleClamped = errors.New("fractal: scale clamped")
)

// InvalidArgumentError reports a rejected argument. The operation that
// returns it performed no state change.
type InvalidArgumentError struct {
	Op     string // operation that rejected the argument
	Detail string
	Err    error // underlying cause, if any
}

func (e *InvalidArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fractal: %s: invalid argument: %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("fractal: %s: invalid argument: %s", e.Op, e.Detail)
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.Err
}

// invalidArgf builds an InvalidArgumentError with a formatted detail.
func invalidArgf(op, format string, args ...any) *InvalidArgumentError {
	return &InvalidArgumentError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// ScaleClampedError reports that a zoom hit a scale limit. It is
// non-fatal: the zoom completed at the clamped scale. Detect it with
// errors.Is(err, ErrScaleClamped).
type ScaleClampedError struct {
	Requested float64 // scale the zoom asked for
	Clamped   float64 // scale actually applied
}

func (e *ScaleClampedError) Error() string {
	return fmt.Sprintf("fractal: scale clamped from %g to %g", e.Requested, e.Clamped)
}

func (e *ScaleClampedError) Is(target error) bool {
	return target == ErrScaleClamped
}

// RenderError reports a failed render or presentation. The viewport
// keeps the state the failed operation committed; callers retry by
// issuing a new operation, not by unwinding.
type RenderError struct {
	Stage string // "render" or "present"
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("fractal: %s failed: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
