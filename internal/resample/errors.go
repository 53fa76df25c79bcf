package resample

import "errors"

var (
	// ErrLengthMismatch indicates x and y tables of different length.
	ErrLengthMismatch = errors.New("resample: lengths don't match")

	// ErrNotIncreasing indicates a source time base that is not strictly increasing.
	ErrNotIncreasing = errors.New("resample: source x must have increasing values")

	// ErrTooFewPoints indicates a table too short for cubic interpolation.
	ErrTooFewPoints = errors.New("resample: too few points for a cubic spline")

	// ErrExtrapolation indicates target times outside the source domain
	// while extrapolation is disabled.
	ErrExtrapolation = errors.New("resample: trying to extrapolate, but extrapolation is disabled")

	// ErrNotMonotonic indicates a phase series that changes direction.
	ErrNotMonotonic = errors.New("resample: phase must be monotonic")
)
