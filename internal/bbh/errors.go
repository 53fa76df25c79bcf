package bbh

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBinary indicates a binary configuration outside the supported range.
	ErrInvalidBinary = errors.New("bbh: invalid binary configuration")

	// ErrLengthMismatch indicates series that do not share a time index.
	ErrLengthMismatch = errors.New("bbh: series lengths do not match")

	// ErrEmptySeries indicates a series without samples.
	ErrEmptySeries = errors.New("bbh: empty series")
)

// RangeError reports a parameter outside its allowed interval.
type RangeError struct {
	Param    string
	Value    float64
	Min, Max float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s=%g outside [%g, %g]", e.Param, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidBinary
}
