// Package ode integrates the small first-order systems used by the analytic
// surrogate.
package ode

import (
	"errors"
	"math"
)

var (
	// ErrInvalidState indicates NaN or Inf in an integrated state.
	ErrInvalidState = errors.New("ode: invalid state (NaN or Inf detected)")

	// ErrBadStep indicates a non-positive step or an empty horizon.
	ErrBadStep = errors.New("ode: step and horizon must be positive")
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// StopFunc ends an integration after the given sample has been recorded.
type StopFunc func(x State, t float64) bool

type Result struct {
	Times  []float64
	States []State
}
