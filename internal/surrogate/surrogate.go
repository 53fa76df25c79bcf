// Package surrogate queries binary black hole models for orbital dynamics,
// waveform modes, component spins and remnant properties.
package surrogate

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/bbh"
)

var (
	// ErrOutOfDomain indicates a binary the model was not built for.
	ErrOutOfDomain = errors.New("surrogate: binary outside model domain")

	ErrUnknownModel = errors.New("surrogate: unknown model")
)

// Evaluation is a model evaluated on caller-chosen times. Spins are in the
// inertial frame.
type Evaluation struct {
	Times []float64
	Modes bbh.Modes
	ChiA  []r3.Vector
	ChiB  []r3.Vector
}

// Model produces the time-domain part of a surrogate.
type Model interface {
	Name() string
	// Dynamics returns orientation and orbital phase on the model's native
	// time base, with t=0 at merger.
	Dynamics(ctx context.Context, b bbh.Binary) (*bbh.Dynamics, error)
	// Evaluate returns waveform modes and spins at times. Times outside the
	// native domain evaluate to zero.
	Evaluate(ctx context.Context, b bbh.Binary, times []float64) (*Evaluation, error)
}

// RemnantFit predicts the final black hole.
type RemnantFit interface {
	Name() string
	Remnant(ctx context.Context, b bbh.Binary) (bbh.Remnant, error)
}

// Surrogate pairs a time-domain model with a remnant fit.
type Surrogate struct {
	Model Model
	Fit   RemnantFit
}

// Label is the attribution shown in rendered frames.
func (s Surrogate) Label() string {
	return fmt.Sprintf("%s + %s", s.Model.Name(), s.Fit.Name())
}

func checkDomain(b bbh.Binary, maxQ, maxSpin, maxOmegaRef float64) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.Q > maxQ {
		return fmt.Errorf("%w: q=%g > %g", ErrOutOfDomain, b.Q, maxQ)
	}
	if n := b.ChiA.Norm(); n > maxSpin {
		return fmt.Errorf("%w: |chiA|=%g > %g", ErrOutOfDomain, n, maxSpin)
	}
	if n := b.ChiB.Norm(); n > maxSpin {
		return fmt.Errorf("%w: |chiB|=%g > %g", ErrOutOfDomain, n, maxSpin)
	}
	if b.OmegaRef > maxOmegaRef {
		return fmt.Errorf("%w: omega_ref=%g > %g", ErrOutOfDomain, b.OmegaRef, maxOmegaRef)
	}
	return nil
}
