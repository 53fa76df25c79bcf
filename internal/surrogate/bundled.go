package surrogate

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/bbhexp/internal/bbh"
	"github.com/san-kum/bbhexp/internal/bundle"
	"github.com/san-kum/bbhexp/internal/resample"
)

const binaryMatchTol = 1e-9

// BundleModel serves precomputed surrogate output. It only answers for the
// binary the bundle was generated for.
type BundleModel struct {
	b *bundle.Bundle
}

func NewBundleModel(b *bundle.Bundle) *BundleModel {
	return &BundleModel{b: b}
}

func (m *BundleModel) Name() string {
	if m.b.Model == "" {
		return "bundle"
	}
	return m.b.Model
}

// Binary returns the configuration stored in the bundle.
func (m *BundleModel) Binary() bbh.Binary { return m.b.Binary }

func (m *BundleModel) check(b bbh.Binary) error {
	want := m.b.Binary
	if math.Abs(b.Q-want.Q) > binaryMatchTol ||
		b.ChiA.Sub(want.ChiA).Norm() > binaryMatchTol ||
		b.ChiB.Sub(want.ChiB).Norm() > binaryMatchTol ||
		math.Abs(b.OmegaRef-want.OmegaRef) > binaryMatchTol {
		return fmt.Errorf("%w: bundle holds %v, asked for %v", ErrOutOfDomain, want, b)
	}
	return nil
}

func (m *BundleModel) Dynamics(ctx context.Context, b bbh.Binary) (*bbh.Dynamics, error) {
	if err := m.check(b); err != nil {
		return nil, err
	}
	return m.b.Dynamics(), nil
}

func (m *BundleModel) Evaluate(ctx context.Context, b bbh.Binary, times []float64) (*Evaluation, error) {
	if err := m.check(b); err != nil {
		return nil, err
	}

	chiA, err := interpVectors(times, m.b.Times, m.b.ChiA)
	if err != nil {
		return nil, fmt.Errorf("chiA: %w", err)
	}
	chiB, err := interpVectors(times, m.b.Times, m.b.ChiB)
	if err != nil {
		return nil, fmt.Errorf("chiB: %w", err)
	}

	modes := make(bbh.Modes, len(m.b.Modes))
	for k, h := range m.b.Modes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := interpMode(times, m.b.Times, h)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		modes[k] = out
	}

	return &Evaluation{Times: times, Modes: modes, ChiA: chiA, ChiB: chiB}, nil
}

// interpMode resamples a complex mode through its amplitude and unwrapped
// phase, which vary slowly where the real and imaginary parts oscillate.
func interpMode(newX, oldX []float64, h []complex128) ([]complex128, error) {
	amp := make([]float64, len(h))
	phase := make([]float64, len(h))
	for i, v := range h {
		amp[i] = cmplx.Abs(v)
		phase[i] = cmplx.Phase(v)
		if i > 0 {
			phase[i] = unwrap(phase[i-1], phase[i])
		}
	}
	a, err := resample.Interp(newX, oldX, amp, true)
	if err != nil {
		return nil, err
	}
	p, err := resample.Interp(newX, oldX, phase, true)
	if err != nil {
		return nil, err
	}
	out := make([]complex128, len(newX))
	for i := range out {
		out[i] = cmplx.Rect(a[i], p[i])
	}
	return out, nil
}

// unwrap shifts phi by whole turns to the branch nearest prev.
func unwrap(prev, phi float64) float64 {
	return phi - 2*math.Pi*math.Round((phi-prev)/(2*math.Pi))
}

// bundleFit reports the stored remnant.
type bundleFit struct{ *BundleModel }

func (f bundleFit) Name() string {
	if f.b.Fit == "" {
		return "bundle"
	}
	return f.b.Fit
}

func (f bundleFit) Remnant(ctx context.Context, b bbh.Binary) (bbh.Remnant, error) {
	if err := f.check(b); err != nil {
		return bbh.Remnant{}, err
	}
	return f.b.Remnant, nil
}

// Export evaluates s on its native time base and packs the result into a
// bundle.
func Export(ctx context.Context, s Surrogate, b bbh.Binary) (*bundle.Bundle, error) {
	dyn, err := s.Model.Dynamics(ctx, b)
	if err != nil {
		return nil, err
	}
	ev, err := s.Model.Evaluate(ctx, b, dyn.Times)
	if err != nil {
		return nil, err
	}
	rem, err := s.Fit.Remnant(ctx, b)
	if err != nil {
		return nil, err
	}
	return &bundle.Bundle{
		Model:   s.Model.Name(),
		Fit:     s.Fit.Name(),
		Binary:  b,
		Remnant: rem,
		Times:   dyn.Times,
		Quat:    dyn.Quat,
		Phase:   dyn.Phase,
		ChiA:    ev.ChiA,
		ChiB:    ev.ChiB,
		Modes:   ev.Modes,
	}, nil
}
