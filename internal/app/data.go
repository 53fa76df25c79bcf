package app

import (
	"context"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/anim"
	"github.com/san-kum/bbhexp/internal/bbh"
	"github.com/san-kum/bbhexp/internal/geom"
	"github.com/san-kum/bbhexp/internal/resample"
	"github.com/san-kum/bbhexp/internal/surrogate"
)

// DataOptions controls how surrogate output is sampled for animation.
type DataOptions struct {
	Grid resample.Options
	// OmegaStart drops the samples before the orbital frequency reaches it.
	// Zero keeps everything.
	OmegaStart float64
}

// BinaryData queries s for b and reconstructs everything the renderer draws
// on the binary time grid: spins, orbital angular momentum, waveform modes
// and both trajectories.
func BinaryData(ctx context.Context, s surrogate.Surrogate, b bbh.Binary, opts DataOptions) (*anim.Data, error) {
	dyn, err := s.Model.Dynamics(ctx, b)
	if err != nil {
		return nil, err
	}
	grid, err := resample.Grid(dyn, opts.Grid)
	if err != nil {
		return nil, fmt.Errorf("binary grid: %w", err)
	}
	qs, phase, err := resample.Dynamics(grid, dyn)
	if err != nil {
		return nil, fmt.Errorf("resample dynamics: %w", err)
	}
	omega, err := resample.Omega(grid, phase)
	if err != nil {
		return nil, fmt.Errorf("orbital frequency: %w", err)
	}

	ev, err := s.Model.Evaluate(ctx, b, grid)
	if err != nil {
		return nil, err
	}

	lhat := make([]r3.Vector, len(qs))
	for i, q := range qs {
		lhat[i] = geom.LHat(q)
	}
	mA, mB := b.Masses()
	sep, err := geom.Separation(omega, mA, mB, ev.ChiA, ev.ChiB, lhat, geom.MaxPNOrder)
	if err != nil {
		return nil, err
	}
	trajA, err := geom.Trajectory(geom.Scaled(sep, mB), qs, phase, geom.ComponentA)
	if err != nil {
		return nil, err
	}
	trajB, err := geom.Trajectory(geom.Scaled(sep, mA), qs, phase, geom.ComponentB)
	if err != nil {
		return nil, err
	}

	series := &bbh.Series{
		Times: grid,
		Quat:  qs,
		Phase: phase,
		Omega: omega,
		ChiA:  ev.ChiA,
		ChiB:  ev.ChiB,
		L:     geom.AngularMomentum(b.Q, omega, lhat),
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	if opts.OmegaStart > 0 {
		start := StartIndex(omega, opts.OmegaStart)
		series.Slice(start)
		ev.Modes.Slice(start)
		trajA, trajB, sep = trajA[start:], trajB[start:], sep[start:]
	}

	rem, err := s.Fit.Remnant(ctx, b)
	if err != nil {
		return nil, err
	}

	return &anim.Data{
		Binary:     b,
		Times:      series.Times,
		ChiA:       series.ChiA,
		ChiB:       series.ChiB,
		L:          series.L,
		TrajA:      trajA,
		TrajB:      trajB,
		Separation: sep,
		Modes:      ev.Modes,
		Remnant:    rem,
		Label:      s.Label(),
	}, nil
}

// StartIndex is the sample whose orbital frequency is closest to omega.
func StartIndex(omegas []float64, omega float64) int {
	best, dist := 0, math.Inf(1)
	for i, w := range omegas {
		if d := math.Abs(w - omega); d < dist {
			best, dist = i, d
		}
	}
	return best
}
