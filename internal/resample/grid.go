package resample

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/bbhexp/internal/bbh"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/num/quat"
)

const (
	DefaultPointsPerOrbit = 30
	DefaultFreezeTime     = -100.0
	DefaultMarkerTol      = 0.1
)

// UniformInOrbits returns a sparse time grid with ptsPerOrbit samples per
// orbital cycle, so playback slows down as the binary speeds up.
func UniformInOrbits(t, phase []float64, ptsPerOrbit int) ([]float64, error) {
	if len(t) != len(phase) {
		return nil, fmt.Errorf("%w: len(t)=%d, len(phase)=%d", ErrLengthMismatch, len(t), len(phase))
	}
	if len(t) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(t))
	}
	if ptsPerOrbit <= 0 {
		return nil, fmt.Errorf("resample: points per orbit must be positive, got %d", ptsPerOrbit)
	}

	first, last := phase[0], phase[len(phase)-1]
	nOrbits := int(math.Abs((last - first) / (2 * math.Pi)))
	nPts := nOrbits * ptsPerOrbit
	if nPts < 2 {
		return nil, fmt.Errorf("%w: %d orbits give %d samples", ErrTooFewPoints, nOrbits, nPts)
	}

	// Linear interpolation of t against phase needs increasing abscissae.
	xs, ys := phase, t
	if last < first {
		xs, ys = reversed(phase), reversed(t)
	}
	var lin interp.PiecewiseLinear
	if err := lin.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotMonotonic, err)
	}

	sparsePhase := floats.Span(make([]float64, nPts), first, last)
	grid := make([]float64, 0, nPts)
	for _, p := range sparsePhase {
		v := lin.Predict(p)
		if len(grid) > 0 && v <= grid[len(grid)-1] {
			continue
		}
		grid = append(grid, v)
	}
	return grid, nil
}

func reversed(xs []float64) []float64 {
	out := slices.Clone(xs)
	slices.Reverse(out)
	return out
}

// UniformStep returns t0, t0+dt, ... strictly below t1.
func UniformStep(t0, t1, dt float64) ([]float64, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("resample: time step must be positive, got %g", dt)
	}
	n := int(math.Ceil((t1 - t0) / dt))
	if n < 2 {
		return nil, fmt.Errorf("%w: [%g, %g) with step %g", ErrTooFewPoints, t0, t1, dt)
	}
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = t0 + float64(i)*dt
	}
	return grid, nil
}

// InsertMarker adds marker to the sorted grid unless a sample already lies
// within tol of it.
func InsertMarker(grid []float64, marker, tol float64) []float64 {
	i, _ := slices.BinarySearch(grid, marker)
	if i < len(grid) && math.Abs(grid[i]-marker) <= tol {
		return grid
	}
	if i > 0 && math.Abs(grid[i-1]-marker) <= tol {
		return grid
	}
	return slices.Insert(grid, i, marker)
}

// Options controls how the animation grid is built.
type Options struct {
	PointsPerOrbit int
	// UniformStep switches to a fixed time step when positive.
	UniformStep float64
	FreezeTime  float64
	MarkerTol   float64
}

func DefaultOptions() Options {
	return Options{
		PointsPerOrbit: DefaultPointsPerOrbit,
		FreezeTime:     DefaultFreezeTime,
		MarkerTol:      DefaultMarkerTol,
	}
}

// Grid builds the animation time grid for dyn, guaranteeing that the
// freeze time and the merger epoch t=0 are both present.
func Grid(dyn *bbh.Dynamics, opts Options) ([]float64, error) {
	if err := dyn.Validate(); err != nil {
		return nil, err
	}

	var (
		grid []float64
		err  error
	)
	if opts.UniformStep > 0 {
		grid, err = UniformStep(dyn.Times[0], dyn.Times[len(dyn.Times)-1], opts.UniformStep)
	} else {
		grid, err = UniformInOrbits(dyn.Times, dyn.Phase, opts.PointsPerOrbit)
	}
	if err != nil {
		return nil, err
	}

	tol := opts.MarkerTol
	if tol <= 0 {
		tol = DefaultMarkerTol
	}
	grid = InsertMarker(grid, opts.FreezeTime, tol)
	grid = InsertMarker(grid, 0, tol)
	return grid, nil
}

// Dynamics resamples the quaternion components and the orbital phase of dyn
// onto grid. Extrapolation is not allowed.
func Dynamics(grid []float64, dyn *bbh.Dynamics) ([]quat.Number, []float64, error) {
	if err := dyn.Validate(); err != nil {
		return nil, nil, err
	}

	n := len(dyn.Times)
	comps := [4][]float64{make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)}
	for i, q := range dyn.Quat {
		comps[0][i], comps[1][i], comps[2][i], comps[3][i] = q.Real, q.Imag, q.Jmag, q.Kmag
	}

	var out [4][]float64
	for c := range comps {
		v, err := Interp(grid, dyn.Times, comps[c], false)
		if err != nil {
			return nil, nil, fmt.Errorf("quaternion component %d: %w", c, err)
		}
		out[c] = v
	}
	quats := make([]quat.Number, len(grid))
	for i := range quats {
		quats[i] = quat.Number{Real: out[0][i], Imag: out[1][i], Jmag: out[2][i], Kmag: out[3][i]}
	}

	phase, err := Interp(grid, dyn.Times, dyn.Phase, false)
	if err != nil {
		return nil, nil, fmt.Errorf("orbital phase: %w", err)
	}
	return quats, phase, nil
}

// Omega derives the orbital frequency from the resampled phase.
func Omega(grid, phase []float64) ([]float64, error) {
	return Derivative(grid, phase)
}

// Vectors resamples a series of 3-vectors component by component.
func Vectors(newX, oldX []float64, xs, ys, zs []float64, allowExtrapolation bool) ([3][]float64, error) {
	var out [3][]float64
	for c, comp := range [3][]float64{xs, ys, zs} {
		v, err := Interp(newX, oldX, comp, allowExtrapolation)
		if err != nil {
			return out, err
		}
		out[c] = v
	}
	return out, nil
}
