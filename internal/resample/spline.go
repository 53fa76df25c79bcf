package resample

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// ExtrapolationTol is how far outside the source domain a target may fall
// before it counts as extrapolation.
const ExtrapolationTol = 1e-5

// Spline is a cubic interpolating spline through a strictly increasing table,
// with not-a-knot end conditions.
type Spline struct {
	lo, hi float64
	fit    interp.NotAKnotCubic
}

// NewSpline fits a spline to (xs, ys). The table is copied by the fitter.
func NewSpline(xs, ys []float64) (*Spline, error) {
	if err := checkTable(xs, ys); err != nil {
		return nil, err
	}
	sp := &Spline{lo: xs[0], hi: xs[len(xs)-1]}
	if err := sp.fit.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("resample: spline fit: %w", err)
	}
	return sp, nil
}

func checkTable(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("%w: len(x)=%d, len(y)=%d", ErrLengthMismatch, len(xs), len(ys))
	}
	if len(xs) < 3 {
		return fmt.Errorf("%w: got %d", ErrTooFewPoints, len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return fmt.Errorf("%w: x[%d]=%g, x[%d]=%g", ErrNotIncreasing, i-1, xs[i-1], i, xs[i])
		}
	}
	return nil
}

// Domain returns the first and last knot.
func (sp *Spline) Domain() (lo, hi float64) { return sp.lo, sp.hi }

// Contains reports whether x lies inside the domain, up to ExtrapolationTol.
func (sp *Spline) Contains(x float64) bool {
	return x >= sp.lo-ExtrapolationTol && x <= sp.hi+ExtrapolationTol
}

func (sp *Spline) clamp(x float64) float64 {
	if x < sp.lo {
		return sp.lo
	}
	if x > sp.hi {
		return sp.hi
	}
	return x
}

// Eval computes the spline at x. Points within ExtrapolationTol of the
// domain are clamped onto it.
func (sp *Spline) Eval(x float64) float64 {
	return sp.fit.Predict(sp.clamp(x))
}

// Derivative computes the exact first derivative of the spline at x.
func (sp *Spline) Derivative(x float64) float64 {
	return sp.fit.PredictDerivative(sp.clamp(x))
}

// Interp resamples (oldX, oldY) at newX. Without allowExtrapolation any
// target outside the source domain fails with ErrExtrapolation; with it,
// such targets evaluate to zero.
func Interp(newX, oldX, oldY []float64, allowExtrapolation bool) ([]float64, error) {
	sp, err := NewSpline(oldX, oldY)
	if err != nil {
		return nil, err
	}
	if !allowExtrapolation {
		if err := sp.checkDomain(newX); err != nil {
			return nil, err
		}
	}

	out := make([]float64, len(newX))
	for i, x := range newX {
		if !sp.Contains(x) {
			continue
		}
		out[i] = sp.Eval(x)
	}
	return out, nil
}

func (sp *Spline) checkDomain(xs []float64) error {
	for _, x := range xs {
		if !sp.Contains(x) {
			return fmt.Errorf("%w: target %g outside [%g, %g]", ErrExtrapolation, x, sp.lo, sp.hi)
		}
	}
	return nil
}

// Derivative returns the exact spline derivative of ys at every x in xs.
// This avoids the noise a finite difference picks up on sparse grids.
func Derivative(xs, ys []float64) ([]float64, error) {
	sp, err := NewSpline(xs, ys)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = sp.Derivative(x)
	}
	return out, nil
}
