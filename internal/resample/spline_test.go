package resample

import (
	"errors"
	"math"
	"testing"
)

func linspace(lo, hi float64, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return xs
}

func TestInterpIdentityOnSourceGrid(t *testing.T) {
	xs := []float64{-3, -2.5, -1, 0, 0.3, 2, 4.5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = math.Sin(x) + 0.1*x*x
	}

	got, err := Interp(xs, xs, ys, false)
	if err != nil {
		t.Fatalf("interp failed: %v", err)
	}
	for i := range xs {
		if math.Abs(got[i]-ys[i]) > 1e-10 {
			t.Errorf("x=%g: expected %g, got %g", xs[i], ys[i], got[i])
		}
	}
}

func TestInterpSmoothFunction(t *testing.T) {
	xs := linspace(0, 2*math.Pi, 200)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = math.Sin(x)
	}
	targets := linspace(0.5, 5.5, 37)

	got, err := Interp(targets, xs, ys, false)
	if err != nil {
		t.Fatalf("interp failed: %v", err)
	}
	for i, x := range targets {
		if math.Abs(got[i]-math.Sin(x)) > 1e-5 {
			t.Errorf("x=%g: expected %g, got %g", x, math.Sin(x), got[i])
		}
	}
}

func TestInterpExtrapolation(t *testing.T) {
	xs := linspace(0, 10, 11)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2*x + 1
	}

	tests := []struct {
		name   string
		target float64
	}{
		{"below", -0.5},
		{"above", 10.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interp([]float64{5, tt.target}, xs, ys, false)
			if !errors.Is(err, ErrExtrapolation) {
				t.Fatalf("expected ErrExtrapolation, got %v", err)
			}

			got, err := Interp([]float64{5, tt.target}, xs, ys, true)
			if err != nil {
				t.Fatalf("interp with extrapolation failed: %v", err)
			}
			if got[1] != 0 {
				t.Errorf("expected zero outside the domain, got %g", got[1])
			}
			if math.Abs(got[0]-11) > 1e-9 {
				t.Errorf("expected 11 inside the domain, got %g", got[0])
			}
		})
	}
}

func TestInterpToleratesRoundoff(t *testing.T) {
	xs := linspace(0, 1, 5)
	ys := []float64{0, 1, 2, 3, 4}
	got, err := Interp([]float64{-1e-7, 1 + 1e-7}, xs, ys, false)
	if err != nil {
		t.Fatalf("targets within tolerance should not extrapolate: %v", err)
	}
	if math.Abs(got[0]) > 1e-6 || math.Abs(got[1]-4) > 1e-6 {
		t.Errorf("expected clamped boundary values, got %v", got)
	}
}

func TestInterpMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		xs, ys []float64
		want   error
	}{
		{"length mismatch", []float64{0, 1, 2}, []float64{0, 1}, ErrLengthMismatch},
		{"not increasing", []float64{0, 2, 1, 3}, []float64{0, 1, 2, 3}, ErrNotIncreasing},
		{"repeated x", []float64{0, 1, 1, 3}, []float64{0, 1, 2, 3}, ErrNotIncreasing},
		{"too short", []float64{0, 1}, []float64{0, 1}, ErrTooFewPoints},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interp([]float64{0.5}, tt.xs, tt.ys, false)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDerivativeOfLinearPhase(t *testing.T) {
	xs := []float64{-100, -80, -75, -40, -10, 0, 12}
	phase := make([]float64, len(xs))
	for i, x := range xs {
		phase[i] = 3 + 0.05*x
	}

	omega, err := Omega(xs, phase)
	if err != nil {
		t.Fatalf("omega failed: %v", err)
	}
	for i, w := range omega {
		if math.Abs(w-0.05) > 1e-12 {
			t.Errorf("t=%g: expected 0.05, got %g", xs[i], w)
		}
	}
}

func TestDerivativeOfSmoothPhase(t *testing.T) {
	xs := linspace(0, 4, 400)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x * x * x
	}
	d, err := Derivative(xs, ys)
	if err != nil {
		t.Fatalf("derivative failed: %v", err)
	}
	// Not-a-knot ends reproduce a cubic exactly, boundaries included.
	for i := range xs {
		want := 3 * xs[i] * xs[i]
		if math.Abs(d[i]-want) > 1e-6 {
			t.Errorf("x=%g: expected %g, got %g", xs[i], want, d[i])
		}
	}
}

func TestEndConditionsFollowCurvature(t *testing.T) {
	xs := linspace(-2, 2, 9)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x * x
	}
	sp, err := NewSpline(xs, ys)
	if err != nil {
		t.Fatal(err)
	}
	for _, x := range []float64{-2, -1.9, 1.75, 2} {
		if got := sp.Derivative(x); math.Abs(got-2*x) > 1e-9 {
			t.Errorf("slope at %g: expected %g, got %g", x, 2*x, got)
		}
	}
}
