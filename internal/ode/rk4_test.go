package ode

import (
	"context"
	"errors"
	"math"
	"testing"
)

type oscillator struct{}

func (oscillator) Derive(x State, t float64) State { return State{x[1], -x[0]} }
func (oscillator) Dim() int                         { return 2 }

type decay struct{}

func (decay) Derive(x State, t float64) State { return State{-x[0]} }
func (decay) Dim() int                         { return 1 }

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()
	x := State{1.0, 0.0}
	dt := 0.01
	steps := 100
	for i := 0; i < steps; i++ {
		x = integ.Step(oscillator{}, x, float64(i)*dt, dt)
	}

	if math.Abs(x[0]-math.Cos(1)) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], math.Cos(1))
	}
	if math.Abs(x[1]+math.Sin(1)) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], -math.Sin(1))
	}
}

func TestIntegrateRecordsEverySample(t *testing.T) {
	res, err := Integrate(context.Background(), decay{}, NewRK4(), State{1}, 0, 0.1, 1.0, nil)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if len(res.Times) != 11 || len(res.States) != 11 {
		t.Fatalf("expected 11 samples, got %d times and %d states", len(res.Times), len(res.States))
	}
	if got := res.States[10][0]; math.Abs(got-math.Exp(-1)) > 1e-5 {
		t.Errorf("expected final state ~%.5f, got %.5f", math.Exp(-1), got)
	}
}

func TestIntegrateStopsEarly(t *testing.T) {
	stop := func(x State, _ float64) bool { return x[0] < 0.5 }
	res, err := Integrate(context.Background(), decay{}, NewRK4(), State{1}, 0, 0.01, 10, stop)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	last := res.States[len(res.States)-1][0]
	if last >= 0.5 || res.States[len(res.States)-2][0] < 0.5 {
		t.Errorf("integration did not stop at the first crossing, last=%f", last)
	}
	if tEnd := res.Times[len(res.Times)-1]; math.Abs(tEnd-math.Ln2) > 0.02 {
		t.Errorf("expected stop near ln2, got %f", tEnd)
	}
}

func TestIntegrateInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		dt, span float64
	}{
		{"zero dt", 0, 1},
		{"negative dt", -0.1, 1},
		{"zero duration", 0.1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Integrate(context.Background(), decay{}, NewRK4(), State{1}, 0, tt.dt, tt.span, nil)
			if !errors.Is(err, ErrBadStep) {
				t.Errorf("expected ErrBadStep, got %v", err)
			}
		})
	}
}

func TestIntegrateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Integrate(ctx, decay{}, NewRK4(), State{1}, 0, 0.01, 100, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
