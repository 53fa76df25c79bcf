package ode

import (
	"context"
	"fmt"
)

// Integrate steps sys from x0 at t0 with a fixed step until stop reports true
// or maxDuration has elapsed. Every sample, including x0, is recorded.
func Integrate(ctx context.Context, sys System, integ Integrator, x0 State, t0, dt, maxDuration float64, stop StopFunc) (*Result, error) {
	if dt <= 0 || maxDuration <= 0 {
		return nil, fmt.Errorf("%w: dt=%g duration=%g", ErrBadStep, dt, maxDuration)
	}
	if len(x0) != sys.Dim() {
		return nil, fmt.Errorf("ode: state has %d components, system wants %d", len(x0), sys.Dim())
	}

	steps := int(maxDuration / dt)
	res := &Result{
		Times:  make([]float64, 0, steps+1),
		States: make([]State, 0, steps+1),
	}

	x, t := x0.Clone(), t0
	res.Times = append(res.Times, t)
	res.States = append(res.States, x.Clone())
	if stop != nil && stop(x, t) {
		return res, nil
	}

	for i := 0; i < steps; i++ {
		if i%1024 == 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			default:
			}
		}

		x = integ.Step(sys, x, t, dt)
		t = t0 + float64(i+1)*dt
		if !x.IsValid() {
			return res, fmt.Errorf("%w at t=%.4f (step %d)", ErrInvalidState, t, i)
		}

		res.Times = append(res.Times, t)
		res.States = append(res.States, x.Clone())
		if stop != nil && stop(x, t) {
			break
		}
	}
	return res, nil
}
