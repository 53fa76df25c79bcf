package geom

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Component selects one of the two inspiralling objects.
type Component int

const (
	ComponentA Component = iota
	ComponentB
)

func (c Component) offset() float64 {
	if c == ComponentB {
		return math.Pi
	}
	return 0
}

// Trajectory places a component at distance sep[i] from the origin in the
// coprecessing orbital plane at angle phase[i] (plus π for component B) and
// rotates it into the inertial frame with qs[i].
func Trajectory(sep []float64, qs []quat.Number, phase []float64, c Component) ([]r3.Vector, error) {
	n := len(sep)
	if len(qs) != n || len(phase) != n {
		return nil, fmt.Errorf("geom: trajectory inputs have lengths sep=%d quat=%d phase=%d", n, len(qs), len(phase))
	}
	out := make([]r3.Vector, n)
	for i := range sep {
		s, co := math.Sincos(phase[i] + c.offset())
		out[i] = Rotate(qs[i], r3.Vector{X: sep[i] * co, Y: sep[i] * s})
	}
	return out, nil
}

// AngularMomentum returns the Newtonian orbital angular momentum
// q/(1+q)^2 * omega^(-1/3) along lhat.
func AngularMomentum(q float64, omega []float64, lhat []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(omega))
	for i, w := range omega {
		out[i] = lhat[i].Mul(q / ((1 + q) * (1 + q)) * math.Pow(w, -1.0/3))
	}
	return out
}

// MaxExtent returns the largest distance from the origin along a trajectory,
// ignoring NaN samples.
func MaxExtent(traj []r3.Vector) float64 {
	m := 0.0
	for _, p := range traj {
		if n := p.Norm(); !math.IsNaN(n) && n > m {
			m = n
		}
	}
	return m
}

// Scaled multiplies sep by f, returning a new slice.
func Scaled(sep []float64, f float64) []float64 {
	out := make([]float64, len(sep))
	for i, s := range sep {
		out[i] = s * f
	}
	return out
}
