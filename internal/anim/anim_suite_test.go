package anim

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/golang/geo/r3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/bbhexp/internal/bbh"
	"github.com/san-kum/bbhexp/internal/geom"
	"gonum.org/v1/gonum/num/quat"
)

func TestAnim(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Anim Suite")
}

// circularBinary is a q=2 binary on a fixed circular orbit sampled every
// 2.5M from t=-1000 to t=100.
func circularBinary() *Data {
	b := bbh.Binary{
		Q:    2,
		ChiA: r3.Vector{X: 0.2, Y: 0.7, Z: -0.1},
		ChiB: r3.Vector{X: 0.2, Y: 0.6, Z: 0.1},
	}
	mA, mB := b.Masses()

	n := 441
	d := &Data{
		Binary:  b,
		Times:   make([]float64, n),
		ChiA:    make([]r3.Vector, n),
		ChiB:    make([]r3.Vector, n),
		L:       make([]r3.Vector, n),
		Modes:   bbh.Modes{},
		Remnant: bbh.Remnant{Mass: 0.95, Chi: r3.Vector{Z: 0.7}, Kick: r3.Vector{X: 1e-3}},
		Label:   "test + fit",
	}
	phase := make([]float64, n)
	qs := make([]quat.Number, n)
	sep := make([]float64, n)
	h22 := make([]complex128, n)
	h2m2 := make([]complex128, n)
	for i := range d.Times {
		t := -1000 + 2.5*float64(i)
		d.Times[i] = t
		phase[i] = 0.05 * (t + 1000)
		qs[i] = quat.Number{Real: 1}
		sep[i] = 10
		d.ChiA[i], d.ChiB[i] = b.ChiA, b.ChiB
		d.L[i] = r3.Vector{Z: 0.8}
		amp := 0.1 * math.Exp(-math.Abs(t)/200)
		h22[i] = complex(amp, 0) * cmplx.Exp(complex(0, -2*phase[i]))
		h2m2[i] = cmplx.Conj(h22[i])
	}
	d.Modes[bbh.Mode{L: 2, M: 2}] = h22
	d.Modes[bbh.Mode{L: 2, M: -2}] = h2m2
	d.Separation = sep
	d.TrajA, _ = geom.Trajectory(geom.Scaled(sep, mB), qs, phase, geom.ComponentA)
	d.TrajB, _ = geom.Trajectory(geom.Scaled(sep, mA), qs, phase, geom.ComponentB)
	return d
}
