package geom

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/bbh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
)

func TestKerrSchildRadii(t *testing.T) {
	for _, chi := range []r3.Vector{{}, {Z: 0.3}, {X: 0.2, Y: 0.7, Z: -0.1}, {Y: 0.99}} {
		h := KerrSchild(0.6, chi)
		assert.GreaterOrEqual(t, h.Equatorial, h.Polar, "chi=%v", chi)
		assert.Greater(t, h.Polar, 0.0)
		assert.InDelta(t, 0.6*chi.Norm(), h.Kerr, eps)
	}

	h := KerrSchild(1, r3.Vector{})
	assert.InDelta(t, 2, h.Polar, eps)
	assert.InDelta(t, 2, h.Equatorial, eps)
}

func TestHorizonPlaceAlignsPoles(t *testing.T) {
	chi := r3.Vector{X: 0.5, Y: 0.5}
	h := KerrSchild(1, chi)
	center := r3.Vector{X: 3, Y: -1, Z: 2}

	mesh := h.Place(center, chi, MeshAzimuthal, MeshPolar)
	require.Len(t, mesh, MeshPolar)
	require.Len(t, mesh[0], MeshAzimuthal)

	north := mesh[MeshPolar-1][0].Sub(center)
	assert.InDelta(t, h.Polar, north.Norm(), 1e-9)
	assert.InDelta(t, 1, north.Normalize().Dot(chi.Normalize()), 1e-9)
}

func TestHorizonPlaceSkipsTinySpin(t *testing.T) {
	h := KerrSchild(1, r3.Vector{X: 1e-9})
	mesh := h.Place(r3.Vector{}, r3.Vector{X: 1e-9}, 8, 5)
	assertVecNear(t, r3.Vector{Z: h.Polar}, mesh[4][0], eps)
}

func TestSeparationNewtonian(t *testing.T) {
	omega := []float64{0.02, 0.05, 0.1}
	zero := make([]r3.Vector, 3)
	lhat := []r3.Vector{zHat, zHat, zHat}

	sep, err := Separation(omega, 2.0/3, 1.0/3, zero, zero, lhat, 0)
	require.NoError(t, err)
	for i, w := range omega {
		assert.InDelta(t, math.Pow(w, -2.0/3), sep[i], 1e-12)
	}

	full, err := Separation(omega, 2.0/3, 1.0/3, zero, zero, lhat, MaxPNOrder)
	require.NoError(t, err)
	for i := range omega {
		assert.False(t, math.IsNaN(full[i]))
		assert.Less(t, full[i], sep[i], "PN corrections shrink the orbit at sample %d", i)
	}
}

func TestSeparationRejectsBadInput(t *testing.T) {
	v := []r3.Vector{zHat}
	_, err := Separation([]float64{0.1, 0.2}, 0.5, 0.5, v, v, v, 2)
	assert.Error(t, err)

	_, err = Separation([]float64{0.1}, 0.5, 0.5, v, v, v, 4)
	assert.Error(t, err)
}

func TestTrajectoriesAreOpposite(t *testing.T) {
	sep := []float64{10, 8, 6}
	phase := []float64{0, 1, 2}
	qs := []quat.Number{{Real: 1}, FromAxisAngle(r3.Vector{X: 1}, 0.3), FromAxisAngle(r3.Vector{Y: 1}, -0.7)}

	a, err := Trajectory(Scaled(sep, 1.0/3), qs, phase, ComponentA)
	require.NoError(t, err)
	b, err := Trajectory(Scaled(sep, 2.0/3), qs, phase, ComponentB)
	require.NoError(t, err)

	for i := range sep {
		com := a[i].Mul(2.0 / 3).Add(b[i].Mul(1.0 / 3))
		assertVecNear(t, r3.Vector{}, com, 1e-9)
		assert.InDelta(t, sep[i], a[i].Sub(b[i]).Norm(), 1e-9)
		assert.InDelta(t, 0, a[i].Dot(LHat(qs[i])), 1e-9)
	}
	assert.InDelta(t, 20.0/3, MaxExtent(b), 1e-9)

	_, err = Trajectory(sep, qs[:1], phase, ComponentA)
	assert.Error(t, err)
}

func TestAngularMomentum(t *testing.T) {
	L := AngularMomentum(2, []float64{0.125}, []r3.Vector{{Y: 1}})
	assertVecNear(t, r3.Vector{Y: 2.0 / 9 * 2}, L[0], 1e-12)
}

func TestSpinWeightedYlm(t *testing.T) {
	assert.InDelta(t, math.Sqrt(5/(4*math.Pi)), real(SpinWeightedYlm(-2, 2, 2, 0, 0)), 1e-12)
	assert.InDelta(t, 0, imag(SpinWeightedYlm(-2, 2, 2, 0, 0)), 1e-12)
	assert.InDelta(t, 0, cmplx.Abs(SpinWeightedYlm(-2, 2, -2, 0, 0)), 1e-12)
	assert.InDelta(t, math.Sqrt(5/(4*math.Pi)), cmplx.Abs(SpinWeightedYlm(-2, 2, -2, math.Pi, 0)), 1e-12)

	// Equatorial (2,2) magnitude is sqrt(5/64π).
	assert.InDelta(t, math.Sqrt(5/(64*math.Pi)), cmplx.Abs(SpinWeightedYlm(-2, 2, 2, math.Pi/2, 0.4)), 1e-12)

	// Out of range m.
	assert.Equal(t, complex(0, 0), SpinWeightedYlm(-2, 2, 3, 1, 1))
}

func TestPlanesGeometry(t *testing.T) {
	planes := Planes(11, 20)
	for _, p := range planes {
		require.Len(t, p.U, 11)
		assert.InDelta(t, -20, p.U[0], eps)
		assert.InDelta(t, 20, p.U[10], eps)
	}
	assert.Equal(t, AxisX, planes[0].Axis)
	assert.InDelta(t, -20, planes[0].Point(3, 4).X, eps)
	assert.InDelta(t, 20, planes[1].Point(3, 4).Y, eps)
	assert.InDelta(t, -20, planes[2].Point(3, 4).Z, eps)

	z := planes[2]
	pt := z.Point(7, 2)
	assert.InDelta(t, pt.Norm(), z.R[2][7], eps)
	assert.InDelta(t, math.Atan2(pt.Y, pt.X), z.Phi[2][7], eps)
	assert.Greater(t, z.Theta[2][7], math.Pi/2)
}

func TestWaveformOnGridUsesRetardedTime(t *testing.T) {
	n := 400
	times := make([]float64, n)
	h := make([]complex128, n)
	for i := range times {
		times[i] = float64(i) - 200
		if times[i] >= 0 {
			h[i] = 1
		}
	}
	modes := bbh.Modes{{L: 2, M: 2}: h}
	planes := Planes(5, 20)
	plane := &planes[AxisZ]

	// No retarded sample has reached t >= 0 yet at t=10.
	early := WaveformOnGrid(times, Nearest(times, 10), modes, plane)
	for _, row := range early {
		for _, v := range row {
			assert.Zero(t, v)
		}
	}

	late := WaveformOnGrid(times, Nearest(times, 150), modes, plane)
	pt := plane.Point(0, 0)
	want := real(SpinWeightedYlm(-2, 2, 2, math.Acos(pt.Z/pt.Norm()), math.Atan2(pt.Y, pt.X))) / pt.Norm()
	assert.InDelta(t, want, late[0][0], 1e-12)
}

func TestWaveformTimeseriesFaceOn(t *testing.T) {
	modes := bbh.Modes{
		{L: 2, M: 2}:  []complex128{1, 1i},
		{L: 2, M: -2}: []complex128{1, -1i},
	}
	h := WaveformTimeseries(modes, 0, 90)
	require.Len(t, h, 2)
	assert.InDelta(t, math.Sqrt(5/(4*math.Pi)), real(h[0]), 1e-12)
	assert.InDelta(t, math.Sqrt(5/(4*math.Pi)), PeakStrain(h), 1e-12)
}

func TestNearest(t *testing.T) {
	xs := []float64{-3, -1, 0, 2}
	cases := map[float64]int{-10: 0, -2.1: 0, -1.9: 1, 0.4: 2, 1.5: 3, 9: 3}
	for x, want := range cases {
		assert.Equal(t, want, Nearest(xs, x), "x=%g", x)
	}
}
