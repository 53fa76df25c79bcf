package geom

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/san-kum/bbhexp/internal/bbh"
)

// SpinWeight of the gravitational-wave strain harmonics.
const SpinWeight = -2

// Axis names the normal of a reference plane.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

// Plane is a square grid on one of the back walls of the plotting cube.
// Samples are indexed [iv][iu], where (u, v) are the in-plane coordinates
// in axis order: (y, z) for AxisX, (x, z) for AxisY and (x, y) for AxisZ.
type Plane struct {
	Axis   Axis
	Offset float64
	U, V   []float64
	R      [][]float64
	Theta  [][]float64
	Phi    [][]float64
}

// Point returns the Cartesian position of sample (iu, iv).
func (p *Plane) Point(iu, iv int) r3.Vector {
	u, v := p.U[iu], p.V[iv]
	switch p.Axis {
	case AxisX:
		return r3.Vector{X: p.Offset, Y: u, Z: v}
	case AxisY:
		return r3.Vector{X: u, Y: p.Offset, Z: v}
	default:
		return r3.Vector{X: u, Y: v, Z: p.Offset}
	}
}

func newPlane(axis Axis, offset float64, coords []float64) Plane {
	n := len(coords)
	p := Plane{
		Axis:   axis,
		Offset: offset,
		U:      coords,
		V:      coords,
		R:      make([][]float64, n),
		Theta:  make([][]float64, n),
		Phi:    make([][]float64, n),
	}
	for iv := 0; iv < n; iv++ {
		p.R[iv] = make([]float64, n)
		p.Theta[iv] = make([]float64, n)
		p.Phi[iv] = make([]float64, n)
		for iu := 0; iu < n; iu++ {
			pt := p.Point(iu, iv)
			r := pt.Norm()
			p.R[iv][iu] = r
			p.Theta[iv][iu] = math.Acos(pt.Z / r)
			p.Phi[iv][iu] = math.Atan2(pt.Y, pt.X)
		}
	}
	return p
}

// Planes returns the three back walls of the cube [-maxRange, maxRange]^3,
// each sampled with n points per side: x=-R, y=+R and z=-R, in axis order.
func Planes(n int, maxRange float64) [3]Plane {
	coords := make([]float64, n)
	for i := range coords {
		coords[i] = -maxRange + 2*maxRange*float64(i)/float64(n-1)
	}
	return [3]Plane{
		newPlane(AxisX, -maxRange, coords),
		newPlane(AxisY, maxRange, coords),
		newPlane(AxisZ, -maxRange, coords),
	}
}

// Projector evaluates the strain on a plane. The harmonics of every grid
// point are computed once.
type Projector struct {
	plane *Plane
	modes []bbh.Mode
	ylm   map[bbh.Mode][][]complex128
}

func NewProjector(plane *Plane, modes bbh.Modes) *Projector {
	pr := &Projector{plane: plane, ylm: make(map[bbh.Mode][][]complex128, len(modes))}
	for k := range modes {
		pr.modes = append(pr.modes, k)
	}
	sort.Slice(pr.modes, func(i, j int) bool {
		if pr.modes[i].L != pr.modes[j].L {
			return pr.modes[i].L < pr.modes[j].L
		}
		return pr.modes[i].M < pr.modes[j].M
	})

	n := len(plane.U)
	for _, k := range pr.modes {
		grid := make([][]complex128, n)
		for iv := range grid {
			grid[iv] = make([]complex128, n)
			for iu := range grid[iv] {
				grid[iv][iu] = SpinWeightedYlm(SpinWeight, k.L, k.M, plane.Theta[iv][iu], plane.Phi[iv][iu])
			}
		}
		pr.ylm[k] = grid
	}
	return pr
}

func (pr *Projector) Plane() *Plane { return pr.plane }

// At returns Re(sum h_lm(t_ret) sYlm)/r at every grid point for playback
// time times[idx]. The retarded time t - r is snapped to the nearest sample
// in times, clamped to the available waveform samples.
func (pr *Projector) At(times []float64, idx int, modes bbh.Modes) [][]float64 {
	n := len(pr.plane.U)
	last := modes.Len() - 1
	t := times[idx]
	out := make([][]float64, n)
	for iv := range out {
		out[iv] = make([]float64, n)
		for iu := range out[iv] {
			r := pr.plane.R[iv][iu]
			j := Nearest(times, t-r)
			if j > last {
				j = last
			}
			var h complex128
			for _, k := range pr.modes {
				if series, ok := modes[k]; ok && j >= 0 {
					h += series[j] * pr.ylm[k][iv][iu]
				}
			}
			out[iv][iu] = real(h) / r
		}
	}
	return out
}

// WaveformOnGrid is the one-shot form of Projector.At.
func WaveformOnGrid(times []float64, idx int, modes bbh.Modes, plane *Plane) [][]float64 {
	return NewProjector(plane, modes).At(times, idx, modes)
}

// Nearest returns the index of the sample in sorted xs closest to x.
func Nearest(xs []float64, x float64) int {
	i := sort.SearchFloat64s(xs, x)
	if i == 0 {
		return 0
	}
	if i == len(xs) {
		return len(xs) - 1
	}
	if x-xs[i-1] <= xs[i]-x {
		return i - 1
	}
	return i
}

// ViewAngles converts a viewing elevation/azimuth into the polar angle and
// azimuth of the line of sight.
func ViewAngles(azim, elev s1.Angle) (theta, phi float64) {
	return (90*s1.Degree - elev).Radians(), azim.Radians()
}

// WaveformTimeseries returns the complex strain h+ - i hx seen from the
// direction given by azimuth and elevation in degrees.
func WaveformTimeseries(modes bbh.Modes, azimDeg, elevDeg float64) []complex128 {
	theta, phi := ViewAngles(s1.Angle(azimDeg)*s1.Degree, s1.Angle(elevDeg)*s1.Degree)
	h := make([]complex128, modes.Len())
	for k, series := range modes {
		y := SpinWeightedYlm(SpinWeight, k.L, k.M, theta, phi)
		for i, v := range series {
			h[i] += v * y
		}
	}
	return h
}

// PeakStrain returns max |h| of a timeseries.
func PeakStrain(h []complex128) float64 {
	m := 0.0
	for _, v := range h {
		m = math.Max(m, cmplx.Abs(v))
	}
	return m
}
