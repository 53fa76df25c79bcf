package geom

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// degenerateTol is the cross-product norm below which two directions are
// treated as (anti)parallel.
const degenerateTol = 1e-12

var zHat = r3.Vector{Z: 1}

func raise(v r3.Vector) quat.Number {
	return quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
}

// Rotate applies the rotation encoded by q to v. q need not be normalized.
func Rotate(q quat.Number, v r3.Vector) r3.Vector {
	if n := quat.Abs(q); n != 1 && n != 0 {
		q = quat.Scale(1/n, q)
	}
	p := quat.Mul(quat.Mul(q, raise(v)), quat.Conj(q))
	return r3.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// RotateSeries rotates vs[i] by qs[i].
func RotateSeries(qs []quat.Number, vs []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(vs))
	for i := range vs {
		out[i] = Rotate(qs[i], vs[i])
	}
	return out
}

// LHat is the orbital angular momentum direction, i.e. the coprecessing
// z axis rotated into the inertial frame.
func LHat(q quat.Number) r3.Vector {
	return Rotate(q, zHat)
}

// FromAxisAngle builds the unit quaternion rotating by angle about axis.
func FromAxisAngle(axis r3.Vector, angle float64) quat.Number {
	axis = axis.Normalize()
	s, c := math.Sincos(0.5 * angle)
	return quat.Number{Real: c, Imag: s * axis.X, Jmag: s * axis.Y, Kmag: s * axis.Z}
}

// QuatBetween returns the minimal rotation taking the direction of u onto
// the direction of v. Parallel inputs give the identity; anti-parallel
// inputs give a half turn about an axis perpendicular to u.
func QuatBetween(u, v r3.Vector) quat.Number {
	un, vn := u.Normalize(), v.Normalize()
	if un.Norm2() == 0 || vn.Norm2() == 0 {
		return quat.Number{Real: 1}
	}

	axis := un.Cross(vn)
	cos := math.Max(-1, math.Min(1, un.Dot(vn)))
	if axis.Norm() < degenerateTol {
		if cos > 0 {
			return quat.Number{Real: 1}
		}
		return FromAxisAngle(un.Ortho(), math.Pi)
	}
	return FromAxisAngle(axis, math.Acos(cos))
}
