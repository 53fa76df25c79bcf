package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

const (
	// MeshAzimuthal and MeshPolar are the default ellipsoid resolutions.
	MeshAzimuthal = 30
	MeshPolar     = 15

	// minSpinForRotation is the spin magnitude below which the ellipsoid is
	// left aligned with z.
	minSpinForRotation = 1e-6
)

// Horizon is the Kerr-Schild horizon of a black hole: an oblate ellipsoid
// with its symmetry axis along the spin.
type Horizon struct {
	Mass       float64
	Kerr       float64 // a = m|chi|
	Equatorial float64
	Polar      float64
}

// KerrSchild computes the horizon radii for a hole of the given mass and
// dimensionless spin.
func KerrSchild(mass float64, chi r3.Vector) Horizon {
	a := mass * chi.Norm()
	rPlus := mass + math.Sqrt(math.Max(0, mass*mass-a*a))
	return Horizon{
		Mass:       mass,
		Kerr:       a,
		Equatorial: math.Sqrt(rPlus*rPlus + a*a),
		Polar:      rPlus,
	}
}

// Mesh returns the ellipsoid centred at the origin with poles on z, as nv
// rings of nu points. Polar samples are uniform in cos(theta).
func (h Horizon) Mesh(nu, nv int) [][]r3.Vector {
	mesh := make([][]r3.Vector, nv)
	for j := range mesh {
		cosV := -1 + 2*float64(j)/float64(nv-1)
		sinV := math.Sqrt(math.Max(0, 1-cosV*cosV))
		mesh[j] = make([]r3.Vector, nu)
		for i := range mesh[j] {
			u := 2 * math.Pi * float64(i) / float64(nu-1)
			su, cu := math.Sincos(u)
			mesh[j][i] = r3.Vector{
				X: h.Equatorial * cu * sinV,
				Y: h.Equatorial * su * sinV,
				Z: h.Polar * cosV,
			}
		}
	}
	return mesh
}

// Place rotates the mesh poles onto chi and moves it to center.
func (h Horizon) Place(center, chi r3.Vector, nu, nv int) [][]r3.Vector {
	mesh := h.Mesh(nu, nv)
	rotate := chi.Norm() > minSpinForRotation
	q := QuatBetween(zHat, chi)
	for j := range mesh {
		for i, p := range mesh[j] {
			if rotate {
				p = Rotate(q, p)
			}
			mesh[j][i] = p.Add(center)
		}
	}
	return mesh
}
