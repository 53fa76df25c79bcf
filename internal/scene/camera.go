package scene

import (
	"math"

	"github.com/golang/geo/r3"
)

// Camera projects world points orthographically for a View. The cube
// [-rng, rng]^3 maps into [-sqrt(3), sqrt(3)] on screen, x to the right and
// y up; depth grows towards the viewer.
type Camera struct {
	right, up, eye r3.Vector
	scale          float64
}

func NewCamera(v View, rng float64) Camera {
	elev := v.Elev * math.Pi / 180
	azim := v.Azim * math.Pi / 180
	se, ce := math.Sincos(elev)
	sa, ca := math.Sincos(azim)

	scale := 1.0
	if rng > 0 {
		scale = 1 / rng
	}
	return Camera{
		eye:   r3.Vector{X: ce * ca, Y: ce * sa, Z: se},
		right: r3.Vector{X: -sa, Y: ca},
		up:    r3.Vector{X: -se * ca, Y: -se * sa, Z: ce},
		scale: scale,
	}
}

// Project returns screen coordinates and depth of p.
func (c Camera) Project(p r3.Vector) (x, y, depth float64) {
	p = p.Mul(c.scale)
	return p.Dot(c.right), p.Dot(c.up), p.Dot(c.eye)
}

// Eye is the unit vector from the origin towards the viewer.
func (c Camera) Eye() r3.Vector { return c.eye }

// CubeEdges returns the twelve edges of the cube [-rng, rng]^3.
func CubeEdges(rng float64) [][2]r3.Vector {
	s := rng
	v := []r3.Vector{
		{X: -s, Y: -s, Z: -s}, {X: s, Y: -s, Z: -s}, {X: s, Y: s, Z: -s}, {X: -s, Y: s, Z: -s},
		{X: -s, Y: -s, Z: s}, {X: s, Y: -s, Z: s}, {X: s, Y: s, Z: s}, {X: -s, Y: s, Z: s},
	}
	idx := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	edges := make([][2]r3.Vector, len(idx))
	for i, e := range idx {
		edges[i] = [2]r3.Vector{v[e[0]], v[e[1]]}
	}
	return edges
}
