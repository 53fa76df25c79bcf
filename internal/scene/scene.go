// Package scene holds the draw commands produced for one animation frame.
// Frames are plain data; rasterizers and the terminal player turn them into
// pixels.
package scene

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/geom"
)

// Role identifies what a primitive depicts. Palettes map roles to colours.
type Role int

const (
	RoleTrajA Role = iota
	RoleTrajB
	RoleSpinA
	RoleSpinB
	RoleSpinRemnant
	RoleAngularMomentum
	RoleHorizon
	RoleInfo
	RoleText
	RoleHPlus
	RoleHCross
	numRoles
)

var roleNames = [...]string{
	RoleTrajA:           "traj_a",
	RoleTrajB:           "traj_b",
	RoleSpinA:           "spin_a",
	RoleSpinB:           "spin_b",
	RoleSpinRemnant:     "spin_remnant",
	RoleAngularMomentum: "angular_momentum",
	RoleHorizon:         "horizon",
	RoleInfo:            "info",
	RoleText:            "text",
	RoleHPlus:           "h_plus",
	RoleHCross:          "h_cross",
}

func (r Role) String() string {
	if r < 0 || r >= numRoles {
		return "unknown"
	}
	return roleNames[r]
}

// Roles lists every role in declaration order.
func Roles() []Role {
	out := make([]Role, numRoles)
	for i := range out {
		out[i] = Role(i)
	}
	return out
}

// Drawing order. Higher values are drawn later.
const (
	ZField   = -200
	ZSpin    = 90
	ZTraj    = 100
	ZNotice  = 100
	ZHorizon = 150
	ZL       = 150
	ZInfo    = 200
)

// Phase is the state of the animation a frame belongs to.
type Phase int

const (
	PhaseBinary Phase = iota
	PhaseRemnant
)

func (p Phase) String() string {
	if p == PhaseRemnant {
		return "remnant"
	}
	return "binary"
}

// View is a camera orientation in degrees.
type View struct {
	Elev float64
	Azim float64
}

// DefaultView matches the usual 3D axes default.
var DefaultView = View{Elev: 30, Azim: -60}

type Polyline struct {
	Role   Role
	Points []r3.Vector
	Width  float64
	Alpha  float64
	Z      int
}

type Arrow struct {
	Role     Role
	From, To r3.Vector
	Z        int
}

// Surface is a quadrilateral mesh, indexed [row][col].
type Surface struct {
	Role  Role
	Mesh  [][]r3.Vector
	Alpha float64
	Z     int
}

// Field is a scalar sampled on a reference plane. Points are the 3D
// positions of the samples; Level holds the colour coordinate in [0, 1].
// Height fields carry their displacement in Points.
type Field struct {
	Axis   geom.Axis
	Points [][]r3.Vector
	Values [][]float64
	Level  [][]float64
	Height bool
	Z      int
}

// TextSlot is where a text block is anchored in the frame.
type TextSlot int

const (
	SlotTime TextSlot = iota
	SlotProperties
	SlotFreeze
	SlotTimestep
	SlotTitle
)

type Text struct {
	Slot    TextSlot
	Role    Role
	Content string
	Z       int
}

// SeriesPanel is the strain time series seen from the current view.
type SeriesPanel struct {
	Times  []float64
	Plus   []float64
	Cross  []float64
	YLim   float64
	Cursor float64
}

type Frame struct {
	Index int
	Time  float64
	Phase Phase
	// Reset marks the frames where the other phase's artists are cleared.
	Reset bool
	View  View
	// Range is the half-width of the plotting cube.
	Range float64

	Fields    []Field
	Surfaces  []Surface
	Polylines []Polyline
	Arrows    []Arrow
	Texts     []Text
	Series    *SeriesPanel
}

// Text returns the content in slot, or "" when the slot is empty.
func (f Frame) Text(slot TextSlot) string {
	for _, t := range f.Texts {
		if t.Slot == slot {
			return t.Content
		}
	}
	return ""
}
