package tui

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/bbhexp/internal/scene"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// Palette supplies hex colours per role.
type Palette interface {
	Hex(scene.Role) string
}

// fieldCutoff hides field samples whose colour level is this close to the
// neutral middle of the colour map.
const fieldCutoff = 0.08

const boxHex = "#585858"

// Painter draws frames onto a Braille canvas.
type Painter struct {
	palette Palette
	cmap    palette.ColorMap
}

func NewPainter(p Palette) *Painter {
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(1)
	return &Painter{palette: p, cmap: cmap}
}

type projector struct {
	cam    scene.Camera
	cx, cy float64
	scale  float64
}

func newProjector(c *Canvas, f *scene.Frame) projector {
	w, h := c.Dots()
	side := math.Min(float64(w), float64(h))
	return projector{
		cam:   scene.NewCamera(f.View, f.Range),
		cx:    float64(w) / 2,
		cy:    float64(h) / 2,
		scale: side / (2 * math.Sqrt(3)),
	}
}

// dot maps p to canvas dots. Screen y grows downwards.
func (p projector) dot(v r3.Vector) (int, int, float64) {
	x, y, d := p.cam.Project(v)
	return int(math.Round(p.cx + x*p.scale)), int(math.Round(p.cy - y*p.scale)), d
}

func (p projector) line(c *Canvas, a, b r3.Vector, hex string) {
	x0, y0, _ := p.dot(a)
	x1, y1, _ := p.dot(b)
	c.Line(x0, y0, x1, y1, hex)
}

type stroke struct {
	z     int
	depth float64
	draw  func()
}

// Paint clears c and draws f into it.
func (pt *Painter) Paint(c *Canvas, f *scene.Frame) {
	c.Clear()
	p := newProjector(c, f)
	var strokes []stroke

	for _, e := range scene.CubeEdges(f.Range) {
		strokes = append(strokes, stroke{z: -300, draw: func() { p.line(c, e[0], e[1], boxHex) }})
	}
	for i := range f.Fields {
		fd := &f.Fields[i]
		for iv, row := range fd.Points {
			for iu, v := range row {
				level := fd.Level[iv][iu]
				if math.Abs(level-0.5) < fieldCutoff {
					continue
				}
				hex := pt.levelHex(level)
				x, y, d := p.dot(v)
				strokes = append(strokes, stroke{z: fd.Z, depth: d, draw: func() { c.Set(x, y, hex) }})
			}
		}
	}
	for i := range f.Surfaces {
		s := &f.Surfaces[i]
		hex := pt.palette.Hex(s.Role)
		for _, row := range s.Mesh {
			for _, v := range row {
				x, y, d := p.dot(v)
				strokes = append(strokes, stroke{z: s.Z, depth: d, draw: func() { c.Set(x, y, hex) }})
			}
		}
	}
	for i := range f.Polylines {
		pl := &f.Polylines[i]
		hex := pt.palette.Hex(pl.Role)
		for j := 0; j+1 < len(pl.Points); j++ {
			a, b := pl.Points[j], pl.Points[j+1]
			strokes = append(strokes, stroke{z: pl.Z, draw: func() { p.line(c, a, b, hex) }})
		}
	}
	for _, a := range f.Arrows {
		hex := pt.palette.Hex(a.Role)
		strokes = append(strokes, stroke{z: a.Z, draw: func() { p.line(c, a.From, a.To, hex) }})
	}

	sort.SliceStable(strokes, func(i, j int) bool {
		if strokes[i].z != strokes[j].z {
			return strokes[i].z < strokes[j].z
		}
		return strokes[i].depth < strokes[j].depth
	})
	for _, s := range strokes {
		s.draw()
	}
}

func (pt *Painter) levelHex(level float64) string {
	col, err := pt.cmap.At(math.Max(0, math.Min(1, level)))
	if err != nil {
		return ""
	}
	cf, ok := colorful.MakeColor(col)
	if !ok {
		return ""
	}
	return cf.Hex()
}
