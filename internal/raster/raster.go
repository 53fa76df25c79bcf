// Package raster draws scene frames onto gonum/plot canvases. The same
// code path serves bitmaps (vgimg), PDF (vgpdf) and anything else that
// implements vg.Canvas.
package raster

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/scene"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Palette supplies the colour of every role.
type Palette interface {
	Color(scene.Role) color.Color
}

const (
	// SeriesFraction is the share of the canvas height given to the strain
	// time series when a frame carries one.
	SeriesFraction = 0.25

	zBox = -300

	arrowHead  = vg.Length(7)
	arrowWidth = vg.Length(1.5)
	textSize   = vg.Length(9)
)

var boxColor = color.NRGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}

type Rasterizer struct {
	palette Palette
	cmap    palette.ColorMap
	font    font.Font
	handler text.Handler
}

func New(p Palette) *Rasterizer {
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(1)
	return &Rasterizer{
		palette: p,
		cmap:    cmap,
		font:    font.From(plot.DefaultFont, textSize),
		handler: plot.DefaultTextHandler,
	}
}

// item is one depth-sorted primitive.
type item struct {
	z     int
	depth float64
	draw  func(c draw.Canvas)
}

// view maps world points into the 3D area of a canvas.
type view struct {
	cam    scene.Camera
	cx, cy vg.Length
	scale  vg.Length
}

func newView(c draw.Canvas, f *scene.Frame) view {
	w := c.Max.X - c.Min.X
	h := c.Max.Y - c.Min.Y
	side := w
	if h < side {
		side = h
	}
	return view{
		cam:   scene.NewCamera(f.View, f.Range),
		cx:    c.Min.X + w/2,
		cy:    c.Min.Y + h/2,
		scale: side / vg.Length(2*math.Sqrt(3)),
	}
}

func (v view) point(p r3.Vector) (vg.Point, float64) {
	x, y, d := v.cam.Project(p)
	return vg.Point{X: v.cx + vg.Length(x)*v.scale, Y: v.cy + vg.Length(y)*v.scale}, d
}

// Draw renders f into c. With a series panel the bottom SeriesFraction of
// c holds the time series and the rest the 3D scene.
func (r *Rasterizer) Draw(c draw.Canvas, f *scene.Frame) error {
	c.SetColor(color.White)
	c.Fill(c.Rectangle.Path())

	area := c
	if f.Series != nil {
		h := c.Max.Y - c.Min.Y
		area = draw.Crop(c, 0, 0, SeriesFraction*h, 0)
		panel := draw.Crop(c, 0, 0, 0, -(1-SeriesFraction)*h)
		if err := r.drawSeries(panel, f.Series); err != nil {
			return err
		}
	}

	v := newView(area, f)
	items, err := r.items(v, f)
	if err != nil {
		return err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].z != items[j].z {
			return items[i].z < items[j].z
		}
		return items[i].depth < items[j].depth
	})
	for _, it := range items {
		it.draw(area)
	}
	r.drawTexts(area, f)
	return nil
}

func (r *Rasterizer) items(v view, f *scene.Frame) ([]item, error) {
	var items []item

	for _, e := range scene.CubeEdges(f.Range) {
		a, da := v.point(e[0])
		b, db := v.point(e[1])
		items = append(items, item{z: zBox, depth: (da + db) / 2, draw: func(c draw.Canvas) {
			c.SetLineWidth(0.5)
			c.SetColor(boxColor)
			c.Stroke(line(a, b))
		}})
	}

	for i := range f.Fields {
		its, err := r.field(v, &f.Fields[i])
		if err != nil {
			return nil, err
		}
		items = append(items, its...)
	}
	for i := range f.Surfaces {
		items = append(items, r.surface(v, &f.Surfaces[i])...)
	}
	for i := range f.Polylines {
		items = append(items, r.polyline(v, &f.Polylines[i])...)
	}
	for i := range f.Arrows {
		items = append(items, r.arrow(v, &f.Arrows[i]))
	}
	return items, nil
}

func (r *Rasterizer) field(v view, fd *scene.Field) ([]item, error) {
	var items []item
	for iv := 0; iv+1 < len(fd.Points); iv++ {
		for iu := 0; iu+1 < len(fd.Points[iv]); iu++ {
			level := (fd.Level[iv][iu] + fd.Level[iv][iu+1] + fd.Level[iv+1][iu] + fd.Level[iv+1][iu+1]) / 4
			col, err := r.cmap.At(clamp01(level))
			if err != nil {
				return nil, fmt.Errorf("field colour: %w", err)
			}
			quad, depth := v.quad(fd.Points[iv][iu], fd.Points[iv][iu+1], fd.Points[iv+1][iu+1], fd.Points[iv+1][iu])
			items = append(items, item{z: fd.Z, depth: depth, draw: func(c draw.Canvas) {
				c.SetColor(col)
				c.Fill(quad)
			}})
		}
	}
	return items, nil
}

func (r *Rasterizer) surface(v view, s *scene.Surface) []item {
	col := withAlpha(r.palette.Color(s.Role), s.Alpha)
	var items []item
	for i := 0; i+1 < len(s.Mesh); i++ {
		for j := 0; j+1 < len(s.Mesh[i]); j++ {
			quad, depth := v.quad(s.Mesh[i][j], s.Mesh[i][j+1], s.Mesh[i+1][j+1], s.Mesh[i+1][j])
			items = append(items, item{z: s.Z, depth: depth, draw: func(c draw.Canvas) {
				c.SetColor(col)
				c.Fill(quad)
			}})
		}
	}
	return items
}

func (r *Rasterizer) polyline(v view, pl *scene.Polyline) []item {
	col := withAlpha(r.palette.Color(pl.Role), pl.Alpha)
	width := vg.Length(pl.Width)
	if width <= 0 {
		width = 1
	}
	var items []item
	for i := 0; i+1 < len(pl.Points); i++ {
		a, da := v.point(pl.Points[i])
		b, db := v.point(pl.Points[i+1])
		items = append(items, item{z: pl.Z, depth: (da + db) / 2, draw: func(c draw.Canvas) {
			c.SetLineWidth(width)
			c.SetColor(col)
			c.Stroke(line(a, b))
		}})
	}
	return items
}

func (r *Rasterizer) arrow(v view, a *scene.Arrow) item {
	col := r.palette.Color(a.Role)
	from, df := v.point(a.From)
	to, dt := v.point(a.To)
	return item{z: a.Z, depth: (df + dt) / 2, draw: func(c draw.Canvas) {
		c.SetLineWidth(arrowWidth)
		c.SetColor(col)
		c.Stroke(line(from, to))
		if head, ok := arrowHeadPath(from, to); ok {
			c.Fill(head)
		}
	}}
}

func (v view) quad(p0, p1, p2, p3 r3.Vector) (vg.Path, float64) {
	var path vg.Path
	depth := 0.0
	for i, p := range []r3.Vector{p0, p1, p2, p3} {
		pt, d := v.point(p)
		depth += d / 4
		if i == 0 {
			path.Move(pt)
		} else {
			path.Line(pt)
		}
	}
	path.Close()
	return path, depth
}

func line(a, b vg.Point) vg.Path {
	var p vg.Path
	p.Move(a)
	p.Line(b)
	return p
}

// arrowHeadPath returns a filled triangle at the tip of from→to. Arrows
// seen end-on have no head.
func arrowHeadPath(from, to vg.Point) (vg.Path, bool) {
	d := to.Sub(from)
	n := math.Hypot(float64(d.X), float64(d.Y))
	if n < 1e-9 {
		return nil, false
	}
	ux, uy := vg.Length(float64(d.X)/n), vg.Length(float64(d.Y)/n)
	size := arrowHead
	if vg.Length(n) < 2*size {
		size = vg.Length(n) / 2
	}
	base := vg.Point{X: to.X - ux*size, Y: to.Y - uy*size}
	half := size / 2
	var p vg.Path
	p.Move(to)
	p.Line(vg.Point{X: base.X - uy*half, Y: base.Y + ux*half})
	p.Line(vg.Point{X: base.X + uy*half, Y: base.Y - ux*half})
	p.Close()
	return p, true
}

// Relative anchors of the text slots inside the 3D area.
var slotAnchors = map[scene.TextSlot]struct {
	x, y   float64
	xalign text.XAlignment
	yalign text.YAlignment
}{
	scene.SlotTime:       {0.03, 0.05, text.XLeft, text.YBottom},
	scene.SlotProperties: {0.03, 0.97, text.XLeft, text.YTop},
	scene.SlotFreeze:     {0.60, 0.75, text.XLeft, text.YBottom},
	scene.SlotTimestep:   {0.45, 0.75, text.XLeft, text.YBottom},
	scene.SlotTitle:      {0.97, 0.97, text.XRight, text.YTop},
}

func (r *Rasterizer) drawTexts(c draw.Canvas, f *scene.Frame) {
	texts := append([]scene.Text(nil), f.Texts...)
	sort.SliceStable(texts, func(i, j int) bool { return texts[i].Z < texts[j].Z })
	for _, t := range texts {
		if t.Content == "" {
			continue
		}
		a, ok := slotAnchors[t.Slot]
		if !ok {
			continue
		}
		sty := text.Style{
			Color:   r.palette.Color(t.Role),
			Font:    r.font,
			XAlign:  a.xalign,
			YAlign:  a.yalign,
			Handler: r.handler,
		}
		pt := vg.Point{
			X: c.Min.X + vg.Length(a.x)*(c.Max.X-c.Min.X),
			Y: c.Min.Y + vg.Length(a.y)*(c.Max.Y-c.Min.Y),
		}
		c.FillText(sty, pt, t.Content)
	}
}

func (r *Rasterizer) drawSeries(c draw.Canvas, s *scene.SeriesPanel) error {
	p, err := r.seriesPlot(s)
	if err != nil {
		return err
	}
	p.Draw(c)
	return nil
}

// seriesPlot lays out the strain panel. The axes span the strain samples
// only; a cursor past them, as in the remnant phase, is left out.
func (r *Rasterizer) seriesPlot(s *scene.SeriesPanel) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "t (M)"
	p.Y.Label.Text = "r h / M"
	if s.YLim > 0 {
		p.Y.Min, p.Y.Max = -s.YLim, s.YLim
	}
	var xmin, xmax float64
	if n := len(s.Times); n > 0 {
		xmin, xmax = s.Times[0], s.Times[n-1]
	}

	for _, series := range []struct {
		role  scene.Role
		label string
		ys    []float64
	}{
		{scene.RoleHPlus, "h+", s.Plus},
		{scene.RoleHCross, "h×", s.Cross},
	} {
		xys := make(plotter.XYs, len(s.Times))
		for i, t := range s.Times {
			xys[i].X = t
			xys[i].Y = series.ys[i]
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", series.label, err)
		}
		l.Color = r.palette.Color(series.role)
		l.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(series.label, l)
	}

	ylim := s.YLim
	if ylim <= 0 {
		ylim = 1
	}
	if s.Cursor >= xmin && s.Cursor <= xmax {
		cursor, err := plotter.NewLine(plotter.XYs{{X: s.Cursor, Y: -ylim}, {X: s.Cursor, Y: ylim}})
		if err != nil {
			return nil, fmt.Errorf("series cursor: %w", err)
		}
		cursor.Color = r.palette.Color(scene.RoleText)
		cursor.Width = vg.Points(0.75)
		cursor.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(cursor)
	}
	p.Legend.Top = true

	// Add widens the axes to the data; pin them back.
	if len(s.Times) > 0 {
		p.X.Min, p.X.Max = xmin, xmax
	}
	if s.YLim > 0 {
		p.Y.Min, p.Y.Max = -s.YLim, s.YLim
	}
	return p, nil
}

func withAlpha(c color.Color, alpha float64) color.Color {
	if alpha <= 0 || alpha >= 1 {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * alpha))
	return n
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
