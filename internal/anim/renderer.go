package anim

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/geom"
	"github.com/san-kum/bbhexp/internal/scene"
)

const (
	// KerrArrowScale and SpinArrowScale differ from AngularMomentumScale on
	// purpose, so the arrows are not read as comparable.
	KerrArrowScale       = 10.0
	SpinArrowScale       = 12.0
	AngularMomentumScale = 12.0

	// HistoryFraction of an orbit is kept in the trajectory trail.
	HistoryFraction = 0.75

	// SmallComponent is the magnitude below which spin components print as 0.
	SmallComponent = 1e-3

	// MergerWindow is |t| below which the binary artists are cleared.
	MergerWindow = 10.0

	FreezeNotice = "Freezing video"

	trajWidth = 2.0
	trajAlpha = 0.8
	bhAlpha   = 0.9
)

type Options struct {
	DrawFullTrajectory     bool
	UseSpinAngularMomentum bool
	NoFreezeNearMerger     bool
	ProjectOnAllPlanes     bool
	HeightMap              bool
	AutoRotateCamera       bool
	NoWaveTimeSeries       bool
	NoTimeLabel            bool
	NoSurrogateLabel       bool

	PointsPerOrbit int
	GridPoints     int
	FreezeTime     float64
	// RemnantStep is the playback step after the waveform has gone.
	RemnantStep float64
}

func DefaultOptions() Options {
	return Options{
		PointsPerOrbit: 30,
		GridPoints:     11,
		FreezeTime:     -100,
		RemnantStep:    DefaultRemnantStep,
	}
}

// Renderer computes frames. Everything expensive that does not depend on
// the frame number is prepared once by NewRenderer.
type Renderer struct {
	data     *Data
	opts     Options
	timeline *Timeline

	maxRange   float64
	histFrames int
	planes     [3]geom.Plane
	projectors [3]*geom.Projector
	norm       SymLogNorm

	horizonA, horizonB, horizonC geom.Horizon
	remnantPos                   []r3.Vector
	camera                       []scene.View
	hmax                         float64
}

func NewRenderer(data *Data, opts Options) (*Renderer, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if opts.PointsPerOrbit <= 0 || opts.GridPoints < 2 {
		return nil, fmt.Errorf("anim: bad options: points per orbit %d, grid points %d", opts.PointsPerOrbit, opts.GridPoints)
	}

	r := &Renderer{data: data, opts: opts}
	r.maxRange = data.MaxRange()
	if !(r.maxRange > 0) {
		return nil, fmt.Errorf("anim: degenerate trajectories, max range %g", r.maxRange)
	}
	r.timeline = NewTimeline(data.Times, r.maxRange, opts.RemnantStep, opts.FreezeTime)
	r.histFrames = int(HistoryFraction * float64(opts.PointsPerOrbit))

	r.planes = geom.Planes(opts.GridPoints, r.maxRange)
	for i := range r.planes {
		r.projectors[i] = geom.NewProjector(&r.planes[i], data.Modes)
	}

	// linthresh from the first frame, vmax when the peak has crossed the box.
	z := r.projectors[geom.AxisZ]
	linthresh := maxAbs(z.At(r.timeline.T, 0, data.Modes))
	vmax := maxOf(z.At(r.timeline.T, r.timeline.Nearest(r.maxRange), data.Modes))
	r.norm = NewNorm(linthresh, vmax)

	mA, mB := data.Binary.Masses()
	r.horizonA = geom.KerrSchild(mA, data.Binary.ChiA)
	r.horizonB = geom.KerrSchild(mB, data.Binary.ChiB)
	r.horizonC = geom.KerrSchild(data.Remnant.Mass, data.Remnant.Chi)

	r.remnantPos = make([]r3.Vector, r.timeline.Len())
	for i, t := range r.timeline.T {
		r.remnantPos[i] = data.Remnant.Kick.Mul(t)
	}

	if opts.AutoRotateCamera {
		r.camera = CameraPath(data.Times, CameraPeriod, CameraStopTime, CameraAzimShift)
	}
	r.hmax = geom.PeakStrain(geom.WaveformTimeseries(data.Modes, 0, 90))
	return r, nil
}

func (r *Renderer) Timeline() *Timeline { return r.timeline }
func (r *Renderer) MaxRange() float64   { return r.maxRange }
func (r *Renderer) Norm() SymLogNorm    { return r.norm }

// Frames returns the frame numbers to play, including the freeze.
func (r *Renderer) Frames(repeats int) []int {
	return r.timeline.Frames(!r.opts.NoFreezeNearMerger, repeats)
}

// ZeroIfSmall hides numerical noise in printed spin components.
func ZeroIfSmall(x float64) float64 {
	if math.Abs(x) < SmallComponent {
		return 0
	}
	return x
}

// View returns the camera for frame num: the scripted path while it is
// active, else the caller's view.
func (r *Renderer) View(num int, view scene.View) scene.View {
	if r.camera != nil && num < len(r.camera) && r.timeline.T[num] < CameraStopTime {
		return r.camera[num]
	}
	return view
}

// Render builds frame num as seen from view. Samples are taken at num-1.
func (r *Renderer) Render(num int, view scene.View) scene.Frame {
	tl := r.timeline
	t := tl.T[num]
	k := max(num-1, 0)

	f := scene.Frame{
		Index: num,
		Time:  t,
		View:  r.View(num, view),
		Range: r.maxRange,
	}

	if !r.opts.NoTimeLabel {
		f.Texts = append(f.Texts, scene.Text{Slot: scene.SlotTime, Role: scene.RoleText,
			Content: fmt.Sprintf("t=%.1f M", t), Z: scene.ZInfo})
	}
	if !r.opts.NoSurrogateLabel && r.data.Label != "" {
		f.Texts = append(f.Texts, scene.Text{Slot: scene.SlotTitle, Role: scene.RoleText,
			Content: r.data.Label, Z: scene.ZInfo})
	}
	if !r.opts.NoFreezeNearMerger && (num == tl.FreezeIdx-1 || num == tl.FreezeIdx) {
		f.Texts = append(f.Texts, scene.Text{Slot: scene.SlotFreeze, Role: scene.RoleInfo,
			Content: FreezeNotice, Z: scene.ZNotice})
	}

	if t < tl.WaveformEnd {
		r.addFields(&f, k)
	} else {
		f.Texts = append(f.Texts, scene.Text{Slot: scene.SlotTimestep, Role: scene.RoleInfo,
			Content: fmt.Sprintf("Increased time step to %gM", tl.RemnantStep), Z: scene.ZNotice})
	}

	if t < 0 {
		r.addBinary(&f, num, k)
	} else {
		r.addRemnant(&f, k)
	}

	if !r.opts.NoWaveTimeSeries {
		f.Series = r.seriesPanel(f.View, t)
	}
	return f
}

func (r *Renderer) addFields(f *scene.Frame, k int) {
	modes := r.data.Modes
	T := r.timeline.T

	if r.opts.ProjectOnAllPlanes && !r.opts.HeightMap {
		for _, axis := range []geom.Axis{geom.AxisX, geom.AxisY} {
			f.Fields = append(f.Fields, r.field(axis, r.projectors[axis].At(T, k, modes), false))
		}
	}
	z := r.projectors[geom.AxisZ].At(T, k, modes)
	f.Fields = append(f.Fields, r.field(geom.AxisZ, z, r.opts.HeightMap))
}

func (r *Renderer) field(axis geom.Axis, values [][]float64, height bool) scene.Field {
	p := &r.planes[axis]
	fl := scene.Field{
		Axis:   axis,
		Values: values,
		Points: make([][]r3.Vector, len(values)),
		Level:  make([][]float64, len(values)),
		Height: height,
		Z:      scene.ZField,
	}
	for iv, row := range values {
		fl.Points[iv] = make([]r3.Vector, len(row))
		fl.Level[iv] = make([]float64, len(row))
		for iu, h := range row {
			pt := p.Point(iu, iv)
			if height {
				pt.Z = -r.maxRange + 3*h/r.norm.VMax
			}
			fl.Points[iv][iu] = pt
			fl.Level[iv][iu] = r.norm.Normalize(h)
		}
	}
	return fl
}

func (r *Renderer) spinArrow(role scene.Role, pos r3.Vector, mass float64, chi r3.Vector) scene.Arrow {
	var tip r3.Vector
	if r.opts.UseSpinAngularMomentum {
		tip = chi.Mul(mass * mass * SpinArrowScale)
	} else {
		tip = chi.Mul(mass * KerrArrowScale)
	}
	return scene.Arrow{Role: role, From: pos, To: pos.Add(tip), Z: scene.ZSpin}
}

func (r *Renderer) addBinary(f *scene.Frame, num, k int) {
	d := r.data
	f.Phase = scene.PhaseBinary
	f.Reset = num < 2

	chiA, chiB := d.ChiA[k], d.ChiB[k]
	f.Texts = append(f.Texts, scene.Text{Slot: scene.SlotProperties, Role: scene.RoleText, Z: scene.ZInfo,
		Content: fmt.Sprintf("q=%.2f\nchiA=[%.2f, %.2f, %.2f]\nchiB=[%.2f, %.2f, %.2f]",
			d.Binary.Q,
			ZeroIfSmall(chiA.X), ZeroIfSmall(chiA.Y), ZeroIfSmall(chiA.Z),
			ZeroIfSmall(chiB.X), ZeroIfSmall(chiB.Y), ZeroIfSmall(chiB.Z)),
	})

	posA, posB := d.TrajA[k], d.TrajB[k]
	f.Surfaces = append(f.Surfaces,
		scene.Surface{Role: scene.RoleHorizon, Mesh: r.horizonA.Place(posA, chiA, geom.MeshAzimuthal, geom.MeshPolar), Alpha: bhAlpha, Z: scene.ZHorizon},
		scene.Surface{Role: scene.RoleHorizon, Mesh: r.horizonB.Place(posB, chiB, geom.MeshAzimuthal, geom.MeshPolar), Alpha: bhAlpha, Z: scene.ZHorizon},
	)

	start := 0
	if !r.opts.DrawFullTrajectory {
		start = max(0, num-r.histFrames)
	}
	end := min(num, len(d.TrajA))
	f.Polylines = append(f.Polylines,
		scene.Polyline{Role: scene.RoleTrajA, Points: d.TrajA[start:end], Width: trajWidth, Alpha: trajAlpha, Z: scene.ZTraj},
		scene.Polyline{Role: scene.RoleTrajB, Points: d.TrajB[start:end], Width: trajWidth, Alpha: trajAlpha, Z: scene.ZTraj},
	)

	mA, mB := d.Binary.Masses()
	f.Arrows = append(f.Arrows,
		r.spinArrow(scene.RoleSpinA, posA, mA, chiA),
		r.spinArrow(scene.RoleSpinB, posB, mB, chiB),
		scene.Arrow{Role: scene.RoleAngularMomentum, To: d.L[k].Mul(AngularMomentumScale), Z: scene.ZL},
	)
}

func (r *Renderer) addRemnant(f *scene.Frame, k int) {
	rem := r.data.Remnant
	f.Phase = scene.PhaseRemnant
	f.Reset = math.Abs(f.Time) < MergerWindow

	chi, kick := rem.Chi, rem.Kick.Mul(1e3)
	f.Texts = append(f.Texts, scene.Text{Slot: scene.SlotProperties, Role: scene.RoleText, Z: scene.ZInfo,
		Content: fmt.Sprintf("m_f=%.2f M\nchi_f=[%.2f, %.2f, %.2f]\nv_f=[%.2f, %.2f, %.2f] x 10^-3 c",
			rem.Mass, chi.X, chi.Y, chi.Z, kick.X, kick.Y, kick.Z),
	})

	pos := r.remnantPos[k]
	f.Surfaces = append(f.Surfaces, scene.Surface{Role: scene.RoleHorizon,
		Mesh: r.horizonC.Place(pos, chi, geom.MeshAzimuthal, geom.MeshPolar), Alpha: bhAlpha, Z: scene.ZHorizon})
	f.Arrows = append(f.Arrows, r.spinArrow(scene.RoleSpinRemnant, pos, rem.Mass, chi))
}

func (r *Renderer) seriesPanel(view scene.View, t float64) *scene.SeriesPanel {
	series := geom.WaveformTimeseries(r.data.Modes, view.Azim, view.Elev)
	p := &scene.SeriesPanel{
		Times:  r.data.Times,
		Plus:   make([]float64, len(series)),
		Cross:  make([]float64, len(series)),
		YLim:   r.hmax,
		Cursor: t,
	}
	for i, h := range series {
		p.Plus[i], p.Cross[i] = real(h), imag(h)
	}
	return p
}

func maxAbs(grid [][]float64) float64 {
	m := 0.0
	for _, row := range grid {
		for _, v := range row {
			m = math.Max(m, math.Abs(v))
		}
	}
	return m
}

func maxOf(grid [][]float64) float64 {
	m := math.Inf(-1)
	for _, row := range grid {
		for _, v := range row {
			m = math.Max(m, v)
		}
	}
	return m
}
