// Package app wires the surrogate, the reconstruction and the renderers into
// the three ways of showing a binary: a still, a movie file or the terminal
// player.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/bbhexp/internal/anim"
	"github.com/san-kum/bbhexp/internal/bbh"
	"github.com/san-kum/bbhexp/internal/config"
	"github.com/san-kum/bbhexp/internal/encode"
	"github.com/san-kum/bbhexp/internal/raster"
	"github.com/san-kum/bbhexp/internal/resample"
	"github.com/san-kum/bbhexp/internal/scene"
	"github.com/san-kum/bbhexp/internal/surrogate"
	"github.com/san-kum/bbhexp/internal/tui"
	vgdraw "gonum.org/v1/plot/vg/draw"
)

// ErrNoBinary is returned when neither the user nor a bundle model chose the
// binary to animate.
var ErrNoBinary = errors.New("no binary given: set --q, --chiA and --chiB, a --preset, a binary block in --config, or a bundle --model")

// progressEvery is how often, in frames, movie encoding reports progress.
const progressEvery = 100

// Runner runs one configuration.
type Runner struct {
	Config   *config.Config
	Logger   *log.Logger
	Registry *surrogate.Registry
	// BinarySet marks binary parameters chosen by the user. Without it only
	// a bundle model, which carries its own binary, can run.
	BinarySet bool
}

func NewRunner(cfg *config.Config, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Config: cfg, Logger: logger, Registry: surrogate.NewRegistry()}
}

// Session is a prepared binary ready to be rendered.
type Session struct {
	Surrogate surrogate.Surrogate
	Binary    bbh.Binary
	Data      *anim.Data
	Renderer  *anim.Renderer
	Palette   *config.Palette
}

// Surrogate opens the configured model and the binary to query it with.
func (r *Runner) Surrogate() (surrogate.Surrogate, bbh.Binary, error) {
	s, err := r.Registry.Open(r.Config.Model)
	if err != nil {
		return surrogate.Surrogate{}, bbh.Binary{}, err
	}
	if r.BinarySet {
		return s, r.Config.Binary.Binary(), nil
	}
	bm, ok := s.Model.(*surrogate.BundleModel)
	if !ok {
		return surrogate.Surrogate{}, bbh.Binary{}, ErrNoBinary
	}
	b := bm.Binary()
	r.Logger.Info("using bundled binary", "binary", b)
	return s, b, nil
}

// Prepare queries the surrogate and builds the renderer.
func (r *Runner) Prepare(ctx context.Context) (*Session, error) {
	cfg := r.Config
	pal, err := config.GetPalette(cfg.Palette)
	if err != nil {
		return nil, err
	}
	s, b, err := r.Surrogate()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := BinaryData(ctx, s, b, DataOptions{
		Grid: resample.Options{
			PointsPerOrbit: cfg.Render.PointsPerOrbit,
			UniformStep:    cfg.Render.UniformTimeStepSize,
			FreezeTime:     cfg.Render.FreezeTime,
			MarkerTol:      resample.DefaultMarkerTol,
		},
		OmegaStart: cfg.Binary.OmegaStart,
	})
	if err != nil {
		return nil, fmt.Errorf("binary data for %s: %w", b, err)
	}
	r.Logger.Debug("surrogate evaluated", "model", s.Label(), "samples", len(data.Times), "elapsed", time.Since(start))

	rend, err := anim.NewRenderer(data, RendererOptions(cfg))
	if err != nil {
		return nil, err
	}
	r.Logger.Info("binary ready",
		"binary", b,
		"samples", len(data.Times),
		"frames", rend.Timeline().Len(),
		"max_range", fmt.Sprintf("%.2f", rend.MaxRange()),
		"remnant_mass", fmt.Sprintf("%.4f", data.Remnant.Mass))

	return &Session{Surrogate: s, Binary: b, Data: data, Renderer: rend, Palette: pal}, nil
}

// RendererOptions maps the render configuration onto the renderer.
func RendererOptions(cfg *config.Config) anim.Options {
	rc := cfg.Render
	opts := anim.Options{
		DrawFullTrajectory:     rc.DrawFullTrajectory,
		UseSpinAngularMomentum: rc.UseSpinAngularMomentumForArrows,
		NoFreezeNearMerger:     rc.NoFreezeNearMerger,
		ProjectOnAllPlanes:     rc.ProjectOnAllPlanes,
		HeightMap:              rc.HeightMap,
		AutoRotateCamera:       rc.AutoRotateCamera,
		NoWaveTimeSeries:       rc.NoWaveTimeSeries,
		NoTimeLabel:            rc.NoTimeLabel,
		NoSurrogateLabel:       rc.NoSurrogateLabel,
		PointsPerOrbit:         rc.PointsPerOrbit,
		GridPoints:             rc.GridPoints,
		FreezeTime:             rc.FreezeTime,
		RemnantStep:            anim.DefaultRemnantStep,
	}
	if rc.UniformTimeStepSize > 0 {
		opts.RemnantStep = rc.UniformTimeStepSize
	}
	return opts
}

// FrameSize is the output size in pixels. Without the time series the
// figure loses the bottom panel.
func FrameSize(cfg *config.Config) (int, int) {
	w, h := cfg.Output.Width, cfg.Output.Height
	if cfg.Render.NoWaveTimeSeries {
		h = int(math.Round(float64(h) * 4 / 5.5))
	}
	return w, h
}

// Run renders according to the configuration: a still when a still time
// is set, a movie when a save file is set, the terminal player otherwise.
func (r *Runner) Run(ctx context.Context) error {
	cfg := r.Config
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Output.StillTime == nil && cfg.Output.SaveFile != "" {
		if err := encode.CheckPath(cfg.Output.SaveFile); err != nil {
			return err
		}
	}

	sess, err := r.Prepare(ctx)
	if err != nil {
		return err
	}

	switch {
	case cfg.Output.StillTime != nil:
		_, err = r.Still(sess, *cfg.Output.StillTime)
	case cfg.Output.SaveFile != "":
		err = r.Movie(ctx, sess)
	default:
		frames := sess.Renderer.Frames(cfg.Render.FreezeRepeats)
		player := anim.NewPlayer(frames, cfg.Render.NoWaveTimeSeries)
		err = tui.Run(ctx, sess.Renderer, player, sess.Palette, sess.Data.Label)
	}
	return err
}

func (r *Runner) drawFunc(rs *raster.Rasterizer, sess *Session, num int) encode.DrawFunc {
	view := sess.Renderer.View(num, scene.DefaultView)
	frame := sess.Renderer.Render(num, view)
	return func(c vgdraw.Canvas) error { return rs.Draw(c, &frame) }
}

// Still writes the frame nearest t as PNG and PDF and returns the paths.
func (r *Runner) Still(sess *Session, t float64) ([]string, error) {
	num := sess.Renderer.Timeline().Nearest(t)
	w, h := FrameSize(r.Config)
	rs := raster.New(sess.Palette)
	paths, err := encode.Still(r.Config.StillPrefix(), config.StillTag(t), w, h, r.drawFunc(rs, sess, num))
	if err != nil {
		return nil, err
	}
	r.Logger.Info("wrote still", "t", sess.Renderer.Timeline().T[num], "files", paths)
	return paths, nil
}

// Movie encodes every frame, freeze included, into the save file.
func (r *Runner) Movie(ctx context.Context, sess *Session) (err error) {
	cfg := r.Config
	enc, err := encode.ForPath(ctx, cfg.Output.SaveFile, cfg.Output.FPS)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
	}()

	frames := sess.Renderer.Frames(cfg.Render.FreezeRepeats)
	w, h := FrameSize(cfg)
	rs := raster.New(sess.Palette)
	start := time.Now()

	// Repeated frames are rendered once.
	last := -1
	var lastImg image.Image
	for i, num := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if num != last {
			img, err := encode.Image(w, h, r.drawFunc(rs, sess, num))
			if err != nil {
				return fmt.Errorf("frame %d: %w", num, err)
			}
			lastImg, last = img, num
		}
		if err := enc.Add(lastImg); err != nil {
			return err
		}
		if (i+1)%progressEvery == 0 {
			r.Logger.Debug("encoding", "frame", i+1, "of", len(frames), "elapsed", time.Since(start))
		}
	}
	r.Logger.Info("wrote movie", "file", cfg.Output.SaveFile, "frames", len(frames), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
