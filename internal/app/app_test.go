package app

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/bbh"
	"github.com/san-kum/bbhexp/internal/bundle"
	"github.com/san-kum/bbhexp/internal/config"
	"github.com/san-kum/bbhexp/internal/encode"
	"github.com/san-kum/bbhexp/internal/resample"
	"github.com/san-kum/bbhexp/internal/surrogate"
)

func scenario() bbh.Binary {
	return bbh.Binary{
		Q:    2,
		ChiA: r3.Vector{X: 0.2, Y: 0.7, Z: -0.1},
		ChiB: r3.Vector{X: 0.2, Y: 0.6, Z: 0.1},
	}
}

func analytic(t *testing.T) surrogate.Surrogate {
	t.Helper()
	s, err := surrogate.NewRegistry().Open(surrogate.AnalyticName)
	if err != nil {
		t.Fatalf("open analytic: %v", err)
	}
	return s
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.ErrorLevel})
}

// nearestGap returns the distance from x to the closest sample in xs.
func nearestGap(xs []float64, x float64) float64 {
	gap := math.Inf(1)
	for _, v := range xs {
		gap = math.Min(gap, math.Abs(v-x))
	}
	return gap
}

func TestBinaryDataScenario(t *testing.T) {
	data, err := BinaryData(context.Background(), analytic(t), scenario(), DataOptions{Grid: resample.DefaultOptions()})
	if err != nil {
		t.Fatalf("BinaryData failed: %v", err)
	}
	if err := data.Validate(); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	for _, marker := range []float64{0, -100} {
		if gap := nearestGap(data.Times, marker); gap > resample.DefaultMarkerTol {
			t.Errorf("no grid sample within %g of marker %g (nearest %g away)", resample.DefaultMarkerTol, marker, gap)
		}
	}
	for i := 1; i < len(data.Times); i++ {
		if data.Times[i] <= data.Times[i-1] {
			t.Fatalf("grid not increasing at %d", i)
		}
	}
	if data.Remnant.Mass >= 1 || data.Remnant.Mass <= 0.8 {
		t.Errorf("unexpected remnant mass %g", data.Remnant.Mass)
	}
	if n := data.Remnant.Chi.Norm(); n >= 1 {
		t.Errorf("remnant spin magnitude %g not below 1", n)
	}

	// The lighter hole orbits q times further out.
	i := len(data.Times) / 4
	ra, rb := data.TrajA[i].Norm(), data.TrajB[i].Norm()
	if math.Abs(rb/ra-2) > 1e-6 {
		t.Errorf("expected |B|/|A| = 2, got %g", rb/ra)
	}
	if data.MaxRange() <= 0 {
		t.Error("expected a positive plotting range")
	}
	if data.Label != "analytic + analytic-fit" {
		t.Errorf("unexpected label %q", data.Label)
	}
}

func TestBinaryDataOmegaStart(t *testing.T) {
	s := analytic(t)
	full, err := BinaryData(context.Background(), s, scenario(), DataOptions{Grid: resample.DefaultOptions()})
	if err != nil {
		t.Fatal(err)
	}
	trimmed, err := BinaryData(context.Background(), s, scenario(), DataOptions{Grid: resample.DefaultOptions(), OmegaStart: 0.03})
	if err != nil {
		t.Fatal(err)
	}
	if len(trimmed.Times) >= len(full.Times) {
		t.Fatalf("expected fewer samples, got %d vs %d", len(trimmed.Times), len(full.Times))
	}
	if err := trimmed.Validate(); err != nil {
		t.Errorf("trimmed data invalid: %v", err)
	}
	last := full.Times[len(full.Times)-1]
	if trimmed.Times[len(trimmed.Times)-1] != last {
		t.Error("trimming must keep the end of the series")
	}
}

func TestStartIndex(t *testing.T) {
	if got := StartIndex([]float64{0.01, 0.02, 0.04, 0.08}, 0.035); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := StartIndex(nil, 0.1); got != 0 {
		t.Errorf("expected 0 for empty input, got %d", got)
	}
}

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Render.GridPoints = 5
	cfg.Output.Width = 150
	cfg.Output.Height = 165
	cfg.Output.SaveFile = filepath.Join(dir, "bbh.mp4")
	return cfg
}

// binaryRunner runs cfg with its binary marked as chosen.
func binaryRunner(cfg *config.Config) *Runner {
	r := NewRunner(cfg, quietLogger())
	r.BinarySet = true
	return r
}

func TestRunStill(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	still := -50.0
	cfg.Output.StillTime = &still

	if err := binaryRunner(cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, name := range []string{"bbh_m50.png", "bbh_m50.pdf"} {
		if info, err := os.Stat(filepath.Join(dir, name)); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestRunRejectsFormatBeforeWork(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Model = "does-not-exist"
	cfg.Output.SaveFile = "movie.avi"

	err := NewRunner(cfg, quietLogger()).Run(context.Background())
	if !errors.Is(err, encode.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRunGIF(t *testing.T) {
	if testing.Short() {
		t.Skip("renders every frame")
	}
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Output.SaveFile = filepath.Join(dir, "bbh.gif")
	cfg.Binary.OmegaStart = 0.06
	cfg.Render.FreezeRepeats = 2
	cfg.Render.NoWaveTimeSeries = true

	if err := binaryRunner(cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if info, err := os.Stat(cfg.Output.SaveFile); err != nil || info.Size() == 0 {
		t.Errorf("gif not written: %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := binaryRunner(cfg).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunNeedsBinary(t *testing.T) {
	cfg := testConfig(t.TempDir())
	still := -50.0
	cfg.Output.StillTime = &still

	err := NewRunner(cfg, quietLogger()).Run(context.Background())
	if !errors.Is(err, ErrNoBinary) {
		t.Errorf("expected ErrNoBinary for the analytic model without a binary, got %v", err)
	}
}

func TestBundleBinary(t *testing.T) {
	ctx := context.Background()
	b := scenario()
	b.ChiA = r3.Vector{Z: 0.3}
	b.ChiB = r3.Vector{Z: -0.2}

	bd, err := surrogate.Export(ctx, analytic(t), b)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	dir := t.TempDir()
	if err := bundle.Save(dir, bd); err != nil {
		t.Fatalf("save: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Model = dir
	r := NewRunner(cfg, quietLogger())
	_, got, err := r.Surrogate()
	if err != nil {
		t.Fatalf("open bundle: %v", err)
	}
	if got.ChiA != b.ChiA || got.ChiB != b.ChiB {
		t.Errorf("expected the bundled binary, got %v", got)
	}

	r.BinarySet = true
	_, got, err = r.Surrogate()
	if err != nil {
		t.Fatal(err)
	}
	if got.ChiA != (r3.Vector{}) {
		t.Errorf("expected the configured binary, got %v", got)
	}
}

func TestFrameSize(t *testing.T) {
	cfg := config.DefaultConfig()
	if w, h := FrameSize(cfg); w != 750 || h != 825 {
		t.Errorf("expected 750x825, got %dx%d", w, h)
	}
	cfg.Render.NoWaveTimeSeries = true
	if _, h := FrameSize(cfg); h != 600 {
		t.Errorf("expected height 600 without the series, got %d", h)
	}
}

func TestRendererOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Render.UniformTimeStepSize = 5
	opts := RendererOptions(cfg)
	if opts.RemnantStep != 5 {
		t.Errorf("expected the uniform step to drive the remnant step, got %g", opts.RemnantStep)
	}
	if opts.GridPoints != cfg.Render.GridPoints || opts.PointsPerOrbit != cfg.Render.PointsPerOrbit {
		t.Errorf("options not copied: %+v", opts)
	}
}
