package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/san-kum/bbhexp/internal/app"
	"github.com/san-kum/bbhexp/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	logLevel   string

	model    string
	palette  string
	q        float64
	chiA     []float64
	chiB     []float64
	omegaRef float64

	omegaStart          float64
	saveFile            string
	stillTime           float64
	fps                 int
	uniformTimeStepSize float64

	autoRotateCamera       bool
	projectOnAllPlanes     bool
	heightMap              bool
	drawFullTrajectory     bool
	useSpinAngularMomentum bool
	noFreezeNearMerger     bool
	noWaveTimeSeries       bool
	noTimeLabel            bool
	noSurrogateLabel       bool
)

// binaryFlags choose the binary. Setting any of them overrides a bundle's
// own binary.
var binaryFlags = []string{"q", "chiA", "chiB", "omega_ref"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		newLogger().Error("bbhexp failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bbhexp",
		Short: "binary black hole merger visualizer",
		Long: "bbhexp animates a binary black hole inspiral, merger and ringdown with the\n" +
			"gravitational waveform projected on the walls of the box. Without --save_file\n" +
			"the animation plays in the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runAnimation,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "binary preset (see 'bbhexp presets')")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&model, "model", config.DefaultModel, "surrogate model name or bundle directory")
	pf.StringVar(&palette, "palette", config.DefaultPalette, "colour palette: wesanderson or plain")
	pf.Float64Var(&q, "q", config.DefaultQ, "mass ratio, 1 <= q <= 2; with --chiA and --chiB required unless a preset, config or bundle gives the binary")
	pf.Float64SliceVar(&chiA, "chiA", []float64{0, 0, 0}, "spin of the heavier black hole, |chiA| < 1")
	pf.Float64SliceVar(&chiB, "chiB", []float64{0, 0, 0}, "spin of the lighter black hole, |chiB| < 1")
	pf.Float64Var(&omegaRef, "omega_ref", 0, "orbital frequency at which the spins are given (>= 0.018)")
	pf.Float64Var(&omegaStart, "omega_start", 0, "drop the inspiral below this orbital frequency")
	pf.Float64Var(&uniformTimeStepSize, "uniform_time_step_size", 0, "use a fixed time step instead of a fixed number of points per orbit")

	f := rootCmd.Flags()
	f.StringVar(&saveFile, "save_file", "", "write the animation to a .mp4 or .gif file")
	f.Float64Var(&stillTime, "still_time", 0, "render the frame nearest this time to png and pdf")
	f.IntVar(&fps, "fps", config.DefaultFPS, "frames per second of saved movies")
	f.BoolVar(&autoRotateCamera, "auto_rotate_camera", false, "rotate the camera during the inspiral")
	f.BoolVar(&projectOnAllPlanes, "project_on_all_planes", false, "project the waveform on all three walls")
	f.BoolVar(&heightMap, "height_map", false, "draw the waveform as a height map")
	f.BoolVar(&drawFullTrajectory, "draw_full_trajectory", false, "keep the whole trajectory instead of a trail")
	f.BoolVar(&useSpinAngularMomentum, "use_spin_angular_momentum_for_arrows", false, "scale spin arrows by m^2 chi instead of the Kerr parameter")
	f.BoolVar(&noFreezeNearMerger, "no_freeze_near_merger", false, "do not pause the movie before merger")
	f.BoolVar(&noWaveTimeSeries, "no_wave_time_series", false, "hide the strain time series")
	f.BoolVar(&noTimeLabel, "no_time_label", false, "hide the time label")
	f.BoolVar(&noSurrogateLabel, "no_surrogate_label", false, "hide the model label")

	rootCmd.AddCommand(presetsCmd(), exportCmd(), infoCmd(), plotCmd(), configCmd())
	return rootCmd
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "bbhexp"})
	if lvl, err := log.ParseLevel(logLevel); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func vec3(name string, v []float64) ([3]float64, error) {
	if len(v) != 3 {
		return [3]float64{}, fmt.Errorf("--%s needs 3 components, got %d", name, len(v))
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

// loadConfig layers defaults, the config file, the preset and finally the
// flags the user set explicitly. The bool reports whether any layer chose
// the binary; the runner refuses to guess one for a model without a bundle.
func loadConfig(cmd *cobra.Command) (*config.Config, bool, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	binarySet := cfg.HasBinary
	if preset != "" {
		b := config.GetPreset(preset)
		if b == nil {
			return nil, false, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Binary = *b
		binarySet = true
	}

	flags := cmd.Flags()
	for _, name := range binaryFlags {
		if flags.Changed(name) {
			binarySet = true
		}
	}

	var err error
	set := func(name string, apply func()) {
		if err == nil && flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}
	set("model", func() { cfg.Model = model })
	set("palette", func() { cfg.Palette = palette })
	set("q", func() { cfg.Binary.Q = q })
	set("chiA", func() { cfg.Binary.ChiA, err = vec3("chiA", chiA) })
	set("chiB", func() { cfg.Binary.ChiB, err = vec3("chiB", chiB) })
	set("omega_ref", func() { cfg.Binary.OmegaRef = omegaRef })
	set("omega_start", func() { cfg.Binary.OmegaStart = omegaStart })
	set("uniform_time_step_size", func() { cfg.Render.UniformTimeStepSize = uniformTimeStepSize })
	set("save_file", func() { cfg.Output.SaveFile = saveFile })
	set("still_time", func() { t := stillTime; cfg.Output.StillTime = &t })
	set("fps", func() { cfg.Output.FPS = fps })
	set("auto_rotate_camera", func() { cfg.Render.AutoRotateCamera = autoRotateCamera })
	set("project_on_all_planes", func() { cfg.Render.ProjectOnAllPlanes = projectOnAllPlanes })
	set("height_map", func() { cfg.Render.HeightMap = heightMap })
	set("draw_full_trajectory", func() { cfg.Render.DrawFullTrajectory = drawFullTrajectory })
	set("use_spin_angular_momentum_for_arrows", func() { cfg.Render.UseSpinAngularMomentumForArrows = useSpinAngularMomentum })
	set("no_freeze_near_merger", func() { cfg.Render.NoFreezeNearMerger = noFreezeNearMerger })
	set("no_wave_time_series", func() { cfg.Render.NoWaveTimeSeries = noWaveTimeSeries })
	set("no_time_label", func() { cfg.Render.NoTimeLabel = noTimeLabel })
	set("no_surrogate_label", func() { cfg.Render.NoSurrogateLabel = noSurrogateLabel })
	if err != nil {
		return nil, false, err
	}

	cfg.Normalize()
	return cfg, binarySet, nil
}

func newRunner(cmd *cobra.Command) (*app.Runner, error) {
	cfg, binarySet, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := app.NewRunner(cfg, newLogger())
	r.BinarySet = binarySet
	return r, nil
}

func runAnimation(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	return r.Run(cmd.Context())
}
