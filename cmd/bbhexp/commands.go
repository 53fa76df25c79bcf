package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bbhexp/internal/app"
	"github.com/san-kum/bbhexp/internal/bbh"
	"github.com/san-kum/bbhexp/internal/bundle"
	"github.com/san-kum/bbhexp/internal/config"
	"github.com/san-kum/bbhexp/internal/geom"
	"github.com/san-kum/bbhexp/internal/resample"
	"github.com/san-kum/bbhexp/internal/surrogate"
	"github.com/spf13/cobra"
)

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list binary presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tQ\tCHI_A\tCHI_B")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				b := p.Binary()
				fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\n", name, p.Q, vecString(b.ChiA.X, b.ChiA.Y, b.ChiA.Z), vecString(b.ChiB.X, b.ChiB.Y, b.ChiB.Z))
			}
			return w.Flush()
		},
	}
}

func vecString(x, y, z float64) string {
	return fmt.Sprintf("[%.2f, %.2f, %.2f]", x, y, z)
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "write the surrogate output for a binary as a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			s, b, err := r.Surrogate()
			if err != nil {
				return err
			}
			bd, err := surrogate.Export(cmd.Context(), s, b)
			if err != nil {
				return err
			}
			if err := bundle.Save(args[0], bd); err != nil {
				return err
			}
			r.Logger.Info("exported bundle", "dir", args[0], "model", s.Label(), "samples", len(bd.Times), "modes", len(bd.Modes))
			return nil
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "print the remnant predicted for a binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			s, b, err := r.Surrogate()
			if err != nil {
				return err
			}
			rem, err := s.Fit.Remnant(cmd.Context(), b)
			if err != nil {
				return err
			}
			printRemnant(s.Fit.Name(), b, rem)
			return nil
		},
	}
}

func printRemnant(fit string, b bbh.Binary, rem bbh.Remnant) {
	mA, mB := b.Masses()
	fmt.Printf("binary  %s\nfit     %s\nmasses  mA=%.4f mB=%.4f\n\n", b, fit, mA, mB)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUANTITY\tVALUE\tUNCERTAINTY")
	fmt.Fprintf(w, "m_f\t%.5f M\t%.1e\n", rem.Mass, rem.MassErr)
	fmt.Fprintf(w, "chi_f\t%s\t%s\n", vecString(rem.Chi.X, rem.Chi.Y, rem.Chi.Z), vecString(rem.ChiErr.X, rem.ChiErr.Y, rem.ChiErr.Z))
	fmt.Fprintf(w, "|chi_f|\t%.4f\t\n", rem.Chi.Norm())
	k, ke := rem.Kick.Mul(1e3), rem.KickErr.Mul(1e3)
	fmt.Fprintf(w, "v_f (10^-3 c)\t%s\t%s\n", vecString(k.X, k.Y, k.Z), vecString(ke.X, ke.Y, ke.Z))
	fmt.Fprintf(w, "|v_f|\t%.1f km/s\t\n", rem.Kick.Norm()*surrogate.SpeedOfLight)
	w.Flush()
}

func plotCmd() *cobra.Command {
	var azim, elev float64
	var width, height int
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "plot the strain seen from a viewing direction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd)
			if err != nil {
				return err
			}
			s, b, err := r.Surrogate()
			if err != nil {
				return err
			}
			data, err := app.BinaryData(cmd.Context(), s, b, app.DataOptions{
				Grid: resample.Options{
					PointsPerOrbit: r.Config.Render.PointsPerOrbit,
					UniformStep:    r.Config.Render.UniformTimeStepSize,
					FreezeTime:     r.Config.Render.FreezeTime,
				},
				OmegaStart: r.Config.Binary.OmegaStart,
			})
			if err != nil {
				return err
			}

			h := geom.WaveformTimeseries(data.Modes, azim, elev)
			plus := make([]float64, len(h))
			cross := make([]float64, len(h))
			for i, v := range h {
				plus[i], cross[i] = real(v), imag(v)
			}
			graph := asciigraph.PlotMany([][]float64{plus, cross},
				asciigraph.Height(height),
				asciigraph.Width(width),
				asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
				asciigraph.Caption(fmt.Sprintf("h+ (red), hx (blue) at elev=%g azim=%g, t=[%.0f, %.0f] M",
					elev, azim, data.Times[0], data.Times[len(data.Times)-1])))
			fmt.Println(graph)
			return nil
		},
	}
	cmd.Flags().Float64Var(&azim, "azim", -60, "viewing azimuth in degrees")
	cmd.Flags().Float64Var(&elev, "elev", 30, "viewing elevation in degrees")
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 15, "plot height")
	return cmd
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [file]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return config.Save(args[0], cfg)
		},
	}
}
