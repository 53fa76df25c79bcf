package anim

import (
	"math"
	"strings"

	"github.com/golang/geo/r3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/bbhexp/internal/scene"
)

var _ = Describe("Renderer", func() {
	var (
		data *Data
		opts Options
		r    *Renderer
		view scene.View
	)

	render := func(t float64) scene.Frame {
		return r.Render(r.Timeline().Nearest(t), view)
	}

	BeforeEach(func() {
		data = circularBinary()
		opts = DefaultOptions()
		view = scene.DefaultView
	})

	JustBeforeEach(func() {
		var err error
		r, err = NewRenderer(data, opts)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("during the inspiral", func() {
		It("draws both holes, their trails and arrows", func() {
			f := render(-300)
			Expect(f.Phase).To(Equal(scene.PhaseBinary))
			Expect(f.Reset).To(BeFalse())
			Expect(f.Surfaces).To(HaveLen(2))
			Expect(f.Polylines).To(HaveLen(2))
			Expect(f.Polylines[0].Points).To(HaveLen(22))
			Expect(f.Arrows).To(HaveLen(3))
			Expect(f.Text(scene.SlotProperties)).To(HavePrefix("q=2.00\nchiA=[0.20, 0.70, -0.10]"))
			Expect(f.Text(scene.SlotTime)).To(Equal("t=-300.0 M"))
			Expect(f.Text(scene.SlotTitle)).To(Equal("test + fit"))
		})

		It("takes the samples of the previous grid point", func() {
			num := r.Timeline().Nearest(-300)
			f := r.Render(num, view)
			trail := f.Polylines[0].Points
			Expect(trail[len(trail)-1]).To(Equal(data.TrajA[num-1]))
			Expect(f.Arrows[0].From).To(Equal(data.TrajA[num-1]))
		})

		It("resets on the first frames", func() {
			Expect(r.Render(1, view).Reset).To(BeTrue())
			Expect(r.Render(2, view).Reset).To(BeFalse())
		})

		It("scales spin arrows with the Kerr parameter", func() {
			f := render(-300)
			mA, _ := data.Binary.Masses()
			a := f.Arrows[0]
			Expect(a.Role).To(Equal(scene.RoleSpinA))
			Expect(a.To.Sub(a.From).Norm()).To(BeNumerically("~", mA*data.Binary.ChiA.Norm()*KerrArrowScale, 1e-12))

			l := f.Arrows[2]
			Expect(l.From).To(Equal(r3.Vector{}))
			Expect(l.To.Z).To(BeNumerically("~", 0.8*AngularMomentumScale, 1e-12))
		})

		Context("with full trajectories", func() {
			BeforeEach(func() { opts.DrawFullTrajectory = true })

			It("draws the trail from the start", func() {
				num := r.Timeline().Nearest(-300)
				Expect(r.Render(num, view).Polylines[0].Points).To(HaveLen(num))
			})
		})

		Context("with spin angular momentum arrows", func() {
			BeforeEach(func() { opts.UseSpinAngularMomentum = true })

			It("scales with m^2", func() {
				_, mB := data.Binary.Masses()
				a := render(-300).Arrows[1]
				Expect(a.To.Sub(a.From).Norm()).To(BeNumerically("~", mB*mB*data.Binary.ChiB.Norm()*SpinArrowScale, 1e-12))
			})
		})
	})

	Context("around the freeze", func() {
		It("announces the freeze on the two frames leading into it", func() {
			idx := r.Timeline().FreezeIdx
			Expect(r.Render(idx-2, view).Text(scene.SlotFreeze)).To(BeEmpty())
			Expect(r.Render(idx-1, view).Text(scene.SlotFreeze)).To(Equal(FreezeNotice))
			Expect(r.Render(idx, view).Text(scene.SlotFreeze)).To(Equal(FreezeNotice))
			Expect(r.Render(idx+1, view).Text(scene.SlotFreeze)).To(BeEmpty())
		})

		Context("when freezing is disabled", func() {
			BeforeEach(func() { opts.NoFreezeNearMerger = true })

			It("shows no notice and no repeated frames", func() {
				idx := r.Timeline().FreezeIdx
				Expect(r.Render(idx, view).Text(scene.SlotFreeze)).To(BeEmpty())
				Expect(r.Frames(75)).To(HaveLen(r.Timeline().Len() - 1))
			})
		})
	})

	Context("after merger", func() {
		It("draws the remnant drifting with its kick", func() {
			f := render(0)
			Expect(f.Phase).To(Equal(scene.PhaseRemnant))
			Expect(f.Reset).To(BeTrue())
			Expect(f.Surfaces).To(HaveLen(1))
			Expect(f.Polylines).To(BeEmpty())
			Expect(f.Arrows).To(HaveLen(1))
			Expect(f.Arrows[0].Role).To(Equal(scene.RoleSpinRemnant))
			Expect(f.Text(scene.SlotProperties)).To(Equal(
				"m_f=0.95 M\nchi_f=[0.00, 0.00, 0.70]\nv_f=[1.00, 0.00, 0.00] x 10^-3 c"))
		})

		It("moves the remnant by kick times time", func() {
			tl := r.Timeline()
			num := tl.Len() - 1
			f := r.Render(num, view)
			Expect(f.Reset).To(BeFalse())
			Expect(f.Arrows[0].From.X).To(BeNumerically("~", 1e-3*tl.T[num-1], 1e-9))
		})

		It("drops the waveform and announces the larger step", func() {
			tl := r.Timeline()
			f := r.Render(tl.NumBinary+1, view)
			Expect(f.Fields).To(BeEmpty())
			Expect(f.Text(scene.SlotTimestep)).To(Equal("Increased time step to 100M"))
			Expect(render(-300).Text(scene.SlotTimestep)).To(BeEmpty())
		})
	})

	Context("waveform projection", func() {
		It("projects on the bottom plane with levels in the unit interval", func() {
			f := render(-50)
			Expect(f.Fields).To(HaveLen(1))
			fl := f.Fields[0]
			Expect(fl.Height).To(BeFalse())
			Expect(fl.Points).To(HaveLen(opts.GridPoints))
			for iv := range fl.Level {
				for iu, v := range fl.Level[iv] {
					Expect(v).To(BeNumerically(">=", 0))
					Expect(v).To(BeNumerically("<=", 1))
					Expect(fl.Points[iv][iu].Z).To(BeNumerically("~", -r.MaxRange(), 1e-12))
				}
			}
		})

		It("derives the norm from the first and the light-crossing frames", func() {
			n := r.Norm()
			Expect(n.VMax).To(BeNumerically(">", 0))
			Expect(n.LinThresh).To(BeNumerically("<=", n.VMax))
		})

		Context("on all planes", func() {
			BeforeEach(func() { opts.ProjectOnAllPlanes = true })

			It("adds the x and y walls", func() {
				f := render(-50)
				Expect(f.Fields).To(HaveLen(3))
				Expect(f.Fields[0].Points[0][0].X).To(BeNumerically("~", -r.MaxRange(), 1e-12))
				Expect(f.Fields[1].Points[0][0].Y).To(BeNumerically("~", r.MaxRange(), 1e-12))
			})
		})

		Context("as a height map", func() {
			BeforeEach(func() { opts.HeightMap = true })

			It("displaces the bottom plane by the strain", func() {
				f := render(-50)
				Expect(f.Fields).To(HaveLen(1))
				fl := f.Fields[0]
				Expect(fl.Height).To(BeTrue())
				h := fl.Values[3][4]
				Expect(fl.Points[3][4].Z).To(BeNumerically("~", -r.MaxRange()+3*h/r.Norm().VMax, 1e-12))
			})
		})
	})

	Context("the time series panel", func() {
		It("follows the view with a cursor at the current time", func() {
			f := render(-50)
			Expect(f.Series).NotTo(BeNil())
			Expect(f.Series.Cursor).To(Equal(f.Time))
			Expect(f.Series.YLim).To(BeNumerically(">", 0))
			Expect(f.Series.Plus).To(HaveLen(len(data.Times)))

			top := r.Render(f.Index, scene.View{Elev: 90})
			side := r.Render(f.Index, scene.View{Elev: 0})
			Expect(peak(top.Series.Cross)).To(BeNumerically(">", peak(side.Series.Cross)))
		})

		It("does not depend on earlier renders", func() {
			idx := r.Timeline().Nearest(-50)
			first := r.Render(idx, scene.View{Elev: 90})
			r.Render(idx, scene.View{Elev: 0, Azim: 45})
			r.Render(idx+3, scene.View{Elev: 10})
			again := r.Render(idx, scene.View{Elev: 90})
			Expect(again.Series).To(Equal(first.Series))
			Expect(again.View).To(Equal(first.View))
			Expect(again.Texts).To(Equal(first.Texts))
		})

		Context("when disabled", func() {
			BeforeEach(func() {
				opts.NoWaveTimeSeries = true
				opts.NoTimeLabel = true
				opts.NoSurrogateLabel = true
			})

			It("omits the panel and labels", func() {
				f := render(-50)
				Expect(f.Series).To(BeNil())
				Expect(f.Text(scene.SlotTime)).To(BeEmpty())
				Expect(f.Text(scene.SlotTitle)).To(BeEmpty())
			})
		})
	})

	Context("with the rotating camera", func() {
		BeforeEach(func() { opts.AutoRotateCamera = true })

		It("scripts the view until the stop time", func() {
			early := render(-900)
			Expect(early.View).NotTo(Equal(view))
			Expect(early.View.Elev).To(BeNumerically("<=", 90))

			late := render(-300)
			Expect(late.View).To(Equal(view))
		})
	})

	It("renders the still frame at t=-50", func() {
		f := render(-50)
		Expect(f.Time).To(BeNumerically("~", -50, 1e-9))
		Expect(strings.HasPrefix(f.Text(scene.SlotTime), "t=-50.0")).To(BeTrue())
	})

	It("rejects inconsistent data", func() {
		bad := circularBinary()
		bad.ChiA = bad.ChiA[:10]
		_, err := NewRenderer(bad, DefaultOptions())
		Expect(err).To(HaveOccurred())
	})

	It("prints tiny components as zero", func() {
		Expect(ZeroIfSmall(5e-4)).To(Equal(0.0))
		Expect(ZeroIfSmall(-2e-3)).To(Equal(-2e-3))
	})
})

func peak(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		m = math.Max(m, math.Abs(x))
	}
	return m
}
