package anim

import (
	"math"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/bbhexp/internal/scene"
)

var _ = Describe("Timeline", func() {
	var (
		data *Data
		tl   *Timeline
	)

	BeforeEach(func() {
		data = circularBinary()
		tl = NewTimeline(data.Times, data.MaxRange(), 0, -100)
	})

	It("switches to coarse remnant steps after the waveform has left the box", func() {
		Expect(tl.WaveformEnd).To(BeNumerically("~", 50+2*20.0/3, 1e-9))
		Expect(tl.T[tl.NumBinary]).To(Equal(tl.WaveformEnd))
		Expect(tl.T[tl.NumBinary-1]).To(BeNumerically("<", tl.WaveformEnd))
		Expect(tl.T[tl.Len()-1]).To(BeNumerically("<", tl.WaveformEnd+RemnantSpan))
		Expect(tl.Len() - tl.NumBinary).To(Equal(100))
		Expect(sort.Float64sAreSorted(tl.T)).To(BeTrue())
	})

	It("uses the uniform step for the remnant when given", func() {
		tl = NewTimeline(data.Times, data.MaxRange(), 500, -100)
		Expect(tl.Len() - tl.NumBinary).To(Equal(20))
		Expect(tl.T[tl.NumBinary+1] - tl.T[tl.NumBinary]).To(BeNumerically("~", 500, 1e-9))
	})

	It("finds the freeze index", func() {
		Expect(tl.T[tl.FreezeIdx]).To(BeNumerically("~", -100, 1e-9))
	})

	It("repeats the freeze frame", func() {
		frames := tl.Frames(true, 75)
		Expect(frames).To(HaveLen(tl.Len() - 1 + 75))
		Expect(sort.IntsAreSorted(frames)).To(BeTrue())
		Expect(frames[0]).To(Equal(1))

		count := 0
		for _, f := range frames {
			if f == tl.FreezeIdx {
				count++
			}
		}
		Expect(count).To(Equal(76))
	})

	It("plays every frame but the first without freezing", func() {
		frames := tl.Frames(false, 75)
		Expect(frames).To(HaveLen(tl.Len() - 1))
		for i, f := range frames {
			Expect(f).To(Equal(i + 1))
		}
	})

	It("finds the still frame nearest a time", func() {
		Expect(tl.T[tl.Nearest(-50)]).To(BeNumerically("~", -50, 1e-9))
		Expect(tl.T[tl.Nearest(-51.4)]).To(BeNumerically("~", -52.5, 1e-9))
		Expect(tl.Nearest(1e9)).To(Equal(tl.Len() - 1))
	})
})

var _ = Describe("CameraPath", func() {
	It("reaches the default view at the stop time", func() {
		t := circularBinary().Times
		path := CameraPath(t, CameraPeriod, CameraStopTime, CameraAzimShift)
		Expect(path).To(HaveLen(len(t)))

		stop := 200 // t=-500
		Expect(t[stop]).To(Equal(-500.0))
		Expect(path[stop].Elev).To(BeNumerically("~", scene.DefaultView.Elev, 1e-9))
		Expect(path[stop].Azim).To(BeNumerically("~", scene.DefaultView.Azim, 1e-9))

		for i, v := range path {
			Expect(v.Elev).To(BeNumerically(">=", 0))
			Expect(v.Elev).To(BeNumerically("<=", 90))
			if i > 0 {
				Expect(v.Azim - path[i-1].Azim).To(BeNumerically("~", CameraAzimShift, 1e-9))
			}
		}
	})

	It("swings the elevation with the given period", func() {
		t := []float64{-1500, -1000, -500}
		path := CameraPath(t, 1000, -500, 1)
		// sin^2 has period pi/omega = 1000.
		Expect(path[0].Elev).To(BeNumerically("~", 30, 1e-9))
		Expect(path[1].Elev).To(BeNumerically("~", 90*math.Pow(math.Cos(math.Asin(1/math.Sqrt(3))), 2), 1e-9))
	})

	It("returns nothing for an empty grid", func() {
		Expect(CameraPath(nil, 1000, -500, 1)).To(BeEmpty())
	})
})

var _ = Describe("SymLogNorm", func() {
	It("maps the symmetric range onto the unit interval", func() {
		n := NewNorm(0.01, 1)
		Expect(n.VMin()).To(Equal(-1.0))
		Expect(n.Normalize(1)).To(BeNumerically("~", 1, 1e-12))
		Expect(n.Normalize(-1)).To(BeNumerically("~", 0, 1e-12))
		Expect(n.Normalize(0)).To(BeNumerically("~", 0.5, 1e-12))
		Expect(n.Normalize(5)).To(Equal(1.0))
		Expect(n.Normalize(-5)).To(Equal(0.0))

		prev := -1.0
		for x := -1.0; x <= 1; x += 0.001 {
			v := n.Normalize(x)
			Expect(v).To(BeNumerically(">=", prev))
			prev = v
		}
	})

	It("is continuous at the linear threshold", func() {
		n := NewNorm(0.1, 1)
		Expect(n.Normalize(0.1 + 1e-9)).To(BeNumerically("~", n.Normalize(0.1), 1e-7))
	})

	It("keeps linthresh within vmax", func() {
		n := NewNorm(2, 1)
		Expect(n.LinThresh).To(Equal(1.0))
		Expect(n.Normalize(0.5)).To(BeNumerically("~", 0.75, 1e-12))

		n = NewNorm(0.3, 0)
		Expect(n.VMax).To(Equal(0.3))
		Expect(n.LinThresh).To(Equal(0.3))

		n = NewNorm(0, 2)
		Expect(n.LinThresh).To(BeNumerically(">", 0))
	})
})
