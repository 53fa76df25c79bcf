package anim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Player", func() {
	var p *Player

	BeforeEach(func() {
		p = NewPlayer([]int{1, 2, 3, 3, 4}, false)
	})

	It("advances on ticks and loops", func() {
		Expect(p.Frame()).To(Equal(1))
		Expect(p.Handle(Tick)).To(BeTrue())
		Expect(p.Frame()).To(Equal(2))
		p.Handle(Tick)
		Expect(p.Handle(Tick)).To(BeFalse(), "repeated frame")
		p.Handle(Tick)
		Expect(p.Frame()).To(Equal(4))
		p.Handle(Tick)
		Expect(p.Frame()).To(Equal(1))
	})

	It("holds position while paused", func() {
		p.Handle(TogglePause)
		Expect(p.Paused).To(BeTrue())
		Expect(p.Handle(Tick)).To(BeFalse())
		Expect(p.Position()).To(Equal(0))
		p.Handle(TogglePause)
		p.Handle(Tick)
		Expect(p.Position()).To(Equal(1))
	})

	It("ignores clicks unless click-to-pause is on", func() {
		p.Handle(Click)
		Expect(p.Paused).To(BeFalse())

		p.ClickToPause = true
		p.Handle(Click)
		Expect(p.Paused).To(BeTrue())
		p.Handle(Click)
		Expect(p.Paused).To(BeFalse())
	})

	It("seeks to a frame", func() {
		p.Seek(3)
		Expect(p.Position()).To(Equal(2))
		p.Seek(99)
		Expect(p.Frame()).To(Equal(4))
	})

	It("copes with an empty sequence", func() {
		p = NewPlayer(nil, true)
		Expect(p.Frame()).To(Equal(0))
		Expect(p.Handle(Tick)).To(BeFalse())
		p.Seek(3)
		Expect(p.Len()).To(Equal(0))
	})

	It("names its events", func() {
		Expect(Tick.String()).To(Equal("tick"))
		Expect(Click.String()).To(Equal("click"))
		Expect(Event(9).String()).To(Equal("unknown"))
	})
})
