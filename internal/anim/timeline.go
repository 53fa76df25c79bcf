package anim

import (
	"math"
	"sort"

	"github.com/san-kum/bbhexp/internal/geom"
)

const (
	// WaveformMargin is added to the light-crossing time of the box to
	// decide when the projected waveform has gone.
	WaveformMargin = 50.0
	// RemnantSpan is how long the remnant is followed after the waveform.
	RemnantSpan = 10000.0
	// DefaultRemnantStep exaggerates the remnant kick.
	DefaultRemnantStep = 100.0
)

// Timeline is the sequence of playback times: the binary grid until the
// waveform has left the box, then coarse remnant steps.
type Timeline struct {
	T []float64
	// NumBinary counts the leading samples taken from the binary grid.
	NumBinary   int
	WaveformEnd float64
	RemnantStep float64
	FreezeIdx   int
}

func NewTimeline(tBinary []float64, maxRange, remnantStep, freezeTime float64) *Timeline {
	if remnantStep <= 0 {
		remnantStep = DefaultRemnantStep
	}
	end := WaveformMargin + 2*maxRange

	tl := &Timeline{WaveformEnd: end, RemnantStep: remnantStep}
	for _, t := range tBinary {
		if t < end {
			tl.T = append(tl.T, t)
		}
	}
	tl.NumBinary = len(tl.T)

	n := int(math.Ceil(RemnantSpan / remnantStep))
	for i := 0; i < n; i++ {
		tl.T = append(tl.T, end+float64(i)*remnantStep)
	}
	tl.FreezeIdx = tl.Nearest(freezeTime)
	return tl
}

func (tl *Timeline) Len() int { return len(tl.T) }

// Nearest returns the index of the playback time closest to t.
func (tl *Timeline) Nearest(t float64) int {
	return geom.Nearest(tl.T, t)
}

// Frames lists the frame numbers to play. Frame 0 is skipped. When freeze
// is set the freeze frame is appended repeats more times, so the movie
// pauses there.
func (tl *Timeline) Frames(freeze bool, repeats int) []int {
	frames := make([]int, 0, tl.Len()+repeats)
	for i := 1; i < tl.Len(); i++ {
		frames = append(frames, i)
	}
	if freeze {
		for i := 0; i < repeats; i++ {
			frames = append(frames, tl.FreezeIdx)
		}
		sort.Ints(frames)
	}
	return frames
}
