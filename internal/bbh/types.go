package bbh

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

const (
	MinMassRatio = 1.0
	MaxMassRatio = 2.0
	MinOmegaRef  = 0.018
)

// Binary is the input configuration of a quasi-circular binary.
// OmegaRef of zero means the spins are given at t=-100M.
type Binary struct {
	Q        float64
	ChiA     r3.Vector
	ChiB     r3.Vector
	OmegaRef float64
}

// Masses returns the component masses for a total mass of one.
func (b Binary) Masses() (mA, mB float64) {
	return b.Q / (1 + b.Q), 1 / (1 + b.Q)
}

// SymmetricMassRatio returns mA*mB.
func (b Binary) SymmetricMassRatio() float64 {
	mA, mB := b.Masses()
	return mA * mB
}

func (b Binary) Validate() error {
	if math.IsNaN(b.Q) || b.Q < MinMassRatio || b.Q > MaxMassRatio {
		return &RangeError{Param: "q", Value: b.Q, Min: MinMassRatio, Max: MaxMassRatio}
	}
	if n := b.ChiA.Norm(); !(n < 1) {
		return &RangeError{Param: "|chiA|", Value: n, Min: 0, Max: 1}
	}
	if n := b.ChiB.Norm(); !(n < 1) {
		return &RangeError{Param: "|chiB|", Value: n, Min: 0, Max: 1}
	}
	if b.OmegaRef != 0 && b.OmegaRef < MinOmegaRef {
		return &RangeError{Param: "omega_ref", Value: b.OmegaRef, Min: MinOmegaRef, Max: math.Inf(1)}
	}
	return nil
}

func (b Binary) String() string {
	return fmt.Sprintf("q=%.2f chiA=[%.2f %.2f %.2f] chiB=[%.2f %.2f %.2f]",
		b.Q, b.ChiA.X, b.ChiA.Y, b.ChiA.Z, b.ChiB.X, b.ChiB.Y, b.ChiB.Z)
}

// Dynamics is the raw surrogate output on its native time base.
type Dynamics struct {
	Times []float64
	Quat  []quat.Number
	Phase []float64
}

func (d *Dynamics) Validate() error {
	if d == nil || len(d.Times) == 0 {
		return ErrEmptySeries
	}
	if len(d.Quat) != len(d.Times) || len(d.Phase) != len(d.Times) {
		return fmt.Errorf("%w: times=%d quat=%d phase=%d",
			ErrLengthMismatch, len(d.Times), len(d.Quat), len(d.Phase))
	}
	return nil
}

// Series is the time series bundle once resampled on the animation grid.
type Series struct {
	Times []float64
	Quat  []quat.Number
	Phase []float64
	Omega []float64
	ChiA  []r3.Vector
	ChiB  []r3.Vector
	L     []r3.Vector
}

func (s *Series) Len() int { return len(s.Times) }

// Validate checks that all populated arrays share the time index.
func (s *Series) Validate() error {
	n := len(s.Times)
	if n == 0 {
		return ErrEmptySeries
	}
	lens := map[string]int{
		"quat":  len(s.Quat),
		"phase": len(s.Phase),
		"omega": len(s.Omega),
		"chiA":  len(s.ChiA),
		"chiB":  len(s.ChiB),
		"L":     len(s.L),
	}
	for name, l := range lens {
		if l != 0 && l != n {
			return fmt.Errorf("%w: %s has %d samples, times has %d", ErrLengthMismatch, name, l, n)
		}
	}
	return nil
}

// Slice keeps samples [from, len).
func (s *Series) Slice(from int) {
	s.Times = s.Times[from:]
	if len(s.Quat) > 0 {
		s.Quat = s.Quat[from:]
	}
	if len(s.Phase) > 0 {
		s.Phase = s.Phase[from:]
	}
	if len(s.Omega) > 0 {
		s.Omega = s.Omega[from:]
	}
	if len(s.ChiA) > 0 {
		s.ChiA = s.ChiA[from:]
	}
	if len(s.ChiB) > 0 {
		s.ChiB = s.ChiB[from:]
	}
	if len(s.L) > 0 {
		s.L = s.L[from:]
	}
}

// Mode indexes a waveform multipole by degree and order.
type Mode struct {
	L, M int
}

func (m Mode) String() string { return fmt.Sprintf("h_%d_%d", m.L, m.M) }

// Modes maps multipoles to complex time series sharing one time index.
type Modes map[Mode][]complex128

// Len returns the common length of the mode series, or zero when empty.
func (m Modes) Len() int {
	for _, h := range m {
		return len(h)
	}
	return 0
}

func (m Modes) Validate(n int) error {
	for k, h := range m {
		if len(h) != n {
			return fmt.Errorf("%w: %s has %d samples, want %d", ErrLengthMismatch, k, len(h), n)
		}
	}
	return nil
}

// Slice keeps samples [from, len) of every mode.
func (m Modes) Slice(from int) {
	for k, h := range m {
		m[k] = h[from:]
	}
}

// PeakAmplitude returns max |h_lm| over all modes and samples.
func (m Modes) PeakAmplitude() float64 {
	peak := 0.0
	for _, h := range m {
		for _, v := range h {
			peak = math.Max(peak, cmplx.Abs(v))
		}
	}
	return peak
}

// Remnant summarizes the final black hole, with one-sigma uncertainties.
// Kick is in units of c.
type Remnant struct {
	Mass    float64
	MassErr float64
	Chi     r3.Vector
	ChiErr  r3.Vector
	Kick    r3.Vector
	KickErr r3.Vector
}
