package surrogate

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/bbh"
	"github.com/san-kum/bbhexp/internal/geom"
	"github.com/san-kum/bbhexp/internal/ode"
	"github.com/san-kum/bbhexp/internal/resample"
	"gonum.org/v1/gonum/num/quat"
)

const (
	AnalyticName    = "analytic"
	AnalyticFitName = "analytic-fit"

	// DefaultStartOmega is the initial orbital frequency when the binary
	// has no reference frequency.
	DefaultStartOmega = 0.018

	analyticMaxSpin = 0.8
	// analyticMaxOmega keeps the leading-order time to merger above
	// minInspiralLead for every allowed mass ratio.
	analyticMaxOmega = 0.06
	// minInspiralLead is how far before merger the track must start so the
	// freeze marker at -100M lies inside it.
	minInspiralLead = 100.0

	mergerOmega   = 0.2
	plateauOmega  = 0.27
	ringdownTau   = 12.0
	postMergerDur = 100.0
	stepSize      = 0.5
	sampleStride  = 4
	// fullRateWindow keeps every integrator step this close to merger,
	// where the ringdown bends the mode amplitudes.
	fullRateWindow = 40.0
	maxInspiral   = 2e5

	// SpeedOfLight in km/s.
	SpeedOfLight = 299792.458
)

// state layout: phase, omega, lhat, chiA, chiB
const (
	iPhase = 0
	iOmega = 1
	iL     = 2
	iChiA  = 5
	iChiB  = 8
	dim    = 11
)

func vecAt(x ode.State, i int) r3.Vector { return r3.Vector{X: x[i], Y: x[i+1], Z: x[i+2]} }

func putVec(x ode.State, i int, v r3.Vector) { x[i], x[i+1], x[i+2] = v.X, v.Y, v.Z }

// inspiral is a quasi-circular chirp with leading-order spin precession.
// The frequency follows the quadrupole formula, rolled off so it plateaus
// after merger. Spins precess about lhat, and lhat moves so that L + S is
// conserved.
type inspiral struct {
	mA, mB, eta float64
}

func (s *inspiral) Dim() int { return dim }

func (s *inspiral) Derive(x ode.State, t float64) ode.State {
	w := x[iOmega]
	lhat := vecAt(x, iL).Normalize()
	chiA, chiB := vecAt(x, iChiA), vecAt(x, iChiB)

	roll := 1 - math.Pow(w/plateauOmega, 4)
	dw := 96.0 / 5 * s.eta * math.Pow(w, 11.0/3) * math.Max(roll, 0)

	w53 := s.eta * math.Pow(w, 5.0/3)
	omegaA := (2 + 1.5*s.mB/s.mA) * w53
	omegaB := (2 + 1.5*s.mA/s.mB) * w53
	dChiA := lhat.Cross(chiA).Mul(omegaA)
	dChiB := lhat.Cross(chiB).Mul(omegaB)

	dS := dChiA.Mul(s.mA * s.mA).Add(dChiB.Mul(s.mB * s.mB))
	lMag := s.eta * math.Pow(w, -1.0/3)
	dL := dS.Mul(-1 / lMag)

	out := make(ode.State, dim)
	out[iPhase] = w
	out[iOmega] = dw
	putVec(out, iL, dL)
	putVec(out, iChiA, dChiA)
	putVec(out, iChiB, dChiB)
	return out
}

// track is one integrated binary on the native time base.
type track struct {
	times []float64
	phase []float64
	omega []float64
	lhat  []r3.Vector
	chiA  []r3.Vector
	chiB  []r3.Vector
	quat  []quat.Number
}

func (tr *track) mergerIndex() int {
	return geom.Nearest(tr.times, 0)
}

// Analytic is a closed-form stand-in for a numerical-relativity surrogate:
// an RK4-integrated post-Newtonian-like chirp with simple precession, leading
// order (2,2), (2,1) and (3,3) modes with an exponential ringdown, and a
// fitting-formula remnant. It is a visualization aid, not a physical model.
type Analytic struct {
	cache map[bbh.Binary]*track
}

func NewAnalytic() *Analytic {
	return &Analytic{cache: make(map[bbh.Binary]*track)}
}

func (a *Analytic) Name() string { return AnalyticName }

func (a *Analytic) integrate(ctx context.Context, b bbh.Binary) (*track, error) {
	if tr, ok := a.cache[b]; ok {
		return tr, nil
	}
	if err := checkDomain(b, bbh.MaxMassRatio, analyticMaxSpin, analyticMaxOmega); err != nil {
		return nil, err
	}

	mA, mB := b.Masses()
	sys := &inspiral{mA: mA, mB: mB, eta: mA * mB}

	w0 := b.OmegaRef
	if w0 == 0 {
		w0 = DefaultStartOmega
	}
	x0 := make(ode.State, dim)
	x0[iOmega] = w0
	putVec(x0, iL, r3.Vector{Z: 1})
	putVec(x0, iChiA, b.ChiA)
	putVec(x0, iChiB, b.ChiB)

	tMerge := math.NaN()
	var prev ode.State
	var prevT float64
	stop := func(x ode.State, t float64) bool {
		if math.IsNaN(tMerge) && x[iOmega] >= mergerOmega {
			tMerge = t
			if prev != nil {
				f := (mergerOmega - prev[iOmega]) / (x[iOmega] - prev[iOmega])
				tMerge = prevT + f*(t-prevT)
			}
		}
		prev, prevT = x, t
		return !math.IsNaN(tMerge) && t-tMerge >= postMergerDur
	}

	res, err := ode.Integrate(ctx, sys, ode.NewRK4(), x0, 0, stepSize, maxInspiral, stop)
	if err != nil {
		return nil, fmt.Errorf("analytic: %w", err)
	}
	if math.IsNaN(tMerge) {
		return nil, fmt.Errorf("%w: no merger within %gM from omega=%g", ErrOutOfDomain, maxInspiral, w0)
	}

	if lead := tMerge - res.Times[0]; lead < minInspiralLead {
		return nil, fmt.Errorf("%w: merger %.1fM after omega=%g, need %gM", ErrOutOfDomain, lead, w0, minInspiralLead)
	}

	tr := &track{}
	last := len(res.Times) - 1
	for i := 0; i <= last; i++ {
		near := math.Abs(res.Times[i]-tMerge) <= fullRateWindow
		if i%sampleStride != 0 && i != last && !near {
			continue
		}
		x := res.States[i]
		lhat := vecAt(x, iL).Normalize()
		tr.times = append(tr.times, res.Times[i]-tMerge)
		tr.phase = append(tr.phase, x[iPhase])
		tr.omega = append(tr.omega, x[iOmega])
		tr.lhat = append(tr.lhat, lhat)
		tr.chiA = append(tr.chiA, vecAt(x, iChiA))
		tr.chiB = append(tr.chiB, vecAt(x, iChiB))
		tr.quat = append(tr.quat, geom.QuatBetween(r3.Vector{Z: 1}, lhat))
	}
	a.cache[b] = tr
	return tr, nil
}

func (a *Analytic) Dynamics(ctx context.Context, b bbh.Binary) (*bbh.Dynamics, error) {
	tr, err := a.integrate(ctx, b)
	if err != nil {
		return nil, err
	}
	return &bbh.Dynamics{Times: tr.times, Quat: tr.quat, Phase: tr.phase}, nil
}

func (a *Analytic) Evaluate(ctx context.Context, b bbh.Binary, times []float64) (*Evaluation, error) {
	tr, err := a.integrate(ctx, b)
	if err != nil {
		return nil, err
	}

	phase, err := resample.Interp(times, tr.times, tr.phase, true)
	if err != nil {
		return nil, err
	}
	omega, err := resample.Interp(times, tr.times, tr.omega, true)
	if err != nil {
		return nil, err
	}
	chiA, err := interpVectors(times, tr.times, tr.chiA)
	if err != nil {
		return nil, fmt.Errorf("chiA: %w", err)
	}
	chiB, err := interpVectors(times, tr.times, tr.chiB)
	if err != nil {
		return nil, fmt.Errorf("chiB: %w", err)
	}

	mA, mB := b.Masses()
	return &Evaluation{
		Times: times,
		Modes: leadingModes(times, phase, omega, mA, mB),
		ChiA:  chiA,
		ChiB:  chiB,
	}, nil
}

func interpVectors(newX, oldX []float64, vs []r3.Vector) ([]r3.Vector, error) {
	xs := make([]float64, len(vs))
	ys := make([]float64, len(vs))
	zs := make([]float64, len(vs))
	for i, v := range vs {
		xs[i], ys[i], zs[i] = v.X, v.Y, v.Z
	}
	comps, err := resample.Vectors(newX, oldX, xs, ys, zs, true)
	if err != nil {
		return nil, err
	}
	out := make([]r3.Vector, len(newX))
	for i := range out {
		out[i] = r3.Vector{X: comps[0][i], Y: comps[1][i], Z: comps[2][i]}
	}
	return out, nil
}

// leadingModes builds the Newtonian-order (2,±2), (2,±1) and (3,±3)
// harmonics, damped exponentially after t=0.
func leadingModes(times, phase, omega []float64, mA, mB float64) bbh.Modes {
	eta := mA * mB
	delta := mA - mB
	n := len(times)
	norm := 8 * math.Sqrt(math.Pi/5) * eta

	h22 := make([]complex128, n)
	h21 := make([]complex128, n)
	h33 := make([]complex128, n)
	for i, t := range times {
		if omega[i] <= 0 {
			continue
		}
		x := math.Pow(omega[i], 2.0/3)
		amp := norm * x
		if t > 0 {
			amp *= math.Exp(-t / ringdownTau)
		}
		v := math.Sqrt(x)
		h22[i] = complex(amp, 0) * cmplx.Exp(complex(0, -2*phase[i]))
		h21[i] = complex(0, amp*delta*v/3) * cmplx.Exp(complex(0, -phase[i]))
		h33[i] = complex(0, -0.75*math.Sqrt(15.0/14)*amp*delta*v) * cmplx.Exp(complex(0, -3*phase[i]))
	}

	modes := bbh.Modes{
		{L: 2, M: 2}: h22,
		{L: 2, M: 1}: h21,
		{L: 3, M: 3}: h33,
	}
	for _, k := range []bbh.Mode{{L: 2, M: 2}, {L: 2, M: 1}, {L: 3, M: 3}} {
		neg := make([]complex128, n)
		sign := complex(1, 0)
		if k.L%2 != 0 {
			sign = -1
		}
		for i, h := range modes[k] {
			neg[i] = sign * cmplx.Conj(h)
		}
		modes[bbh.Mode{L: k.L, M: -k.M}] = neg
	}
	return modes
}
