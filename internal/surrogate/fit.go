package surrogate

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/bbh"
	"github.com/san-kum/bbhexp/internal/geom"
)

const maxRemnantSpin = 0.998

// Fixed one-sigma uncertainties reported by the analytic fit.
var (
	fitMassErr = 5e-4
	fitChiErr  = r3.Vector{X: 2e-3, Y: 2e-3, Z: 2e-3}
	fitKickErr = r3.Vector{X: 5e-5, Y: 5e-5, Z: 5e-5}
)

// Remnant evaluates closed-form fits for the final mass, spin and kick
// using the spins and orbital plane at merger.
func (a *Analytic) Remnant(ctx context.Context, b bbh.Binary) (bbh.Remnant, error) {
	tr, err := a.integrate(ctx, b)
	if err != nil {
		return bbh.Remnant{}, err
	}
	mA, mB := b.Masses()
	eta := mA * mB
	i := tr.mergerIndex()
	lhat, chiA, chiB := tr.lhat[i], tr.chiA[i], tr.chiB[i]

	eRad := 0.0572*eta + 0.498*eta*eta
	mass := 1 - eRad

	orbital := 2*math.Sqrt(3)*eta - 3.871*eta*eta + 4.028*eta*eta*eta
	spin := chiA.Mul(mA * mA).Add(chiB.Mul(mB * mB))
	chi := lhat.Mul(orbital).Add(spin.Mul(1 / (mass * mass)))
	if n := chi.Norm(); n > maxRemnantSpin {
		chi = chi.Mul(maxRemnantSpin / n)
	}

	q := geom.QuatBetween(r3.Vector{Z: 1}, lhat)
	s, c := math.Sincos(tr.phase[i])
	inPlane := geom.Rotate(q, r3.Vector{X: c, Y: s})

	vMass := 1.2e4 * eta * eta * math.Sqrt(math.Max(0, 1-4*eta)) * (1 - 0.93*eta)
	delta := chiB.Mul(mB).Sub(chiA.Mul(mA))
	deltaPerp := delta.Sub(lhat.Mul(delta.Dot(lhat)))
	vSpin := 6.9e3 * eta * eta * deltaPerp.Dot(inPlane)
	kick := inPlane.Mul(vMass / SpeedOfLight).Add(lhat.Mul(vSpin / SpeedOfLight))

	return bbh.Remnant{
		Mass:    mass,
		MassErr: fitMassErr,
		Chi:     chi,
		ChiErr:  fitChiErr,
		Kick:    kick,
		KickErr: fitKickErr,
	}, nil
}

// analyticFit reports the remnant fit of an Analytic model under its own
// name.
type analyticFit struct{ *Analytic }

func (f analyticFit) Name() string { return AnalyticFitName }
