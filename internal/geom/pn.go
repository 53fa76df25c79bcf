package geom

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// MaxPNOrder is the highest post-Newtonian order Separation knows about.
const MaxPNOrder = 3.5

// Separation returns a roughly 3.5PN accurate orbital separation for each
// sample, from the orbital frequency and the spins projected on LHat.
//
// This is a visualization aid only. It follows Eq. (4.3) of arXiv:1212.5520
// without the logarithmic x^3 term, plus the 2PN spin-spin term of Eq. (4.13)
// of arXiv:gr-qc/9506022, and it has not been validated against numerical
// relativity. Do not tune the coefficients.
func Separation(omega []float64, mA, mB float64, chiA, chiB, lhat []r3.Vector, order float64) ([]float64, error) {
	n := len(omega)
	if len(chiA) != n || len(chiB) != n || len(lhat) != n {
		return nil, fmt.Errorf("geom: separation inputs have lengths omega=%d chiA=%d chiB=%d lhat=%d",
			n, len(chiA), len(chiB), len(lhat))
	}
	if order < 0 || order > MaxPNOrder {
		return nil, fmt.Errorf("geom: PN order %g outside [0, %g]", order, MaxPNOrder)
	}

	eta := mA * mB
	deltaM := mA - mB
	pi2 := math.Pi * math.Pi

	r := make([]float64, n)
	for i, w := range omega {
		sigma := chiB[i].Mul(mB).Sub(chiA[i].Mul(mA))
		spin := chiA[i].Mul(mA * mA).Add(chiB[i].Mul(mB * mB))
		sigmaL := sigma.Dot(lhat[i])
		sL := spin.Dot(lhat[i])
		chiAB := chiA[i].Dot(chiB[i])

		x := math.Pow(w, 2.0/3.0)
		gammaByX := 0.0
		if order >= 0 {
			gammaByX += 1
		}
		if order >= 1 {
			gammaByX += x * (1 - eta/3)
		}
		if order >= 1.5 {
			gammaByX += math.Pow(x, 1.5) * (5.0/3*sL + deltaM*sigmaL)
		}
		if order >= 2 {
			gammaByX += x * x * (1 - 65.0/12*eta)
		}
		if order >= 2.5 {
			gammaByX += math.Pow(x, 2.5) * ((10.0/3+8.0/9*eta)*sL + 2*deltaM*sigmaL)
		}
		if order >= 3 {
			gammaByX += x * x * x * (1 + (-2203.0/2520-41.0/192*pi2)*eta +
				229.0/36*eta*eta + eta*eta*eta/81)
		}
		if order >= 3.5 {
			gammaByX += math.Pow(x, 3.5) * ((5-127.0/12*eta-6*eta*eta)*sL +
				deltaM*sigmaL*(3-61.0/6*eta-8.0/3*eta*eta))
		}

		r[i] = 1 / gammaByX / x
		if order >= 2 {
			r[i] += math.Pow(w, -2.0/3) * (-0.5 * eta * chiAB) * math.Pow(w, 4.0/3)
		}
	}
	return r, nil
}
