package geom

import (
	"math"
	"math/cmplx"
)

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

func binomial(n, k int) float64 {
	if k < 0 || k > n || n < 0 {
		return 0
	}
	return factorial(n) / (factorial(k) * factorial(n-k))
}

// SpinWeightedYlm evaluates the spin-weighted spherical harmonic sYlm at
// polar angle theta and azimuth phi (radians).
func SpinWeightedYlm(s, l, m int, theta, phi float64) complex128 {
	if l < absInt(s) || l < absInt(m) {
		return 0
	}

	pre := math.Sqrt(factorial(l+m) * factorial(l-m) * float64(2*l+1) /
		(4 * math.Pi * factorial(l+s) * factorial(l-s)))
	if m%2 != 0 {
		pre = -pre
	}

	sinH, cosH := math.Sincos(theta / 2)
	sum := 0.0
	for r := 0; r <= l-s; r++ {
		b := binomial(l-s, r) * binomial(l+s, r+s-m)
		if b == 0 {
			continue
		}
		k := 2*r + s - m
		// sin^{2l}(θ/2) cot^{k}(θ/2), written to stay finite at the poles.
		term := b * math.Pow(cosH, float64(k)) * math.Pow(sinH, float64(2*l-k))
		if (l-r-s)%2 != 0 {
			term = -term
		}
		sum += term
	}
	return complex(pre*sum, 0) * cmplx.Exp(complex(0, float64(m)*phi))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
