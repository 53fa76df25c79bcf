package anim

import "math"

const tiny = 1e-30

// SymLogNorm maps [-VMax, VMax] onto [0, 1], linearly inside ±LinThresh
// and logarithmically outside. Values beyond VMax saturate.
type SymLogNorm struct {
	LinThresh float64
	VMax      float64
	linScale  float64
}

// NewNorm builds the norm with vmin = -vmax. linthresh is clamped into
// (0, vmax].
func NewNorm(linthresh, vmax float64) SymLogNorm {
	linthresh, vmax = math.Abs(linthresh), math.Abs(vmax)
	if !(vmax > 0) {
		vmax = math.Max(linthresh, tiny)
	}
	if !(linthresh > 0) {
		linthresh = vmax * 1e-3
	}
	if linthresh > vmax {
		linthresh = vmax
	}
	return SymLogNorm{LinThresh: linthresh, VMax: vmax, linScale: 1 / (1 - math.Exp(-1))}
}

func (n SymLogNorm) VMin() float64 { return -n.VMax }

func (n SymLogNorm) transform(x float64) float64 {
	a := math.Abs(x)
	if a <= n.LinThresh {
		return x * n.linScale
	}
	return math.Copysign(n.LinThresh*(n.linScale+math.Log(a/n.LinThresh)), x)
}

// Normalize returns the colour coordinate of x.
func (n SymLogNorm) Normalize(x float64) float64 {
	lo, hi := n.transform(n.VMin()), n.transform(n.VMax)
	v := (n.transform(x) - lo) / (hi - lo)
	return math.Max(0, math.Min(1, v))
}
