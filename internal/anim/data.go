package anim

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/bbh"
	"github.com/san-kum/bbhexp/internal/geom"
)

// Data is everything the renderer needs about one binary, sampled on the
// binary time grid.
type Data struct {
	Binary     bbh.Binary
	Times      []float64
	ChiA       []r3.Vector
	ChiB       []r3.Vector
	L          []r3.Vector
	TrajA      []r3.Vector
	TrajB      []r3.Vector
	Separation []float64
	Modes      bbh.Modes
	Remnant    bbh.Remnant
	Label      string
}

func (d *Data) Validate() error {
	n := len(d.Times)
	if n < 2 {
		return fmt.Errorf("anim: need at least two samples, got %d: %w", n, bbh.ErrEmptySeries)
	}
	for name, l := range map[string]int{
		"chiA": len(d.ChiA), "chiB": len(d.ChiB), "L": len(d.L),
		"trajA": len(d.TrajA), "trajB": len(d.TrajB),
	} {
		if l != n {
			return fmt.Errorf("%w: %s has %d samples, times has %d", bbh.ErrLengthMismatch, name, l, n)
		}
	}
	if len(d.Modes) == 0 {
		return fmt.Errorf("anim: no waveform modes: %w", bbh.ErrEmptySeries)
	}
	return d.Modes.Validate(n)
}

// MaxRange is the size of the plotting cube: the widest excursion of the
// lighter hole.
func (d *Data) MaxRange() float64 {
	return geom.MaxExtent(d.TrajB)
}
