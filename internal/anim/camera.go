package anim

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/san-kum/bbhexp/internal/geom"
	"github.com/san-kum/bbhexp/internal/scene"
)

const (
	CameraPeriod    = 1000.0
	CameraStopTime  = -500.0
	CameraAzimShift = 1.0
)

// CameraPath scripts the view for every binary sample. The elevation swings
// as 90 sin^2 with the given period and the azimuth turns azimShift degrees
// per sample. Both are phased so the view is the default (30, -60) at the
// sample closest to stopTime.
func CameraPath(t []float64, period, stopTime, azimShift float64) []scene.View {
	if len(t) == 0 {
		return nil
	}
	omega := math.Pi / period
	stop := geom.Nearest(t, stopTime)
	phi0 := math.Asin(1 / math.Sqrt(3))

	path := make([]scene.View, len(t))
	for i, ti := range t {
		phase := s1.Angle(omega*(ti-t[stop]) + phi0)
		s := math.Sin(phase.Radians())
		azim := s1.Angle(float64(i-stop)*azimShift)*s1.Degree + s1.Angle(scene.DefaultView.Azim)*s1.Degree
		path[i] = scene.View{Elev: 90 * s * s, Azim: azim.Degrees()}
	}
	return path
}
