package config

import "sort"

// Presets are binaries that show off particular features.
var Presets = map[string]*BinaryConfig{
	"nonspinning": {Q: 1},
	"aligned":     {Q: 1.5, ChiA: [3]float64{0, 0, 0.6}, ChiB: [3]float64{0, 0, 0.6}},
	"antialigned": {Q: 2, ChiA: [3]float64{0, 0, -0.6}, ChiB: [3]float64{0, 0, 0.3}},
	"precessing":  {Q: 2, ChiA: [3]float64{0.2, 0.7, -0.1}, ChiB: [3]float64{0.2, 0.6, 0.1}},
	"superkick":   {Q: 1, ChiA: [3]float64{0.8, 0, 0}, ChiB: [3]float64{-0.8, 0, 0}},
	"flipflop":    {Q: 1.2, ChiA: [3]float64{0, 0.2, 0.7}, ChiB: [3]float64{0, -0.2, -0.7}},
}

func GetPreset(name string) *BinaryConfig {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
