package config

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/bbhexp/internal/scene"
)

// Palette maps every scene role to a colour.
type Palette struct {
	Name   string
	colors map[scene.Role]colorful.Color
}

// Color returns the colour of role.
func (p *Palette) Color(r scene.Role) color.Color {
	return p.colors[r]
}

// Hex returns the colour of role as #rrggbb.
func (p *Palette) Hex(r scene.Role) string {
	return p.colors[r].Hex()
}

var paletteSpecs = map[string]map[scene.Role]string{
	"wesanderson": {
		scene.RoleTrajA:           "#ebcc2a",
		scene.RoleTrajB:           "#5b1a18",
		scene.RoleSpinA:           "#d8a499",
		scene.RoleSpinB:           "#3f5151",
		scene.RoleSpinRemnant:     "#3b9ab2",
		scene.RoleAngularMomentum: "#e1bd6d",
		scene.RoleHorizon:         "#000000",
		scene.RoleInfo:            "#34a5da",
		scene.RoleText:            "#000000",
		scene.RoleHPlus:           "#c27d38",
		scene.RoleHCross:          "#29211f",
	},
	"plain": {
		scene.RoleTrajA:           "indianred",
		scene.RoleTrajB:           "rebeccapurple",
		scene.RoleSpinA:           "goldenrod",
		scene.RoleSpinB:           "steelblue",
		scene.RoleSpinRemnant:     "forestgreen",
		scene.RoleAngularMomentum: "orchid",
		scene.RoleHorizon:         "black",
		scene.RoleInfo:            "black",
		scene.RoleText:            "black",
		scene.RoleHPlus:           "tomato",
		scene.RoleHCross:          "steelblue",
	},
}

var namedColors = map[string]string{
	"indianred":     "#cd5c5c",
	"rebeccapurple": "#663399",
	"goldenrod":     "#daa520",
	"steelblue":     "#4682b4",
	"forestgreen":   "#228b22",
	"orchid":        "#da70d6",
	"black":         "#000000",
	"tomato":        "#ff6347",
}

// GetPalette resolves a named palette, checking that every role has a
// valid colour.
func GetPalette(name string) (*Palette, error) {
	spec, ok := paletteSpecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown palette %q", ErrInvalidConfig, name)
	}
	return parsePalette(name, spec)
}

func parsePalette(name string, spec map[scene.Role]string) (*Palette, error) {
	p := &Palette{Name: name, colors: make(map[scene.Role]colorful.Color, len(spec))}
	for _, r := range scene.Roles() {
		s, ok := spec[r]
		if !ok {
			return nil, fmt.Errorf("%w: palette %q has no colour for %s", ErrInvalidConfig, name, r)
		}
		if hex, ok := namedColors[s]; ok {
			s = hex
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("%w: palette %q, %s: %v", ErrInvalidConfig, name, r, err)
		}
		p.colors[r] = c
	}
	return p, nil
}

func ListPalettes() []string {
	names := make([]string, 0, len(paletteSpecs))
	for name := range paletteSpecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
