// Package bundle stores precomputed surrogate output on disk: a
// metadata.json describing the binary and remnant, and a series.csv holding
// the dynamics, spins and waveform modes on the surrogate's native times.
package bundle

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang/geo/r3"
	"github.com/san-kum/bbhexp/internal/bbh"
	"gonum.org/v1/gonum/num/quat"
)

const (
	MetadataFile = "metadata.json"
	SeriesFile   = "series.csv"
)

var (
	ErrMissingColumn = errors.New("bundle: missing column")
	ErrMalformedRow  = errors.New("bundle: malformed row")
)

type Vec [3]float64

func fromVec(v Vec) r3.Vector { return r3.Vector{X: v[0], Y: v[1], Z: v[2]} }
func toVec(v r3.Vector) Vec   { return Vec{v.X, v.Y, v.Z} }

type BinaryMeta struct {
	Q        float64 `json:"q"`
	ChiA     Vec     `json:"chiA"`
	ChiB     Vec     `json:"chiB"`
	OmegaRef float64 `json:"omega_ref,omitempty"`
}

type RemnantMeta struct {
	Mass    float64 `json:"mass"`
	MassErr float64 `json:"mass_err"`
	Chi     Vec     `json:"chi"`
	ChiErr  Vec     `json:"chi_err"`
	Kick    Vec     `json:"kick"`
	KickErr Vec     `json:"kick_err"`
}

type Metadata struct {
	Model     string      `json:"model"`
	Fit       string      `json:"fit"`
	Created   time.Time   `json:"created"`
	Binary    BinaryMeta  `json:"binary"`
	Modes     []string    `json:"modes"`
	Remnant   RemnantMeta `json:"remnant"`
	NumPoints int         `json:"num_points"`
}

// Bundle is one surrogate evaluation on its native time base.
type Bundle struct {
	Model   string
	Fit     string
	Binary  bbh.Binary
	Remnant bbh.Remnant
	Times   []float64
	Quat    []quat.Number
	Phase   []float64
	ChiA    []r3.Vector
	ChiB    []r3.Vector
	Modes   bbh.Modes
}

// Dynamics returns the orientation and phase part of the bundle.
func (b *Bundle) Dynamics() *bbh.Dynamics {
	return &bbh.Dynamics{Times: b.Times, Quat: b.Quat, Phase: b.Phase}
}

func (b *Bundle) Validate() error {
	n := len(b.Times)
	if n == 0 {
		return bbh.ErrEmptySeries
	}
	s := bbh.Series{Times: b.Times, Quat: b.Quat, Phase: b.Phase, ChiA: b.ChiA, ChiB: b.ChiB}
	if err := s.Validate(); err != nil {
		return err
	}
	if len(b.Quat) != n || len(b.Phase) != n || len(b.ChiA) != n || len(b.ChiB) != n {
		return fmt.Errorf("%w: bundle columns must all have %d rows", bbh.ErrLengthMismatch, n)
	}
	return b.Modes.Validate(n)
}

func sortedModes(m bbh.Modes) []bbh.Mode {
	keys := make([]bbh.Mode, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].L != keys[j].L {
			return keys[i].L < keys[j].L
		}
		return keys[i].M < keys[j].M
	})
	return keys
}

var baseColumns = []string{
	"t", "qw", "qx", "qy", "qz", "phase",
	"chiAx", "chiAy", "chiAz", "chiBx", "chiBy", "chiBz",
}

// Save writes b into dir, creating it if needed.
func Save(dir string, b *Bundle) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	modes := sortedModes(b.Modes)
	meta := Metadata{
		Model:   b.Model,
		Fit:     b.Fit,
		Created: time.Now().UTC(),
		Binary: BinaryMeta{
			Q:        b.Binary.Q,
			ChiA:     toVec(b.Binary.ChiA),
			ChiB:     toVec(b.Binary.ChiB),
			OmegaRef: b.Binary.OmegaRef,
		},
		Remnant: RemnantMeta{
			Mass:    b.Remnant.Mass,
			MassErr: b.Remnant.MassErr,
			Chi:     toVec(b.Remnant.Chi),
			ChiErr:  toVec(b.Remnant.ChiErr),
			Kick:    toVec(b.Remnant.Kick),
			KickErr: toVec(b.Remnant.KickErr),
		},
		NumPoints: len(b.Times),
	}
	for _, k := range modes {
		meta.Modes = append(meta.Modes, k.String())
	}

	metaFile, err := os.Create(filepath.Join(dir, MetadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(dir, SeriesFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	header := append([]string(nil), baseColumns...)
	for _, k := range modes {
		header = append(header, k.String()+"_re", k.String()+"_im")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i, t := range b.Times {
		q := b.Quat[i]
		row := []string{
			format(t), format(q.Real), format(q.Imag), format(q.Jmag), format(q.Kmag), format(b.Phase[i]),
			format(b.ChiA[i].X), format(b.ChiA[i].Y), format(b.ChiA[i].Z),
			format(b.ChiB[i].X), format(b.ChiB[i].Y), format(b.ChiB[i].Z),
		}
		for _, k := range modes {
			h := b.Modes[k][i]
			row = append(row, format(real(h)), format(imag(h)))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadMetadata reads only the metadata of the bundle in dir.
func LoadMetadata(dir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("bundle: %s: %w", MetadataFile, err)
	}
	return &meta, nil
}

// ParseMode parses a column name of the form h_l_m.
func ParseMode(name string) (bbh.Mode, error) {
	parts := strings.Split(name, "_")
	if len(parts) != 3 || parts[0] != "h" {
		return bbh.Mode{}, fmt.Errorf("bundle: bad mode name %q", name)
	}
	l, err := strconv.Atoi(parts[1])
	if err != nil {
		return bbh.Mode{}, fmt.Errorf("bundle: bad mode name %q: %w", name, err)
	}
	m, err := strconv.Atoi(parts[2])
	if err != nil {
		return bbh.Mode{}, fmt.Errorf("bundle: bad mode name %q: %w", name, err)
	}
	return bbh.Mode{L: l, M: m}, nil
}

// Load reads the bundle stored in dir.
func Load(dir string) (*Bundle, error) {
	meta, err := LoadMetadata(dir)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(dir, SeriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("bundle: %s: %w", SeriesFile, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("bundle: %s: %w", SeriesFile, bbh.ErrEmptySeries)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, name := range baseColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	modes := make([]bbh.Mode, 0, len(meta.Modes))
	for _, name := range meta.Modes {
		k, err := ParseMode(name)
		if err != nil {
			return nil, err
		}
		for _, suffix := range []string{"_re", "_im"} {
			if _, ok := col[name+suffix]; !ok {
				return nil, fmt.Errorf("%w: %s%s", ErrMissingColumn, name, suffix)
			}
		}
		modes = append(modes, k)
	}

	n := len(records) - 1
	b := &Bundle{
		Model: meta.Model,
		Fit:   meta.Fit,
		Binary: bbh.Binary{
			Q:        meta.Binary.Q,
			ChiA:     fromVec(meta.Binary.ChiA),
			ChiB:     fromVec(meta.Binary.ChiB),
			OmegaRef: meta.Binary.OmegaRef,
		},
		Remnant: bbh.Remnant{
			Mass:    meta.Remnant.Mass,
			MassErr: meta.Remnant.MassErr,
			Chi:     fromVec(meta.Remnant.Chi),
			ChiErr:  fromVec(meta.Remnant.ChiErr),
			Kick:    fromVec(meta.Remnant.Kick),
			KickErr: fromVec(meta.Remnant.KickErr),
		},
		Times: make([]float64, n),
		Quat:  make([]quat.Number, n),
		Phase: make([]float64, n),
		ChiA:  make([]r3.Vector, n),
		ChiB:  make([]r3.Vector, n),
		Modes: make(bbh.Modes, len(modes)),
	}
	for _, k := range modes {
		b.Modes[k] = make([]complex128, n)
	}

	for i, record := range records[1:] {
		if len(record) != len(records[0]) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				ErrMalformedRow, i+2, len(record), len(records[0]))
		}
		var rowErr error
		get := func(name string) float64 {
			v, err := strconv.ParseFloat(record[col[name]], 64)
			if err != nil && rowErr == nil {
				rowErr = fmt.Errorf("%w: line %d, column %s: %v", ErrMalformedRow, i+2, name, err)
			}
			return v
		}

		b.Times[i] = get("t")
		b.Quat[i] = quat.Number{Real: get("qw"), Imag: get("qx"), Jmag: get("qy"), Kmag: get("qz")}
		b.Phase[i] = get("phase")
		b.ChiA[i] = r3.Vector{X: get("chiAx"), Y: get("chiAy"), Z: get("chiAz")}
		b.ChiB[i] = r3.Vector{X: get("chiBx"), Y: get("chiBy"), Z: get("chiBz")}
		for j, k := range modes {
			name := meta.Modes[j]
			b.Modes[k][i] = complex(get(name+"_re"), get(name+"_im"))
		}
		if rowErr != nil {
			return nil, rowErr
		}
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}
