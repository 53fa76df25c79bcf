package surrogate

import (
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/bbhexp/internal/bundle"
)

type Registry struct {
	models map[string]func() Surrogate
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]func() Surrogate)}

	r.models[AnalyticName] = func() Surrogate {
		a := NewAnalytic()
		return Surrogate{Model: a, Fit: analyticFit{a}}
	}

	return r
}

// Register adds or replaces a named backend.
func (r *Registry) Register(name string, fn func() Surrogate) {
	r.models[name] = fn
}

// Open resolves name to a registered backend, or else to a bundle
// directory on disk.
func (r *Registry) Open(name string) (Surrogate, error) {
	if fn, ok := r.models[name]; ok {
		return fn(), nil
	}
	if info, err := os.Stat(name); err == nil && info.IsDir() {
		b, err := bundle.Load(name)
		if err != nil {
			return Surrogate{}, err
		}
		m := NewBundleModel(b)
		return Surrogate{Model: m, Fit: bundleFit{m}}, nil
	}
	return Surrogate{}, fmt.Errorf("%w: %s", ErrUnknownModel, name)
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
