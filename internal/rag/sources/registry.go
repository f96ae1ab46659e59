package sources

import (
	"fmt"
	"os"
	"strings"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

// LookupFunc reads one configuration key, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Constructor builds an adapter from the value of its configuration key.
type Constructor func(value string) (Adapter, error)

type entry struct {
	name   string
	envKey string
	build  Constructor
}

// Registry maps source names to a constructor and the key that configures it.
// Lookups happen when Build runs, so tests can Register a double over any name.
type Registry struct {
	entries map[string]entry
	order   []string
	lookup  LookupFunc
	logger  *logger_i.Logger
}

func NewRegistry(lookup LookupFunc) *Registry {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Registry{
		entries: map[string]entry{},
		lookup:  lookup,
		logger:  logger_i.NewLogger("source_registry"),
	}
}

// Register adds or replaces a source. Registration order is the scrape order.
func (r *Registry) Register(name document.Source, envKey string, build Constructor) {
	key := string(name)
	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	r.entries[key] = entry{name: key, envKey: envKey, build: build}
}

func (r *Registry) Sources() []string {
	return append([]string(nil), r.order...)
}

// Build constructs the adapters for names, or every registered source when
// names is empty. Sources whose key is unset are skipped and returned in
// skipped. Unknown names and constructor failures are configuration errors.
func (r *Registry) Build(names []string) (adapters []Adapter, skipped []string, err error) {
	if len(names) == 0 {
		names = r.order
	}
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		e, ok := r.entries[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: unknown source %q (known: %s)",
				document.ErrConfiguration, raw, strings.Join(r.order, ", "))
		}

		value, ok := r.lookup(e.envKey)
		if !ok || strings.TrimSpace(value) == "" {
			r.logger.Warn("Skipping source, configuration key not set", "source", name, "key", e.envKey)
			skipped = append(skipped, name)
			continue
		}

		a, err := e.build(strings.TrimSpace(value))
		if err != nil {
			return nil, nil, fmt.Errorf("building %s adapter: %w", name, err)
		}
		adapters = append(adapters, a)
	}
	return adapters, skipped, nil
}
