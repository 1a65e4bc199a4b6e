package backends

import (
	"fmt"
	"strings"
)

// Backend describes one independently searchable knowledge source.
// Immutable after registry construction.
type Backend struct {
	Id       string   // Unique identifier within the registry
	Enabled  bool     // Disabled backends are never selected
	Tools    []string // Tool names this backend exposes to a session, in order
	Keywords []string // Lowercase trigger keywords for relevance detection
}

// Registry is the process-wide catalog of backends.
// It is initialized once and read-only thereafter.
type Registry struct {
	backends    []Backend
	index       map[string]int
	maxFallback int
}

// Option configures a Registry.
type Option func(*Registry) error

// WithMaxFallback caps how many backends a fallback-to-all selection may
// return. Zero (the default) means no cap.
func WithMaxFallback(n int) Option {
	return func(r *Registry) error {
		if n < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidMaxFallback, n)
		}
		r.maxFallback = n
		return nil
	}
}

// NewRegistry creates a registry from the given backends.
// Backend identifiers must be unique; keywords are normalized to lowercase.
func NewRegistry(list []Backend, opts ...Option) (*Registry, error) {
	if len(list) == 0 {
		return nil, ErrNoBackends
	}

	r := &Registry{
		backends: make([]Backend, len(list)),
		index:    make(map[string]int, len(list)),
	}

	for i, b := range list {
		if b.Id == "" {
			return nil, ErrEmptyBackendId
		}
		if _, exists := r.index[b.Id]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBackend, b.Id)
		}

		normalized := b
		normalized.Tools = append([]string(nil), b.Tools...)
		normalized.Keywords = make([]string, len(b.Keywords))
		for j, kw := range b.Keywords {
			normalized.Keywords[j] = strings.ToLower(kw)
		}

		r.backends[i] = normalized
		r.index[b.Id] = i
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// All returns every backend in registry order.
func (r *Registry) All() []Backend {
	return append([]Backend(nil), r.backends...)
}

// Enabled returns the enabled backends in registry order.
func (r *Registry) Enabled() []Backend {
	enabled := make([]Backend, 0, len(r.backends))
	for _, b := range r.backends {
		if b.Enabled {
			enabled = append(enabled, b)
		}
	}
	return enabled
}

// Get returns the backend with the given identifier.
func (r *Registry) Get(id string) (Backend, bool) {
	i, ok := r.index[id]
	if !ok {
		return Backend{}, false
	}
	return r.backends[i], true
}

// BackendForTool returns the identifier of the backend exposing the given
// tool name, or "" when no backend claims it.
func (r *Registry) BackendForTool(tool string) string {
	for _, b := range r.backends {
		for _, t := range b.Tools {
			if t == tool {
				return b.Id
			}
		}
	}
	return ""
}
