package backends

import "strings"

// Select computes the subset of enabled backends relevant to a query.
//
// Selection rules, applied in order:
//   - A non-empty filter selects exactly the enabled backends whose identifier
//     appears in it; unknown identifiers are ignored. A filter naming only
//     unknown or disabled backends selects all enabled backends.
//   - Without a filter, every enabled backend with at least one trigger
//     keyword that is a substring of the lowercased query is selected.
//   - An empty selection falls back to all enabled backends, capped by the
//     registry's max-fallback setting. A broad search beats no search.
//
// The result preserves registry order and is never empty as long as at least
// one backend is enabled.
func (r *Registry) Select(query string, filter []string) []Backend {
	if len(filter) > 0 {
		wanted := make(map[string]bool, len(filter))
		for _, id := range filter {
			wanted[id] = true
		}

		selected := make([]Backend, 0, len(filter))
		for _, b := range r.backends {
			if b.Enabled && wanted[b.Id] {
				selected = append(selected, b)
			}
		}
		if len(selected) > 0 {
			return selected
		}
		// Every filtered backend was unknown or disabled. The filter is
		// stale, not a relevance signal, so go straight to the broad
		// fallback instead of second-guessing it with keywords.
		return r.fallbackSelection()
	}

	lowered := strings.ToLower(query)
	selected := make([]Backend, 0, len(r.backends))
	for _, b := range r.backends {
		if !b.Enabled {
			continue
		}
		for _, kw := range b.Keywords {
			if kw != "" && strings.Contains(lowered, kw) {
				selected = append(selected, b)
				break
			}
		}
	}

	if len(selected) > 0 {
		return selected
	}
	return r.fallbackSelection()
}

// fallbackSelection returns all enabled backends, capped by the registry's
// max-fallback setting.
func (r *Registry) fallbackSelection() []Backend {
	fallback := r.Enabled()
	if r.maxFallback > 0 && len(fallback) > r.maxFallback {
		fallback = fallback[:r.maxFallback]
	}
	return fallback
}
