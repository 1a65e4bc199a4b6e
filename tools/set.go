package tools

import (
	"fmt"

	"github.com/poiesic/unisearch/session"
)

// Set is an ordered collection of tools keyed by name.
type Set struct {
	byName map[string]session.Tool
	order  []string
}

// NewSet creates a set from the given tools. Tool names must be unique.
func NewSet(list ...session.Tool) (*Set, error) {
	s := &Set{
		byName: make(map[string]session.Tool, len(list)),
		order:  make([]string, 0, len(list)),
	}
	for _, tool := range list {
		name := tool.Name()
		if _, exists := s.byName[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTool, name)
		}
		s.byName[name] = tool
		s.order = append(s.order, name)
	}
	return s, nil
}

// Get returns the tool with the given name.
func (s *Set) Get(name string) (session.Tool, bool) {
	tool, ok := s.byName[name]
	return tool, ok
}

// Names returns the tool names in insertion order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of tools in the set.
func (s *Set) Len() int {
	return len(s.order)
}

// Filter returns a new set containing only the tools named in allow, in
// allow order. Unknown names are ignored.
func (s *Set) Filter(allow []string) *Set {
	filtered := &Set{byName: make(map[string]session.Tool, len(allow))}
	for _, name := range allow {
		tool, ok := s.byName[name]
		if !ok {
			continue
		}
		if _, dup := filtered.byName[name]; dup {
			continue
		}
		filtered.byName[name] = tool
		filtered.order = append(filtered.order, name)
	}
	return filtered
}
