package orchestrate

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/unisearch/backends"
	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/session"
)

// reducer accumulates one session's event stream into a SearchResult.
//
// Text deltas are concatenated in arrival order; a Completed event's final
// text is authoritative and replaces them. Sources are deduplicated by
// (backend, url), first seen wins. Per-backend failures are tracked so the
// result can disclose partial failure instead of hiding it.
type reducer struct {
	deltas   strings.Builder
	final    string
	hasFinal bool

	sources []core.SourceRef
	seen    map[string]struct{}

	attempts map[string]int
	failures map[string]int

	failed    bool
	failCause error
	terminal  bool
}

func newReducer() *reducer {
	return &reducer{
		seen:     make(map[string]struct{}),
		attempts: make(map[string]int),
		failures: make(map[string]int),
	}
}

// observe folds one session event into the accumulator.
func (r *reducer) observe(ev session.Event) {
	switch ev := ev.(type) {
	case session.TextDelta:
		r.deltas.WriteString(ev.Text)

	case session.ToolResultReceived:
		r.attempts[ev.Backend]++
		if ev.Err != "" {
			r.failures[ev.Backend]++
			return
		}
		for _, src := range ev.Sources {
			// A citation without a URL cannot be linked; drop it rather
			// than failing the reduction.
			if src.URL == "" {
				continue
			}
			key := src.Backend + "\x00" + src.URL
			if _, dup := r.seen[key]; dup {
				continue
			}
			r.seen[key] = struct{}{}
			r.sources = append(r.sources, src)
		}

	case session.Completed:
		r.final = ev.FinalText
		r.hasFinal = true
		r.terminal = true

	case session.Failed:
		r.failed = true
		r.failCause = ev.Cause
		r.terminal = true
	}
}

// answer returns the best text accumulated so far.
func (r *reducer) answer() string {
	if r.hasFinal {
		return r.final
	}
	return r.deltas.String()
}

// hasPartialData reports whether a timeout result would carry anything
// worth returning.
func (r *reducer) hasPartialData() bool {
	return r.answer() != "" || len(r.sources) > 0
}

// snapshot builds a result from whatever has been accumulated, without the
// success checks finalize applies. Used for best-effort timeout results.
func (r *reducer) snapshot(selected []backends.Backend, elapsed time.Duration) *core.SearchResult {
	return &core.SearchResult{
		Answer:         r.answer(),
		Sources:        r.sources,
		Elapsed:        elapsed,
		Partial:        true,
		FailedBackends: r.failedBackends(selected),
	}
}

// finalize validates the accumulated stream and builds the final result.
func (r *reducer) finalize(selected []backends.Backend, elapsed time.Duration) (*core.SearchResult, error) {
	if r.failed {
		if r.failCause != nil {
			return nil, fmt.Errorf("%w: %w", ErrSearchFailed, r.failCause)
		}
		return nil, fmt.Errorf("%w: session reported no cause", ErrSearchFailed)
	}
	if !r.terminal {
		return nil, fmt.Errorf("%w: stream ended without a terminal event", ErrReduction)
	}

	failed := r.failedBackends(selected)
	if r.allAttemptedFailed() {
		return nil, fmt.Errorf("%w: backends %s", ErrNoResults, strings.Join(failed, ", "))
	}

	return &core.SearchResult{
		Answer:         r.answer(),
		Sources:        r.sources,
		Elapsed:        elapsed,
		Partial:        len(failed) > 0,
		FailedBackends: failed,
	}, nil
}

// failedBackends lists the selected backends whose tool calls all errored,
// in selection order.
func (r *reducer) failedBackends(selected []backends.Backend) []string {
	var failed []string
	for _, b := range selected {
		n := r.attempts[b.Id]
		if n > 0 && r.failures[b.Id] == n {
			failed = append(failed, b.Id)
		}
	}
	return failed
}

// allAttemptedFailed reports whether tools were called and every single call
// errored.
func (r *reducer) allAttemptedFailed() bool {
	if len(r.attempts) == 0 {
		return false
	}
	for backend, n := range r.attempts {
		if r.failures[backend] < n {
			return false
		}
	}
	return true
}
