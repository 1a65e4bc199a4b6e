// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/unisearch/backends"
	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/session"
)

const (
	// DefaultTimeout bounds a run when the request carries no deadline.
	DefaultTimeout = 120 * time.Second

	// DefaultCoalesceInterval is the minimum spacing between progress
	// updates that are not phase changes.
	DefaultCoalesceInterval = 1500 * time.Millisecond
)

// HistoryRecorder remembers completed searches. Implementations must be safe
// for concurrent use.
type HistoryRecorder interface {
	Append(ctx context.Context, record core.HistoryRecord) error
}

// noopHistory discards records.
type noopHistory struct{}

func (noopHistory) Append(_ context.Context, _ core.HistoryRecord) error { return nil }

// Engine runs search requests. It is safe for concurrent use; runs for
// different conversations proceed independently.
type Engine struct {
	registry *backends.Registry
	launcher session.Launcher
	sink     ProgressSink
	history  HistoryRecorder
	timeout  time.Duration
	interval time.Duration
	locks    *conversationLocks
	logger   *slog.Logger
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine) error

// WithProgressSink sets the sink that receives progress updates.
func WithProgressSink(sink ProgressSink) Option {
	return func(e *Engine) error {
		if sink == nil {
			return errors.New("progress sink cannot be nil")
		}
		e.sink = sink
		return nil
	}
}

// WithHistory sets the store that remembers completed searches.
func WithHistory(history HistoryRecorder) Option {
	return func(e *Engine) error {
		if history == nil {
			return errors.New("history recorder cannot be nil")
		}
		e.history = history
		return nil
	}
}

// WithTimeout sets the default run timeout, used when a request carries no
// deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		e.timeout = d
		return nil
	}
}

// WithCoalesceInterval sets the progress coalescing interval.
func WithCoalesceInterval(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return errors.New("coalesce interval must be positive")
		}
		e.interval = d
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an engine over the given registry and session launcher.
func NewEngine(registry *backends.Registry, launcher session.Launcher, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if launcher == nil {
		return nil, errors.New("launcher cannot be nil")
	}

	e := &Engine{
		registry: registry,
		launcher: launcher,
		sink:     NoopProgressSink{},
		history:  noopHistory{},
		timeout:  DefaultTimeout,
		interval: DefaultCoalesceInterval,
		locks:    newConversationLocks(),
		logger:   slog.Default().With("component", "engine"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Run executes one search request end to end and returns its result.
//
// On timeout the returned error wraps ErrSearchTimeout; if partial text or
// sources had already been reduced, they are returned alongside the error
// rather than discarded. The per-conversation lock is released on every exit
// path.
func (e *Engine) Run(ctx context.Context, req core.SearchRequest) (*core.SearchResult, error) {
	return e.RunWithProgress(ctx, req, nil)
}

// RunWithProgress is Run with a per-request progress sink. A nil sink falls
// back to the engine's configured sink. Callers that edit a request-specific
// placeholder message use this entry point.
func (e *Engine) RunWithProgress(ctx context.Context, req core.SearchRequest, sink ProgressSink) (*core.SearchResult, error) {
	if sink == nil {
		sink = e.sink
	}
	if err := core.ValidateSearchRequest(&req); err != nil {
		return nil, err
	}

	selected := e.registry.Select(req.Query, req.BackendFilter)
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no enabled backends", ErrSearchFailed)
	}

	if !e.locks.tryAcquire(req.ConversationKey) {
		e.logger.Debug("search rejected, conversation busy", "conversation", req.ConversationKey)
		return nil, ErrConcurrentSearch
	}
	defer e.locks.release(req.ConversationKey)

	deadline := req.Deadline
	if deadline.IsZero() {
		deadline = time.Now().Add(e.timeout)
	}
	runCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	logger := e.logger.With("request", req.Id)
	logger.Info("search starting", "query", req.Query, "backends", backendIds(selected))

	start := time.Now()
	pipeline := newProgressPipeline(sink, e.interval)
	pipeline.start(ctx)

	handle, err := e.launcher.Launch(runCtx, session.LaunchRequest{
		Query:    req.Query,
		Scope:    req.Scope,
		Backends: selected,
	})
	if err != nil {
		logger.Error("session launch failed", "err", err)
		pipeline.fail(ctx, "the search could not be started")
		return nil, err
	}

	red := newReducer()
	timedOut := e.demux(runCtx, handle, pipeline, red)
	elapsed := time.Since(start)

	if timedOut {
		logger.Warn("search timed out", "elapsed", elapsed, "partial", red.hasPartialData())
		pipeline.fail(ctx, "search timed out")
		err := fmt.Errorf("%w after %s", ErrSearchTimeout, elapsed.Round(time.Second))
		if !red.hasPartialData() {
			return nil, err
		}
		result := red.snapshot(selected, elapsed)
		e.record(ctx, req, selected, result)
		return result, err
	}

	result, err := red.finalize(selected, elapsed)
	if err != nil {
		logger.Error("search failed", "elapsed", elapsed, "err", err)
		pipeline.fail(ctx, "the search failed")
		return nil, err
	}

	logger.Info("search finished",
		"elapsed", elapsed,
		"sources", len(result.Sources),
		"partial", result.Partial)
	e.record(ctx, req, selected, result)
	return result, nil
}

// demux reads each session event exactly once and fans it out to the
// progress pipeline and the reducer. Returns true when the deadline passed
// before the stream ended. On timeout the session is cancelled and any
// already-buffered events are still drained into the reducer, so a timeout
// does not discard data already received.
func (e *Engine) demux(runCtx context.Context, handle session.Handle, pipeline *progressPipeline, red *reducer) bool {
	events := handle.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			pipeline.observe(runCtx, ev)
			red.observe(ev)
		case <-runCtx.Done():
			handle.Cancel()
			for ev := range events {
				red.observe(ev)
			}
			return true
		}
	}
}

// record appends the run to the history store. History failures are logged,
// never surfaced; losing a history row must not fail a successful search.
func (e *Engine) record(ctx context.Context, req core.SearchRequest, selected []backends.Backend, result *core.SearchResult) {
	record := core.HistoryRecord{
		Id:          core.IDFromContent(req.Id),
		Query:       req.Query,
		Backends:    backendIds(selected),
		Elapsed:     result.Elapsed,
		Partial:     result.Partial,
		SourceCount: len(result.Sources),
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.history.Append(ctx, record); err != nil {
		e.logger.Warn("failed to record search history", "request", req.Id, "err", err)
	}
}

func backendIds(selected []backends.Backend) []string {
	ids := make([]string, len(selected))
	for i, b := range selected {
		ids[i] = b.Id
	}
	return ids
}
