package orchestrate

import (
	"context"
	"time"

	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/session"
)

// ProgressSink receives coalesced progress updates for a running search.
// Implementations render them somewhere useful, typically by editing a
// placeholder chat message. Publish must not block for long; slow sinks delay
// event demultiplexing.
type ProgressSink interface {
	Publish(ctx context.Context, update core.ProgressUpdate)
}

// NoopProgressSink discards all updates.
type NoopProgressSink struct{}

// Publish does nothing.
func (NoopProgressSink) Publish(_ context.Context, _ core.ProgressUpdate) {}

// progressPipeline folds raw session events into coalesced progress updates.
//
// It maintains a small state machine, Started through Searching(backend) to
// Synthesizing, with Done and Error terminal. An update is emitted when the
// phase changes or when the coalescing interval has elapsed since the last
// emission, never one per raw event.
type progressPipeline struct {
	sink     ProgressSink
	interval time.Duration
	now      func() time.Time // Injectable for tests

	startedAt time.Time
	lastEmit  time.Time
	phase     core.Phase
	backend   string
	completed []string
	sawResult bool
	terminal  bool
}

func newProgressPipeline(sink ProgressSink, interval time.Duration) *progressPipeline {
	return &progressPipeline{
		sink:     sink,
		interval: interval,
		now:      time.Now,
	}
}

// start marks the beginning of the run and emits the Started update.
func (p *progressPipeline) start(ctx context.Context) {
	p.startedAt = p.now()
	p.phase = core.PhaseStarted
	p.emit(ctx, "")
}

// observe folds one session event into the state machine.
// Events after a terminal phase are ignored; late deliveries must not revive
// a finished progress stream.
func (p *progressPipeline) observe(ctx context.Context, ev session.Event) {
	if p.terminal {
		return
	}

	switch ev := ev.(type) {
	case session.ToolUseRequested:
		changed := p.phase != core.PhaseSearching || p.backend != ev.Backend
		p.phase = core.PhaseSearching
		p.backend = ev.Backend
		if changed || p.intervalElapsed() {
			p.emit(ctx, "")
		}

	case session.ToolResultReceived:
		p.sawResult = true
		p.markCompleted(ev.Backend)
		if p.intervalElapsed() {
			p.emit(ctx, "")
		}

	case session.TextDelta:
		// Text before any tool result is the model planning, not the answer.
		if !p.sawResult {
			return
		}
		changed := p.phase != core.PhaseSynthesizing
		p.phase = core.PhaseSynthesizing
		p.backend = ""
		if changed || p.intervalElapsed() {
			p.emit(ctx, "")
		}

	case session.Completed:
		p.terminal = true
		p.phase = core.PhaseDone
		p.backend = ""
		p.emit(ctx, "")

	case session.Failed:
		detail := "session failed"
		if ev.Cause != nil {
			detail = ev.Cause.Error()
		}
		p.fail(ctx, detail)
	}
}

// fail forces the terminal Error phase with the given detail.
// Used for session failures and for engine-level timeouts. Idempotent once
// terminal.
func (p *progressPipeline) fail(ctx context.Context, detail string) {
	if p.terminal {
		return
	}
	p.terminal = true
	p.phase = core.PhaseError
	p.backend = ""
	p.emit(ctx, detail)
}

func (p *progressPipeline) markCompleted(backend string) {
	if backend == "" {
		return
	}
	for _, b := range p.completed {
		if b == backend {
			return
		}
	}
	p.completed = append(p.completed, backend)
}

func (p *progressPipeline) intervalElapsed() bool {
	return p.now().Sub(p.lastEmit) > p.interval
}

func (p *progressPipeline) emit(ctx context.Context, detail string) {
	p.lastEmit = p.now()
	p.sink.Publish(ctx, core.ProgressUpdate{
		Phase:             p.phase,
		Backend:           p.backend,
		CompletedBackends: append([]string(nil), p.completed...),
		Elapsed:           p.now().Sub(p.startedAt),
		Detail:            detail,
	})
}
