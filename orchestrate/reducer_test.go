package orchestrate

import (
	"errors"
	"testing"
	"time"

	"github.com/poiesic/unisearch/backends"
	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reducerBackends() []backends.Backend {
	return []backends.Backend{
		{Id: "issues", Enabled: true},
		{Id: "docs", Enabled: true},
	}
}

func TestReducerFinalTextReplacesDeltas(t *testing.T) {
	r := newReducer()
	r.observe(session.TextDelta{Text: "partial "})
	r.observe(session.TextDelta{Text: "stream"})
	r.observe(session.Completed{FinalText: "the clean final answer"})

	result, err := r.finalize(reducerBackends(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "the clean final answer", result.Answer)
}

func TestReducerAccumulatesDeltasWithoutFinal(t *testing.T) {
	r := newReducer()
	r.observe(session.TextDelta{Text: "part one, "})
	r.observe(session.TextDelta{Text: "part two"})

	assert.Equal(t, "part one, part two", r.answer())
}

func TestReducerDeduplicatesSources(t *testing.T) {
	r := newReducer()
	src := core.SourceRef{Backend: "docs", Title: "Runbook", URL: "https://notion.so/r1"}
	r.observe(session.ToolResultReceived{Backend: "docs", Sources: []core.SourceRef{src}})
	r.observe(session.ToolResultReceived{Backend: "docs", Sources: []core.SourceRef{src}})
	r.observe(session.Completed{FinalText: "done"})

	result, err := r.finalize(reducerBackends(), time.Second)
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
}

func TestReducerDropsSourcesWithoutURL(t *testing.T) {
	r := newReducer()
	r.observe(session.ToolResultReceived{Backend: "docs", Sources: []core.SourceRef{
		{Backend: "docs", Title: "no link"},
		{Backend: "docs", Title: "linked", URL: "https://notion.so/r1"},
	}})
	r.observe(session.Completed{FinalText: "done"})

	result, err := r.finalize(reducerBackends(), time.Second)
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "linked", result.Sources[0].Title)
}

func TestReducerPartialFailure(t *testing.T) {
	r := newReducer()
	r.observe(session.ToolResultReceived{Backend: "issues", Err: "down"})
	r.observe(session.ToolResultReceived{Backend: "docs", Sources: []core.SourceRef{
		{Backend: "docs", Title: "Runbook", URL: "https://notion.so/r1"},
	}})
	r.observe(session.Completed{FinalText: "found in docs"})

	result, err := r.finalize(reducerBackends(), time.Second)
	require.NoError(t, err)
	assert.True(t, result.Partial)
	assert.Equal(t, []string{"issues"}, result.FailedBackends)
}

func TestReducerBackendRecoversAfterRetry(t *testing.T) {
	// A backend that errors once but succeeds later is not a failed backend.
	r := newReducer()
	r.observe(session.ToolResultReceived{Backend: "issues", Err: "flaky"})
	r.observe(session.ToolResultReceived{Backend: "issues", Sources: []core.SourceRef{
		{Backend: "issues", Title: "Bug", URL: "https://github.com/x/1"},
	}})
	r.observe(session.Completed{FinalText: "found it"})

	result, err := r.finalize(reducerBackends(), time.Second)
	require.NoError(t, err)
	assert.False(t, result.Partial)
	assert.Empty(t, result.FailedBackends)
}

func TestReducerAllFailed(t *testing.T) {
	r := newReducer()
	r.observe(session.ToolResultReceived{Backend: "issues", Err: "down"})
	r.observe(session.ToolResultReceived{Backend: "docs", Err: "down"})
	r.observe(session.Completed{FinalText: "nothing found"})

	_, err := r.finalize(reducerBackends(), time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoResults))
}

func TestReducerNoToolCallsIsStillSuccess(t *testing.T) {
	// The model may answer directly without searching.
	r := newReducer()
	r.observe(session.Completed{FinalText: "that is not something I need to search for"})

	result, err := r.finalize(reducerBackends(), time.Second)
	require.NoError(t, err)
	assert.False(t, result.Partial)
}

func TestReducerSessionFailure(t *testing.T) {
	r := newReducer()
	r.observe(session.Failed{Cause: errors.New("boom")})

	_, err := r.finalize(reducerBackends(), time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchFailed))
}

func TestReducerSessionFailureWithoutCause(t *testing.T) {
	r := newReducer()
	r.observe(session.Failed{})

	_, err := r.finalize(reducerBackends(), time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchFailed))
}

func TestReducerMissingTerminalEvent(t *testing.T) {
	r := newReducer()
	r.observe(session.TextDelta{Text: "stream cut off"})

	_, err := r.finalize(reducerBackends(), time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReduction))
}

func TestReducerSnapshot(t *testing.T) {
	r := newReducer()
	r.observe(session.TextDelta{Text: "so far"})
	r.observe(session.ToolResultReceived{Backend: "docs", Sources: []core.SourceRef{
		{Backend: "docs", Title: "Runbook", URL: "https://notion.so/r1"},
	}})

	assert.True(t, r.hasPartialData())
	result := r.snapshot(reducerBackends(), time.Second)
	assert.Equal(t, "so far", result.Answer)
	assert.True(t, result.Partial)
	require.Len(t, result.Sources, 1)
}
