package orchestrate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/unisearch/backends"
	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/session"
	"github.com/poiesic/unisearch/session/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures every published update.
type recordingSink struct {
	mu      sync.Mutex
	updates []core.ProgressUpdate
}

func (s *recordingSink) Publish(_ context.Context, update core.ProgressUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
}

func (s *recordingSink) phases() []core.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	phases := make([]core.Phase, len(s.updates))
	for i, u := range s.updates {
		phases[i] = u.Phase
	}
	return phases
}

// recordingHistory captures appended records.
type recordingHistory struct {
	mu      sync.Mutex
	records []core.HistoryRecord
}

func (h *recordingHistory) Append(_ context.Context, record core.HistoryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *recordingHistory) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func testRegistry(t *testing.T) *backends.Registry {
	t.Helper()
	registry, err := backends.NewRegistry([]backends.Backend{
		{Id: "issues", Enabled: true, Tools: []string{"search_issues"}, Keywords: []string{"bug", "issue"}},
		{Id: "docs", Enabled: true, Tools: []string{"search_docs"}, Keywords: []string{"doc", "deploy"}},
	})
	require.NoError(t, err)
	return registry
}

func testableRequest() core.SearchRequest {
	return core.SearchRequest{
		Id:              "req-1",
		Query:           "what broke the deploy?",
		ConversationKey: "C1:100.1",
	}
}

func happyScript() []session.Event {
	return []session.Event{
		session.ToolUseRequested{Tool: "search_docs", Backend: "docs", StartedAt: time.Now()},
		session.ToolResultReceived{
			Tool:    "search_docs",
			Backend: "docs",
			Sources: []core.SourceRef{{Backend: "docs", Title: "Runbook", URL: "https://notion.so/r1"}},
		},
		session.TextDelta{Text: "The deploy "},
		session.TextDelta{Text: "broke because of X."},
		session.Completed{FinalText: "The deploy broke because of X."},
	}
}

func TestRunHappyPath(t *testing.T) {
	sink := &recordingSink{}
	history := &recordingHistory{}
	launcher := mock.NewMockLauncher(happyScript()...)

	engine, err := NewEngine(testRegistry(t), launcher,
		WithProgressSink(sink),
		WithHistory(history),
	)
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), testableRequest())
	require.NoError(t, err)

	assert.Equal(t, "The deploy broke because of X.", result.Answer)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "https://notion.so/r1", result.Sources[0].URL)
	assert.False(t, result.Partial)
	assert.Empty(t, result.FailedBackends)

	phases := sink.phases()
	require.NotEmpty(t, phases)
	assert.Equal(t, core.PhaseStarted, phases[0])
	assert.Equal(t, core.PhaseDone, phases[len(phases)-1])

	assert.Equal(t, 1, history.count())
	assert.Equal(t, 1, launcher.LaunchCount())

	// The launch was restricted to the keyword-selected backend.
	assert.Equal(t, []string{"search_docs"}, launcher.LastRequest().AllowedTools())
}

func TestRunPartialFailure(t *testing.T) {
	script := []session.Event{
		session.ToolResultReceived{Tool: "search_issues", Backend: "issues", Err: "rate limited"},
		session.ToolResultReceived{
			Tool:    "search_docs",
			Backend: "docs",
			Sources: []core.SourceRef{{Backend: "docs", Title: "Runbook", URL: "https://notion.so/r1"}},
		},
		session.Completed{FinalText: "Found it in the docs."},
	}
	launcher := mock.NewMockLauncher(script...)

	engine, err := NewEngine(testRegistry(t), launcher)
	require.NoError(t, err)

	req := testableRequest()
	req.Query = "deploy bug" // selects both backends
	result, err := engine.Run(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, result.Partial)
	assert.Equal(t, []string{"issues"}, result.FailedBackends)
	require.Len(t, result.Sources, 1)
}

func TestRunAllBackendsFailed(t *testing.T) {
	script := []session.Event{
		session.ToolResultReceived{Tool: "search_issues", Backend: "issues", Err: "down"},
		session.ToolResultReceived{Tool: "search_docs", Backend: "docs", Err: "down"},
		session.Completed{FinalText: "I could not find anything."},
	}
	launcher := mock.NewMockLauncher(script...)

	engine, err := NewEngine(testRegistry(t), launcher)
	require.NoError(t, err)

	req := testableRequest()
	req.Query = "deploy bug"
	_, err = engine.Run(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoResults))
}

func TestRunSessionFailed(t *testing.T) {
	launcher := mock.NewMockLauncher(session.Failed{Cause: errors.New("model exploded")})

	engine, err := NewEngine(testRegistry(t), launcher)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), testableRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchFailed))
	assert.Contains(t, err.Error(), "model exploded")
}

func TestRunLaunchError(t *testing.T) {
	launcher := &mock.MockLauncher{
		LaunchFunc: func(_ context.Context, _ session.LaunchRequest) (session.Handle, error) {
			return nil, session.ErrLaunch
		},
	}

	engine, err := NewEngine(testRegistry(t), launcher)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), testableRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrLaunch))
}

func TestRunTimeoutWithPartialResult(t *testing.T) {
	// The session delivers partial data and then hangs until cancelled.
	handle := mock.NewHangingHandle(
		session.ToolResultReceived{
			Tool:    "search_docs",
			Backend: "docs",
			Sources: []core.SourceRef{{Backend: "docs", Title: "Runbook", URL: "https://notion.so/r1"}},
		},
		session.TextDelta{Text: "So far I found"},
	)
	launcher := &mock.MockLauncher{
		LaunchFunc: func(_ context.Context, _ session.LaunchRequest) (session.Handle, error) {
			return handle, nil
		},
	}

	engine, err := NewEngine(testRegistry(t), launcher)
	require.NoError(t, err)

	req := testableRequest()
	req.Deadline = time.Now().Add(50 * time.Millisecond)
	result, err := engine.Run(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchTimeout))
	require.NotNil(t, result)
	assert.True(t, result.Partial)
	assert.Equal(t, "So far I found", result.Answer)
	require.Len(t, result.Sources, 1)
	assert.GreaterOrEqual(t, handle.CancelCount(), 1)
}

func TestRunTimeoutWithoutData(t *testing.T) {
	launcher := &mock.MockLauncher{
		LaunchFunc: func(_ context.Context, _ session.LaunchRequest) (session.Handle, error) {
			return mock.NewHangingHandle(), nil
		},
	}

	engine, err := NewEngine(testRegistry(t), launcher)
	require.NoError(t, err)

	req := testableRequest()
	req.Deadline = time.Now().Add(50 * time.Millisecond)
	result, err := engine.Run(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchTimeout))
	assert.Nil(t, result)
}

func TestRunConcurrentSearchRejected(t *testing.T) {
	release := make(chan struct{})
	launcher := &mock.MockLauncher{
		LaunchFunc: func(_ context.Context, _ session.LaunchRequest) (session.Handle, error) {
			h := mock.NewHangingHandle()
			go func() {
				<-release
				h.Cancel()
			}()
			return h, nil
		},
	}

	engine, err := NewEngine(testRegistry(t), launcher)
	require.NoError(t, err)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		engine.Run(context.Background(), testableRequest())
	}()

	// Wait for the first run to take the conversation lock. The lock is
	// acquired before Launch is called, so a recorded launch means the key
	// is held; probing earlier could steal the lock and hang on the
	// hanging handle.
	require.Eventually(t, func() bool {
		return launcher.LaunchCount() == 1
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		_, err := engine.Run(context.Background(), testableRequest())
		return errors.Is(err, ErrConcurrentSearch)
	}, time.Second, 5*time.Millisecond)

	// A different conversation is not blocked.
	otherLauncher := mock.NewMockLauncher(happyScript()...)
	otherEngine, err := NewEngine(testRegistry(t), otherLauncher)
	require.NoError(t, err)
	other := testableRequest()
	other.ConversationKey = "C2:200.2"
	_, err = otherEngine.Run(context.Background(), other)
	require.NoError(t, err)

	close(release)
	<-firstDone

	// After the first run finishes the key is free again.
	launcher.LaunchFunc = nil
	launcher.Script = happyScript()
	_, err = engine.Run(context.Background(), testableRequest())
	require.NoError(t, err)
}

func TestRunValidatesRequest(t *testing.T) {
	engine, err := NewEngine(testRegistry(t), mock.NewMockLauncher())
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), core.SearchRequest{ConversationKey: "c"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrEmptyQuery))
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(nil, mock.NewMockLauncher())
	require.Error(t, err)

	_, err = NewEngine(testRegistry(t), nil)
	require.Error(t, err)

	_, err = NewEngine(testRegistry(t), mock.NewMockLauncher(), WithTimeout(0))
	require.Error(t, err)
}
