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


package slackbot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/orchestrate"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessager records posted and updated messages.
type fakeMessager struct {
	mu      sync.Mutex
	posts   []string // channels posted to
	updates []string // timestamps updated
	nextTS  int
}

func (f *fakeMessager) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, channelID)
	f.nextTS++
	return channelID, fmt.Sprintf("100%d.000000", f.nextTS), nil
}

func (f *fakeMessager) UpdateMessageContext(_ context.Context, channelID, timestamp string, _ ...slack.MsgOption) (string, string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, timestamp)
	return channelID, timestamp, "", nil
}

func (f *fakeMessager) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

func (f *fakeMessager) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

// fakeRunner returns a canned result or error and records requests.
type fakeRunner struct {
	mu      sync.Mutex
	reqs    []core.SearchRequest
	result  *core.SearchResult
	err     error
	blockCh chan struct{} // non-nil makes Run block until closed
}

func (f *fakeRunner) RunWithProgress(ctx context.Context, req core.SearchRequest, _ orchestrate.ProgressSink) (*core.SearchResult, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	blockCh := f.blockCh
	f.mu.Unlock()

	if blockCh != nil {
		select {
		case <-blockCh:
		case <-ctx.Done():
		}
	}
	return f.result, f.err
}

func (f *fakeRunner) requests() []core.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.SearchRequest(nil), f.reqs...)
}

// fakeHistory is an in-memory history.Store.
type fakeHistory struct {
	mu      sync.Mutex
	records []core.HistoryRecord
}

func (f *fakeHistory) Append(_ context.Context, record core.HistoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]core.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.records) {
		limit = len(f.records)
	}
	return append([]core.HistoryRecord(nil), f.records[:limit]...), nil
}

func (f *fakeHistory) Close() error { return nil }

func newTestBot(t *testing.T, runner SearchRunner, poolSize int) (*Bot, *fakeMessager) {
	t.Helper()

	msg := &fakeMessager{}
	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(true))
	require.NoError(t, err)

	b := &Bot{
		msg:    msg,
		runner: runner,
		pool:   pool,
		logger: slog.Default(),
	}
	t.Cleanup(b.Close)
	return b, msg
}

func TestHandleQueryRunsSearch(t *testing.T) {
	runner := &fakeRunner{
		result: &core.SearchResult{Answer: "All good.", Elapsed: time.Second},
	}
	b, msg := newTestBot(t, runner, 2)
	b.scope = "acme"

	b.handleQuery(context.Background(), "C01", "", "--slack deploy failures")

	require.Equal(t, 1, msg.postCount(), "placeholder should be posted")
	require.Eventually(t, func() bool {
		return msg.updateCount() == 1
	}, time.Second, 10*time.Millisecond, "result should replace the placeholder")

	reqs := runner.requests()
	require.Len(t, reqs, 1)
	assert.NotEmpty(t, reqs[0].Id)
	assert.Equal(t, "deploy failures", reqs[0].Query)
	assert.Equal(t, []string{"slack"}, reqs[0].BackendFilter)
	assert.Equal(t, "acme", reqs[0].Scope)
	assert.Equal(t, "C01", reqs[0].ConversationKey)
}

func TestHandleQueryThreadedConversationKey(t *testing.T) {
	runner := &fakeRunner{result: &core.SearchResult{Answer: "ok"}}
	b, msg := newTestBot(t, runner, 2)

	b.handleQuery(context.Background(), "C01", "1700.000100", "deploy failures")

	require.Eventually(t, func() bool {
		return msg.updateCount() == 1
	}, time.Second, 10*time.Millisecond)

	reqs := runner.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "C01:1700.000100", reqs[0].ConversationKey)
}

func TestHandleQueryEmptyTextShowsHelp(t *testing.T) {
	runner := &fakeRunner{}
	b, msg := newTestBot(t, runner, 2)

	b.handleQuery(context.Background(), "C01", "", "   ")

	assert.Equal(t, 1, msg.postCount())
	assert.Empty(t, runner.requests(), "no search should run")
}

func TestHandleQueryFlagsWithoutQuery(t *testing.T) {
	runner := &fakeRunner{}
	b, msg := newTestBot(t, runner, 2)

	b.handleQuery(context.Background(), "C01", "", "--slack --notion")

	assert.Equal(t, 1, msg.postCount())
	assert.Empty(t, runner.requests())
}

func TestHandleQueryRecent(t *testing.T) {
	runner := &fakeRunner{}
	b, msg := newTestBot(t, runner, 2)
	b.history = &fakeHistory{records: []core.HistoryRecord{
		{Query: "deploy failures", Elapsed: time.Second, SourceCount: 2},
	}}

	b.handleQuery(context.Background(), "C01", "", "recent")

	assert.Equal(t, 1, msg.postCount())
	assert.Empty(t, runner.requests())
}

func TestHandleQueryRecentWithoutHistory(t *testing.T) {
	runner := &fakeRunner{}
	b, msg := newTestBot(t, runner, 2)

	b.handleQuery(context.Background(), "C01", "", "Recent")

	assert.Equal(t, 1, msg.postCount())
	assert.Empty(t, runner.requests())
}

func TestHandleQuerySearchErrors(t *testing.T) {
	for _, searchErr := range []error{
		orchestrate.ErrConcurrentSearch,
		orchestrate.ErrNoResults,
		orchestrate.ErrSearchTimeout,
		orchestrate.ErrSearchFailed,
	} {
		t.Run(searchErr.Error(), func(t *testing.T) {
			runner := &fakeRunner{err: fmt.Errorf("%w: boom", searchErr)}
			b, msg := newTestBot(t, runner, 2)

			b.handleQuery(context.Background(), "C01", "", "deploy failures")

			require.Eventually(t, func() bool {
				return msg.updateCount() == 1
			}, time.Second, 10*time.Millisecond, "failure should replace the placeholder")
		})
	}
}

func TestHandleQueryTimeoutWithPartialResult(t *testing.T) {
	runner := &fakeRunner{
		result: &core.SearchResult{Answer: "So far.", Partial: true},
		err:    orchestrate.ErrSearchTimeout,
	}
	b, msg := newTestBot(t, runner, 2)

	b.handleQuery(context.Background(), "C01", "", "deploy failures")

	require.Eventually(t, func() bool {
		return msg.updateCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHandleQueryPoolFull(t *testing.T) {
	blockCh := make(chan struct{})
	runner := &fakeRunner{
		blockCh: blockCh,
		result:  &core.SearchResult{Answer: "ok"},
	}
	b, msg := newTestBot(t, runner, 1)
	defer close(blockCh)

	b.handleQuery(context.Background(), "C01", "", "first search")
	require.Eventually(t, func() bool {
		return len(runner.requests()) == 1
	}, time.Second, 10*time.Millisecond, "first search should start")

	b.handleQuery(context.Background(), "C02", "", "second search")

	require.Eventually(t, func() bool {
		return msg.updateCount() >= 1
	}, time.Second, 10*time.Millisecond, "second placeholder should become a busy message")
	assert.Len(t, runner.requests(), 1, "second search should be rejected")
}

func TestNewValidation(t *testing.T) {
	runner := &fakeRunner{}

	_, err := New("", "xapp-test", runner)
	assert.ErrorIs(t, err, ErrBotTokenRequired)

	_, err = New("xoxb-test", "", runner)
	assert.ErrorIs(t, err, ErrAppTokenRequired)

	_, err = New("xoxb-test", "xapp-test", nil)
	assert.ErrorIs(t, err, ErrRunnerRequired)
}

func TestNewAppliesOptions(t *testing.T) {
	runner := &fakeRunner{}
	b, err := New("xoxb-test", "xapp-test", runner,
		WithScope("acme"),
		WithPoolSize(3),
		WithHistory(&fakeHistory{}),
	)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, "acme", b.scope)
	assert.NotNil(t, b.history)
}

func TestMessageSinkSkipsTerminalPhases(t *testing.T) {
	msg := &fakeMessager{}
	sink := &messageSink{client: msg, channel: "C01", ts: "1.0", query: "q", logger: slog.Default()}

	sink.Publish(context.Background(), core.ProgressUpdate{Phase: core.PhaseDone})
	sink.Publish(context.Background(), core.ProgressUpdate{Phase: core.PhaseError})
	assert.Equal(t, 0, msg.updateCount())

	sink.Publish(context.Background(), core.ProgressUpdate{Phase: core.PhaseSearching, Backend: "slack"})
	assert.Equal(t, 1, msg.updateCount())
}
