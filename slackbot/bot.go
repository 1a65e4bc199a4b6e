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
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/history"
	"github.com/poiesic/unisearch/orchestrate"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

const (
	defaultPoolSize    = 8
	defaultRecentLimit = 10
)

// SearchRunner runs one search and streams progress to the given sink.
// *orchestrate.Engine satisfies it.
type SearchRunner interface {
	RunWithProgress(ctx context.Context, req core.SearchRequest, sink orchestrate.ProgressSink) (*core.SearchResult, error)
}

// Bot answers search queries over Slack Socket Mode.
type Bot struct {
	api    *slack.Client
	socket *socketmode.Client
	msg    messageClient
	runner SearchRunner

	history history.Store
	pool    *ants.Pool
	scope   string
	logger  *slog.Logger
}

// Option configures a Bot.
type Option func(*Bot) error

// WithHistory lets the bot answer "recent" with the latest searches.
func WithHistory(store history.Store) Option {
	return func(b *Bot) error {
		if store == nil {
			return errors.New("history store cannot be nil")
		}
		b.history = store
		return nil
	}
}

// WithPoolSize sets the number of concurrent searches the bot will run.
func WithPoolSize(size int) Option {
	return func(b *Bot) error {
		if size < 1 {
			size = 1
		}
		if b.pool != nil {
			b.pool.Release()
		}
		pool, err := ants.NewPool(size, ants.WithNonblocking(true))
		if err != nil {
			return err
		}
		b.pool = pool
		return nil
	}
}

// WithScope narrows every search to the given scope, e.g. a GitHub org.
func WithScope(scope string) Option {
	return func(b *Bot) error {
		b.scope = scope
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		b.logger = logger
		return nil
	}
}

// New creates a bot. The bot token is the xoxb token; the app token is the
// xapp token required for Socket Mode.
func New(botToken, appToken string, runner SearchRunner, opts ...Option) (*Bot, error) {
	if botToken == "" {
		return nil, ErrBotTokenRequired
	}
	if appToken == "" {
		return nil, ErrAppTokenRequired
	}
	if runner == nil {
		return nil, ErrRunnerRequired
	}

	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))

	pool, err := ants.NewPool(defaultPoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	b := &Bot{
		api:    api,
		socket: socketmode.New(api),
		msg:    api,
		runner: runner,
		pool:   pool,
		logger: slog.Default().With("component", "slackbot"),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			b.pool.Release()
			return nil, err
		}
	}
	return b, nil
}

// Run connects to Slack and serves events until the context ends.
func (b *Bot) Run(ctx context.Context) error {
	go b.handleEvents(ctx)
	b.logger.Info("connecting to slack")
	return b.socket.RunContext(ctx)
}

// Close releases the worker pool.
func (b *Bot) Close() {
	b.pool.Release()
}

// handleEvents processes incoming Socket Mode events.
func (b *Bot) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-b.socket.Events:
			switch evt.Type {
			case socketmode.EventTypeEventsAPI:
				b.handleEventsAPI(ctx, evt)
			case socketmode.EventTypeSlashCommand:
				b.handleSlashCommand(ctx, evt)
			case socketmode.EventTypeConnecting:
				b.logger.Debug("connecting to slack...")
			case socketmode.EventTypeConnected:
				b.logger.Info("connected to slack")
			case socketmode.EventTypeConnectionError:
				b.logger.Error("slack connection error")
			}
		}
	}
}

// handleEventsAPI processes Events API payloads, reacting to @mentions.
func (b *Bot) handleEventsAPI(ctx context.Context, evt socketmode.Event) {
	apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}
	b.socket.Ack(*evt.Request)

	if apiEvent.Type != slackevents.CallbackEvent {
		return
	}
	mention, ok := apiEvent.InnerEvent.Data.(*slackevents.AppMentionEvent)
	if !ok {
		return
	}

	b.logger.Info("mention received", "channel", mention.Channel, "user", mention.User)
	b.handleQuery(ctx, mention.Channel, mention.ThreadTimeStamp, StripMention(mention.Text))
}

// handleSlashCommand processes the /search command.
func (b *Bot) handleSlashCommand(ctx context.Context, evt socketmode.Event) {
	cmd, ok := evt.Data.(slack.SlashCommand)
	if !ok {
		return
	}
	b.socket.Ack(*evt.Request)

	b.logger.Info("slash command received", "channel", cmd.ChannelID, "user", cmd.UserID)
	b.handleQuery(ctx, cmd.ChannelID, "", cmd.Text)
}

// handleQuery posts the placeholder and schedules the search.
func (b *Bot) handleQuery(ctx context.Context, channel, threadTS, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		b.post(ctx, channel, threadTS, "How to search", HelpBlocks())
		return
	}
	if strings.EqualFold(text, "recent") {
		b.showRecent(ctx, channel, threadTS)
		return
	}

	parsed := ParseQuery(text)
	if parsed.Query == "" {
		b.post(ctx, channel, threadTS, "Missing query",
			[]slack.Block{sectionBlock("Please provide a search query after the filter flags.")})
		return
	}

	ts := b.post(ctx, channel, threadTS, "Searching: "+parsed.Query, LoadingBlocks(parsed.Query))
	if ts == "" {
		return
	}

	conversationKey := channel
	if threadTS != "" {
		conversationKey = channel + ":" + threadTS
	}

	err := b.pool.Submit(func() {
		b.runSearch(ctx, channel, ts, conversationKey, parsed)
	})
	if err != nil {
		b.logger.Warn("search pool full", "channel", channel, "err", err)
		b.update(ctx, channel, ts, "Too many searches running", BusyBlocks())
	}
}

// runSearch executes one search and renders its outcome over the placeholder.
func (b *Bot) runSearch(ctx context.Context, channel, ts, conversationKey string, parsed ParsedQuery) {
	req := core.SearchRequest{
		Id:              uuid.NewString(),
		Query:           parsed.Query,
		BackendFilter:   parsed.Backends,
		Scope:           b.scope,
		ConversationKey: conversationKey,
	}
	sink := &messageSink{
		client:  b.msg,
		channel: channel,
		ts:      ts,
		query:   parsed.Query,
		logger:  b.logger,
	}

	result, err := b.runner.RunWithProgress(ctx, req, sink)
	switch {
	case err == nil:
		b.update(ctx, channel, ts, result.Answer, ResultBlocks(parsed.Query, result, ""))

	case errors.Is(err, orchestrate.ErrConcurrentSearch):
		b.update(ctx, channel, ts, "A search is already running here", BusyBlocks())

	case errors.Is(err, orchestrate.ErrNoResults):
		b.update(ctx, channel, ts, "No results for "+parsed.Query, NoResultsBlocks(parsed.Query))

	case errors.Is(err, orchestrate.ErrSearchTimeout):
		if result != nil {
			notice := ":hourglass: The search timed out; showing what was found so far."
			b.update(ctx, channel, ts, result.Answer, ResultBlocks(parsed.Query, result, notice))
			return
		}
		b.update(ctx, channel, ts, "The search timed out", TimeoutBlocks(parsed.Query))

	default:
		b.logger.Error("search failed", "request", req.Id, "err", err)
		b.update(ctx, channel, ts, "The search failed", ErrorBlocks(err.Error()))
	}
}

// showRecent renders the latest searches from the history store.
func (b *Bot) showRecent(ctx context.Context, channel, threadTS string) {
	if b.history == nil {
		b.post(ctx, channel, threadTS, "History is not enabled",
			[]slack.Block{sectionBlock("Search history is not enabled.")})
		return
	}

	records, err := b.history.Recent(ctx, defaultRecentLimit)
	if err != nil {
		b.logger.Error("history lookup failed", "err", err)
		b.post(ctx, channel, threadTS, "History lookup failed", ErrorBlocks(err.Error()))
		return
	}
	b.post(ctx, channel, threadTS, "Recent searches", RecentBlocks(records))
}

// post sends a message and returns its timestamp. Failures are logged and
// yield an empty timestamp.
func (b *Bot) post(ctx context.Context, channel, threadTS, fallback string, blocks []slack.Block) string {
	opts := []slack.MsgOption{
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(FallbackText(fallback), false),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	_, ts, err := b.msg.PostMessageContext(ctx, channel, opts...)
	if err != nil {
		b.logger.Error("failed to post message", "channel", channel, "err", err)
		return ""
	}
	return ts
}

// update replaces a previously posted message.
func (b *Bot) update(ctx context.Context, channel, ts, fallback string, blocks []slack.Block) {
	_, _, _, err := b.msg.UpdateMessageContext(ctx, channel, ts,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(FallbackText(fallback), false),
	)
	if err != nil {
		b.logger.Error("failed to update message", "channel", channel, "err", err)
	}
}
