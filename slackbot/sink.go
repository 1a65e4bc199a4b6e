package slackbot

import (
	"context"
	"log/slog"

	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/orchestrate"
	"github.com/slack-go/slack"
)

// messageClient is the slice of the Slack API the sink and bot use to
// render messages. *slack.Client satisfies it.
type messageClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
}

// messageSink renders progress updates by editing one placeholder message.
// Edit failures are logged and swallowed; losing a progress edit must not
// disturb the search.
type messageSink struct {
	client  messageClient
	channel string
	ts      string
	query   string
	logger  *slog.Logger
}

var _ orchestrate.ProgressSink = (*messageSink)(nil)

// Publish edits the placeholder with the update's progress rendering.
// Terminal phases are skipped; the final result rendering replaces the
// message instead.
func (s *messageSink) Publish(ctx context.Context, update core.ProgressUpdate) {
	if update.Phase == core.PhaseDone || update.Phase == core.PhaseError {
		return
	}

	_, _, _, err := s.client.UpdateMessageContext(ctx, s.channel, s.ts,
		slack.MsgOptionBlocks(ProgressBlocks(s.query, update)...),
		slack.MsgOptionText(FallbackText("Searching: "+s.query), false),
	)
	if err != nil {
		s.logger.Warn("progress edit failed", "channel", s.channel, "err", err)
	}
}
