package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/unisearch/backends"
	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/session"
	"github.com/slack-go/slack"
)

// SlackSearch searches workspace messages through the Slack search API.
type SlackSearch struct {
	client *slack.Client
	logger *slog.Logger
}

var _ session.Tool = (*SlackSearch)(nil)

// NewSlackSearch creates a Slack message search tool using the given client.
// The client's token needs the search:read scope.
func NewSlackSearch(client *slack.Client) *SlackSearch {
	return &SlackSearch{
		client: client,
		logger: slog.Default().With("component", "slack-search"),
	}
}

// Name returns the tool name.
func (t *SlackSearch) Name() string {
	return backends.ToolSlackSearchMessages
}

// Description returns the description shown to the model.
func (t *SlackSearch) Description() string {
	return "Search Slack workspace messages. Returns matching messages with their channel, author and a permalink."
}

// Parameters returns the argument schema.
func (t *SlackSearch) Parameters() map[string]any {
	return searchParameters("Keywords to search Slack messages for")
}

// Call runs the search and formats the matches for the model.
func (t *SlackSearch) Call(ctx context.Context, arguments string) (session.ToolOutput, error) {
	args, err := parseSearchArgs(arguments)
	if err != nil {
		return session.ToolOutput{}, err
	}

	params := slack.NewSearchParameters()
	params.Count = args.Limit

	matches, err := t.client.SearchMessagesContext(ctx, args.Query, params)
	if err != nil {
		t.logger.Error("slack search failed", "query", args.Query, "err", err)
		return session.ToolOutput{}, fmt.Errorf("slack search: %w", err)
	}

	var lines []string
	var sources []core.SourceRef
	for i, m := range matches.Matches {
		if i >= args.Limit {
			break
		}
		if m.Permalink == "" {
			// Items without a permalink cannot be cited; skip them.
			continue
		}

		title := "#" + m.Channel.Name
		lines = append(lines, fmt.Sprintf("%s by @%s: %s (%s)",
			title, m.Username, snippet(m.Text, 200), m.Permalink))
		sources = append(sources, core.SourceRef{
			Backend: backends.BackendSlack,
			Title:   title,
			URL:     m.Permalink,
		})
	}

	if len(lines) == 0 {
		return session.ToolOutput{Content: "No Slack messages matched the query."}, nil
	}

	return session.ToolOutput{
		Content: fmt.Sprintf("Found %d Slack messages:\n%s", len(lines), strings.Join(lines, "\n")),
		Sources: sources,
	}, nil
}
