package tools

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/unisearch/backends"
	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/session"
)

const linearGraphqlURL = "https://api.linear.app/graphql"

const linearSearchQuery = `
query SearchIssues($query: String!, $first: Int) {
  searchIssues(query: $query, first: $first) {
    nodes {
      id
      identifier
      title
      description
      url
      state {
        name
      }
      assignee {
        name
      }
    }
  }
}
`

// LinearSearch searches Linear issues through the GraphQL API.
type LinearSearch struct {
	apiKey string
	url    string
	client *http.Client
	logger *slog.Logger
}

var _ session.Tool = (*LinearSearch)(nil)

// LinearOption configures a LinearSearch.
type LinearOption func(*LinearSearch)

// WithLinearURL overrides the GraphQL endpoint. Used in tests.
func WithLinearURL(url string) LinearOption {
	return func(t *LinearSearch) {
		t.url = url
	}
}

// WithLinearHTTPClient sets a custom HTTP client.
func WithLinearHTTPClient(client *http.Client) LinearOption {
	return func(t *LinearSearch) {
		t.client = client
	}
}

// NewLinearSearch creates a Linear issue search tool.
func NewLinearSearch(apiKey string, opts ...LinearOption) *LinearSearch {
	t := &LinearSearch{
		apiKey: apiKey,
		url:    linearGraphqlURL,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default().With("component", "linear-search"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the tool name.
func (t *LinearSearch) Name() string {
	return backends.ToolLinearSearchIssues
}

// Description returns the description shown to the model.
func (t *LinearSearch) Description() string {
	return "Search Linear issues and tickets. Returns issue identifiers, titles, state, assignee and links."
}

// Parameters returns the argument schema.
func (t *LinearSearch) Parameters() map[string]any {
	return searchParameters("Keywords to search Linear issues for")
}

type linearNamed struct {
	Name string `json:"name"`
}

type linearIssue struct {
	Identifier  string       `json:"identifier"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	State       *linearNamed `json:"state"`
	Assignee    *linearNamed `json:"assignee"`
}

type linearSearchResponse struct {
	Data struct {
		SearchIssues struct {
			Nodes []linearIssue `json:"nodes"`
		} `json:"searchIssues"`
	} `json:"data"`
}

// Call runs the search and formats the issues for the model.
func (t *LinearSearch) Call(ctx context.Context, arguments string) (session.ToolOutput, error) {
	args, err := parseSearchArgs(arguments)
	if err != nil {
		return session.ToolOutput{}, err
	}

	body := map[string]any{
		"query": linearSearchQuery,
		"variables": map[string]any{
			"query": args.Query,
			"first": args.Limit,
		},
	}
	headers := map[string]string{
		"Authorization": t.apiKey,
	}

	var resp linearSearchResponse
	if err := doJSON(ctx, t.logger, t.client, http.MethodPost, t.url, headers, body, &resp); err != nil {
		t.logger.Error("linear search failed", "query", args.Query, "err", err)
		return session.ToolOutput{}, fmt.Errorf("linear search: %w", err)
	}

	var lines []string
	var sources []core.SourceRef
	for i, issue := range resp.Data.SearchIssues.Nodes {
		if i >= args.Limit {
			break
		}
		if issue.URL == "" {
			continue
		}

		title := fmt.Sprintf("[%s] %s", issue.Identifier, issue.Title)
		line := title
		if issue.State != nil {
			line += " (" + issue.State.Name + ")"
		}
		if issue.Assignee != nil {
			line += " assigned to " + issue.Assignee.Name
		}
		if issue.Description != "" {
			line += ": " + snippet(issue.Description, 200)
		}
		line += " " + issue.URL

		lines = append(lines, line)
		sources = append(sources, core.SourceRef{
			Backend: backends.BackendLinear,
			Title:   title,
			URL:     issue.URL,
		})
	}

	if len(lines) == 0 {
		return session.ToolOutput{Content: "No Linear issues matched the query."}, nil
	}

	return session.ToolOutput{
		Content: fmt.Sprintf("Found %d Linear issues:\n%s", len(lines), strings.Join(lines, "\n")),
		Sources: sources,
	}, nil
}
