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

const (
	notionBaseURL    = "https://api.notion.com"
	notionAPIVersion = "2022-06-28"
)

// NotionSearch searches Notion pages through the REST search endpoint.
type NotionSearch struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ session.Tool = (*NotionSearch)(nil)

// NotionOption configures a NotionSearch.
type NotionOption func(*NotionSearch)

// WithNotionBaseURL overrides the API base URL. Used in tests.
func WithNotionBaseURL(url string) NotionOption {
	return func(t *NotionSearch) {
		t.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithNotionHTTPClient sets a custom HTTP client.
func WithNotionHTTPClient(client *http.Client) NotionOption {
	return func(t *NotionSearch) {
		t.client = client
	}
}

// NewNotionSearch creates a Notion page search tool.
func NewNotionSearch(apiKey string, opts ...NotionOption) *NotionSearch {
	t := &NotionSearch{
		apiKey:  apiKey,
		baseURL: notionBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default().With("component", "notion-search"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the tool name.
func (t *NotionSearch) Name() string {
	return backends.ToolNotionSearch
}

// Description returns the description shown to the model.
func (t *NotionSearch) Description() string {
	return "Search Notion pages and documents by title. Returns page titles and links."
}

// Parameters returns the argument schema.
func (t *NotionSearch) Parameters() map[string]any {
	return searchParameters("Keywords to search Notion page titles for")
}

// notionItem mirrors the fields of a Notion search result we care about.
type notionItem struct {
	Object     string                    `json:"object"`
	Id         string                    `json:"id"`
	URL        string                    `json:"url"`
	Properties map[string]notionProperty `json:"properties"`
}

type notionProperty struct {
	Type     string       `json:"type"`
	Title    []notionText `json:"title"`
	RichText []notionText `json:"rich_text"`
}

type notionText struct {
	PlainText string `json:"plain_text"`
}

type notionSearchResponse struct {
	Results []notionItem `json:"results"`
}

// Call runs the search and formats the pages for the model.
func (t *NotionSearch) Call(ctx context.Context, arguments string) (session.ToolOutput, error) {
	args, err := parseSearchArgs(arguments)
	if err != nil {
		return session.ToolOutput{}, err
	}

	body := map[string]any{
		"query":     args.Query,
		"page_size": args.Limit,
		"filter":    map[string]string{"property": "object", "value": "page"},
	}
	headers := map[string]string{
		"Authorization":  "Bearer " + t.apiKey,
		"Notion-Version": notionAPIVersion,
	}

	var resp notionSearchResponse
	if err := doJSON(ctx, t.logger, t.client, http.MethodPost, t.baseURL+"/v1/search", headers, body, &resp); err != nil {
		t.logger.Error("notion search failed", "query", args.Query, "err", err)
		return session.ToolOutput{}, fmt.Errorf("notion search: %w", err)
	}

	var lines []string
	var sources []core.SourceRef
	for i, item := range resp.Results {
		if i >= args.Limit {
			break
		}

		title := item.title()
		if title == "" {
			title = "Untitled"
		}
		url := item.URL
		if url == "" {
			url = "https://notion.so/" + strings.ReplaceAll(item.Id, "-", "")
		}

		lines = append(lines, fmt.Sprintf("%s (%s)", title, url))
		sources = append(sources, core.SourceRef{
			Backend: backends.BackendNotion,
			Title:   title,
			URL:     url,
		})
	}

	if len(lines) == 0 {
		return session.ToolOutput{Content: "No Notion pages matched the query."}, nil
	}

	return session.ToolOutput{
		Content: fmt.Sprintf("Found %d Notion pages:\n%s", len(lines), strings.Join(lines, "\n")),
		Sources: sources,
	}, nil
}

// title extracts the page title from the item's properties, trying the
// common title property names before giving up.
func (item notionItem) title() string {
	for _, name := range []string{"title", "Title", "Name", "name"} {
		prop, ok := item.Properties[name]
		if !ok || prop.Type != "title" {
			continue
		}
		if len(prop.Title) > 0 {
			return prop.Title[0].PlainText
		}
	}
	return ""
}
