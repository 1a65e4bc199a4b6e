package tools

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/unisearch/backends"
	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/session"
)

const githubBaseURL = "https://api.github.com"

// GithubClient holds the shared state of the GitHub search tools.
// The org, when set, scopes every query with an org: qualifier.
type GithubClient struct {
	token   string
	org     string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// GithubOption configures a GithubClient.
type GithubOption func(*GithubClient)

// WithGithubBaseURL overrides the API base URL. Used in tests and for
// GitHub Enterprise deployments.
func WithGithubBaseURL(url string) GithubOption {
	return func(c *GithubClient) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithGithubOrg scopes all searches to the given organization.
func WithGithubOrg(org string) GithubOption {
	return func(c *GithubClient) {
		c.org = org
	}
}

// WithGithubHTTPClient sets a custom HTTP client.
func WithGithubHTTPClient(client *http.Client) GithubOption {
	return func(c *GithubClient) {
		c.client = client
	}
}

// NewGithubClient creates the shared client for the GitHub search tools.
func NewGithubClient(token string, opts ...GithubOption) *GithubClient {
	c := &GithubClient{
		token:   token,
		baseURL: githubBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default().With("component", "github-search"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IssueSearch returns the issue/pull-request search tool.
func (c *GithubClient) IssueSearch() *GithubIssueSearch {
	return &GithubIssueSearch{client: c}
}

// CodeSearch returns the code search tool.
func (c *GithubClient) CodeSearch() *GithubCodeSearch {
	return &GithubCodeSearch{client: c}
}

func (c *GithubClient) headers() map[string]string {
	h := map[string]string{
		"Accept": "application/vnd.github+json",
	}
	if c.token != "" {
		h["Authorization"] = "Bearer " + c.token
	}
	return h
}

// scopedQuery applies the org qualifier to a raw query when configured.
func (c *GithubClient) scopedQuery(query string) string {
	if c.org == "" {
		return query
	}
	return query + " org:" + c.org
}

func (c *GithubClient) search(ctx context.Context, endpoint, query string, limit int, out any) error {
	u := fmt.Sprintf("%s/search/%s?q=%s&per_page=%d",
		c.baseURL, endpoint, url.QueryEscape(c.scopedQuery(query)), limit)
	return doJSON(ctx, c.logger, c.client, http.MethodGet, u, c.headers(), nil, out)
}

// GithubIssueSearch searches issues and pull requests.
type GithubIssueSearch struct {
	client *GithubClient
}

var _ session.Tool = (*GithubIssueSearch)(nil)

// Name returns the tool name.
func (t *GithubIssueSearch) Name() string {
	return backends.ToolGithubSearchIssues
}

// Description returns the description shown to the model.
func (t *GithubIssueSearch) Description() string {
	return "Search GitHub issues and pull requests. Returns titles, state and links."
}

// Parameters returns the argument schema.
func (t *GithubIssueSearch) Parameters() map[string]any {
	return searchParameters("Keywords to search GitHub issues and pull requests for")
}

type githubIssue struct {
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
	State   string `json:"state"`
}

type githubIssueSearchResponse struct {
	Items []githubIssue `json:"items"`
}

// Call runs the search and formats the issues for the model.
func (t *GithubIssueSearch) Call(ctx context.Context, arguments string) (session.ToolOutput, error) {
	args, err := parseSearchArgs(arguments)
	if err != nil {
		return session.ToolOutput{}, err
	}

	var resp githubIssueSearchResponse
	if err := t.client.search(ctx, "issues", args.Query, args.Limit, &resp); err != nil {
		t.client.logger.Error("github issue search failed", "query", args.Query, "err", err)
		return session.ToolOutput{}, fmt.Errorf("github issue search: %w", err)
	}

	var lines []string
	var sources []core.SourceRef
	for i, issue := range resp.Items {
		if i >= args.Limit {
			break
		}
		if issue.HTMLURL == "" {
			continue
		}

		lines = append(lines, fmt.Sprintf("%s (%s) %s", issue.Title, issue.State, issue.HTMLURL))
		sources = append(sources, core.SourceRef{
			Backend: backends.BackendGithub,
			Title:   issue.Title,
			URL:     issue.HTMLURL,
		})
	}

	if len(lines) == 0 {
		return session.ToolOutput{Content: "No GitHub issues matched the query."}, nil
	}

	return session.ToolOutput{
		Content: fmt.Sprintf("Found %d GitHub issues:\n%s", len(lines), strings.Join(lines, "\n")),
		Sources: sources,
	}, nil
}

// GithubCodeSearch searches repository code.
type GithubCodeSearch struct {
	client *GithubClient
}

var _ session.Tool = (*GithubCodeSearch)(nil)

// Name returns the tool name.
func (t *GithubCodeSearch) Name() string {
	return backends.ToolGithubSearchCode
}

// Description returns the description shown to the model.
func (t *GithubCodeSearch) Description() string {
	return "Search code in GitHub repositories. Returns file paths, repositories and links."
}

// Parameters returns the argument schema.
func (t *GithubCodeSearch) Parameters() map[string]any {
	return searchParameters("Keywords to search GitHub code for")
}

type githubCodeItem struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	HTMLURL    string `json:"html_url"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

type githubCodeSearchResponse struct {
	Items []githubCodeItem `json:"items"`
}

// Call runs the search and formats the files for the model.
func (t *GithubCodeSearch) Call(ctx context.Context, arguments string) (session.ToolOutput, error) {
	args, err := parseSearchArgs(arguments)
	if err != nil {
		return session.ToolOutput{}, err
	}

	var resp githubCodeSearchResponse
	if err := t.client.search(ctx, "code", args.Query, args.Limit, &resp); err != nil {
		t.client.logger.Error("github code search failed", "query", args.Query, "err", err)
		return session.ToolOutput{}, fmt.Errorf("github code search: %w", err)
	}

	var lines []string
	var sources []core.SourceRef
	for i, item := range resp.Items {
		if i >= args.Limit {
			break
		}
		if item.HTMLURL == "" {
			continue
		}

		title := item.Repository.FullName + "/" + item.Path
		lines = append(lines, fmt.Sprintf("%s (%s)", title, item.HTMLURL))
		sources = append(sources, core.SourceRef{
			Backend: backends.BackendGithub,
			Title:   title,
			URL:     item.HTMLURL,
		})
	}

	if len(lines) == 0 {
		return session.ToolOutput{Content: "No GitHub code matched the query."}, nil
	}

	return session.ToolOutput{
		Content: fmt.Sprintf("Found %d GitHub code results:\n%s", len(lines), strings.Join(lines, "\n")),
		Sources: sources,
	}, nil
}
