package backends

// Identifiers of the standard backends.
const (
	BackendSlack  = "slack"
	BackendNotion = "notion"
	BackendLinear = "linear"
	BackendGithub = "github"
)

// Tool names exposed by the standard backends. These must match the tool
// implementations registered with the session launcher.
const (
	ToolSlackSearchMessages = "slack_search_messages"
	ToolNotionSearch        = "notion_search"
	ToolLinearSearchIssues  = "linear_search_issues"
	ToolGithubSearchIssues  = "github_search_issues"
	ToolGithubSearchCode    = "github_search_code"
)

// DefaultBackends returns the standard backend catalog in its canonical
// order. Enabled flags are all true; callers disable entries for which no
// credentials are configured before building the registry.
//
// Keyword lists are a routing heuristic, not a contract. They are expected
// to be overridden from configuration in deployments that need different
// trigger terms.
func DefaultBackends() []Backend {
	return []Backend{
		{
			Id:      BackendSlack,
			Enabled: true,
			Tools:   []string{ToolSlackSearchMessages},
			Keywords: []string{
				"slack", "channel", "message", "conversation", "thread", "dm",
			},
		},
		{
			Id:      BackendNotion,
			Enabled: true,
			Tools:   []string{ToolNotionSearch},
			Keywords: []string{
				"notion", "document", "doc", "page", "wiki", "spec",
			},
		},
		{
			Id:      BackendLinear,
			Enabled: true,
			Tools:   []string{ToolLinearSearchIssues},
			Keywords: []string{
				"linear", "issue", "ticket", "bug", "task", "sprint",
			},
		},
		{
			Id:      BackendGithub,
			Enabled: true,
			Tools:   []string{ToolGithubSearchCode, ToolGithubSearchIssues},
			Keywords: []string{
				"github", "code", "pr", "pull request", "commit", "repo", "branch",
			},
		},
	}
}
