package slackbot

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/unisearch/core"
	"github.com/slack-go/slack"
)

// backendDisplay maps backend ids to their emoji and display name.
var backendDisplay = map[string]struct {
	emoji string
	name  string
}{
	"slack":  {":slack:", "Slack"},
	"notion": {":notion:", "Notion"},
	"linear": {":linear:", "Linear"},
	"github": {":github:", "GitHub"},
}

func displayFor(backend string) (string, string) {
	if d, ok := backendDisplay[backend]; ok {
		return d.emoji, d.name
	}
	return ":mag:", backend
}

func sectionBlock(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}

func contextBlock(text string) *slack.ContextBlock {
	return slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, text, false, false))
}

// LoadingBlocks renders the placeholder posted before the search starts.
func LoadingBlocks(query string) []slack.Block {
	return []slack.Block{
		sectionBlock(fmt.Sprintf(":mag: *%s*", query)),
		contextBlock("_Searching..._"),
	}
}

// ProgressBlocks renders a live progress edit for the placeholder message.
// Completed backends are struck through, the current backend is highlighted,
// and the context line tracks the phase.
func ProgressBlocks(query string, update core.ProgressUpdate) []slack.Block {
	blocks := []slack.Block{
		sectionBlock(fmt.Sprintf(":mag: *%s*", query)),
	}

	var parts []string
	for _, backend := range update.CompletedBackends {
		emoji, name := displayFor(backend)
		parts = append(parts, fmt.Sprintf("%s ~%s~ :white_check_mark:", emoji, name))
	}
	if update.Phase == core.PhaseSearching && update.Backend != "" {
		emoji, name := displayFor(update.Backend)
		parts = append(parts, fmt.Sprintf("%s *%s* searching...", emoji, name))
	}
	if len(parts) > 0 {
		blocks = append(blocks, sectionBlock(strings.Join(parts, " • ")))
	}

	blocks = append(blocks, contextBlock(statusLine(update.Phase)))
	return blocks
}

func statusLine(phase core.Phase) string {
	switch phase {
	case core.PhaseStarted:
		return "_Analyzing the question..._"
	case core.PhaseSearching:
		return "_Searching..._"
	case core.PhaseSynthesizing:
		return "_Consolidating results..._"
	default:
		return "_Working..._"
	}
}

// ResultBlocks renders the final answer. The answer's "---" lines become
// dividers; cited sources and run metadata follow. A non-empty notice is
// shown above the answer, used for timeout-with-partial-results.
func ResultBlocks(query string, result *core.SearchResult, notice string) []slack.Block {
	var blocks []slack.Block
	if notice != "" {
		blocks = append(blocks, contextBlock(notice))
	}

	var section []string
	flush := func() {
		if len(section) > 0 {
			blocks = append(blocks, sectionBlock(strings.Join(section, "\n")))
			section = nil
		}
	}
	for _, line := range strings.Split(strings.TrimSpace(result.Answer), "\n") {
		if strings.TrimSpace(line) == "---" {
			flush()
			blocks = append(blocks, slack.NewDividerBlock())
			continue
		}
		section = append(section, line)
	}
	flush()

	if len(result.Sources) > 0 {
		var lines []string
		for _, src := range result.Sources {
			emoji, _ := displayFor(src.Backend)
			title := src.Title
			if title == "" {
				title = src.URL
			}
			lines = append(lines, fmt.Sprintf("%s <%s|%s>", emoji, src.URL, title))
		}
		blocks = append(blocks,
			slack.NewDividerBlock(),
			sectionBlock("*Sources*\n"+strings.Join(lines, "\n")))
	}

	meta := fmt.Sprintf(":stopwatch: %s", result.Elapsed.Round(time.Second))
	if len(result.FailedBackends) > 0 {
		meta += fmt.Sprintf(" • :warning: no answer from %s",
			strings.Join(result.FailedBackends, ", "))
	}
	blocks = append(blocks, contextBlock(meta))
	return blocks
}

// ErrorBlocks renders a search failure.
func ErrorBlocks(message string) []slack.Block {
	return []slack.Block{
		sectionBlock(":x: *The search hit an error*"),
		sectionBlock(fmt.Sprintf("```%s```", message)),
		contextBlock("Please try again."),
	}
}

// NoResultsBlocks renders the every-backend-failed outcome.
func NoResultsBlocks(query string) []slack.Block {
	return []slack.Block{
		sectionBlock(fmt.Sprintf(":shrug: No results found for *%s*", query)),
		contextBlock("Try different search terms, or narrow the search with --slack, --notion, --linear or --github."),
	}
}

// BusyBlocks renders the search-already-running rejection.
func BusyBlocks() []slack.Block {
	return []slack.Block{
		sectionBlock(":hourglass_flowing_sand: A search is already running in this conversation."),
		contextBlock("Wait for it to finish before starting another."),
	}
}

// TimeoutBlocks renders a timeout with nothing to show.
func TimeoutBlocks(query string) []slack.Block {
	return []slack.Block{
		sectionBlock(fmt.Sprintf(":hourglass: The search for *%s* timed out", query)),
		contextBlock("Try a narrower query, or filter backends with --slack, --notion, --linear or --github."),
	}
}

// HelpBlocks renders the usage message shown for empty queries.
func HelpBlocks() []slack.Block {
	return []slack.Block{
		sectionBlock(":mag: *Hi! I search your team's knowledge for you.*"),
		sectionBlock("I look through Slack, Notion, Linear and GitHub and answer with cited sources."),
		slack.NewDividerBlock(),
		sectionBlock("*Usage:*\n`/search <question>` or mention me with a question"),
		sectionBlock("*Filters:* `--slack`, `--notion`, `--linear`, `--github`\n*History:* `/search recent`"),
		sectionBlock("*Examples:*\n• `what did we decide about the deploy pipeline?`\n• `--linear auth bug tickets`\n• `--github recent PRs touching the billing code`"),
	}
}

// RecentBlocks renders the latest searches from the history store.
func RecentBlocks(records []core.HistoryRecord) []slack.Block {
	if len(records) == 0 {
		return []slack.Block{
			sectionBlock("No searches recorded yet."),
		}
	}

	var lines []string
	for _, r := range records {
		line := fmt.Sprintf("• *%s* — %s, %d sources",
			r.Query, r.Elapsed.Round(time.Second), r.SourceCount)
		if r.Partial {
			line += " (partial)"
		}
		lines = append(lines, line)
	}
	return []slack.Block{
		sectionBlock(":scroll: *Recent searches*"),
		sectionBlock(strings.Join(lines, "\n")),
	}
}

// FallbackText produces the plain-text notification summary for a message.
func FallbackText(text string) string {
	plain := strings.NewReplacer("*", "", "_", "", "`", "", "~", "").Replace(text)
	runes := []rune(plain)
	if len(runes) > 150 {
		return string(runes[:150])
	}
	return plain
}
