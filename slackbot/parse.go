package slackbot

import (
	"regexp"
	"strings"
)

// filterFlagPattern matches backend filter flags in query text.
var filterFlagPattern = regexp.MustCompile(`(?i)--(slack|notion|linear|github)\b`)

// mentionPattern matches Slack user mentions like <@U0123ABCD>.
var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

// ParsedQuery is query text with its filter flags extracted.
type ParsedQuery struct {
	Query    string
	Backends []string // Lowercase backend ids in first-seen order; empty means no filter
}

// ParseQuery extracts filter flags from raw query text.
// "--slack --notion api error" yields query "api error" with the slack and
// notion backends selected.
func ParseQuery(text string) ParsedQuery {
	var backends []string
	seen := make(map[string]struct{})
	for _, m := range filterFlagPattern.FindAllStringSubmatch(text, -1) {
		backend := strings.ToLower(m[1])
		if _, dup := seen[backend]; dup {
			continue
		}
		seen[backend] = struct{}{}
		backends = append(backends, backend)
	}

	query := filterFlagPattern.ReplaceAllString(text, "")
	query = strings.Join(strings.Fields(query), " ")

	return ParsedQuery{Query: query, Backends: backends}
}

// StripMention removes bot mentions from message text and collapses the
// leftover whitespace.
func StripMention(text string) string {
	return strings.Join(strings.Fields(mentionPattern.ReplaceAllString(text, "")), " ")
}
