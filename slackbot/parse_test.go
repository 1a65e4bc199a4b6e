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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		query    string
		backends []string
	}{
		{
			name:  "no flags",
			text:  "what broke the deploy pipeline?",
			query: "what broke the deploy pipeline?",
		},
		{
			name:     "single flag",
			text:     "--slack api error",
			query:    "api error",
			backends: []string{"slack"},
		},
		{
			name:     "multiple flags keep first-seen order",
			text:     "--notion --slack onboarding docs",
			query:    "onboarding docs",
			backends: []string{"notion", "slack"},
		},
		{
			name:     "flag after query text",
			text:     "auth bug tickets --linear",
			query:    "auth bug tickets",
			backends: []string{"linear"},
		},
		{
			name:     "github flag",
			text:     "--github billing PRs",
			query:    "billing PRs",
			backends: []string{"github"},
		},
		{
			name:     "case insensitive",
			text:     "--Slack --NOTION release notes",
			query:    "release notes",
			backends: []string{"slack", "notion"},
		},
		{
			name:     "duplicate flags deduped",
			text:     "--slack --slack api error",
			query:    "api error",
			backends: []string{"slack"},
		},
		{
			name:  "unknown flag left in query",
			text:  "--jira migration status",
			query: "--jira migration status",
		},
		{
			name:  "flag prefix of a longer word is not a flag",
			text:  "--slackbot deployment",
			query: "--slackbot deployment",
		},
		{
			name:     "whitespace collapsed",
			text:     "  --slack   api    error  ",
			query:    "api error",
			backends: []string{"slack"},
		},
		{
			name:     "flags only",
			text:     "--slack --notion",
			query:    "",
			backends: []string{"slack", "notion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseQuery(tt.text)
			assert.Equal(t, tt.query, parsed.Query)
			assert.Equal(t, tt.backends, parsed.Backends)
		})
	}
}

func TestStripMention(t *testing.T) {
	assert.Equal(t, "what broke the deploy?",
		StripMention("<@U0123ABCD> what broke the deploy?"))
	assert.Equal(t, "api error", StripMention("<@U0123ABCD>   api   error"))
	assert.Equal(t, "no mention here", StripMention("no mention here"))
	assert.Equal(t, "", StripMention("<@U0123ABCD>"))
}
