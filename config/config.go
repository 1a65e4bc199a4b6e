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


// Package config loads the unisearch configuration from a YAML file and
// the environment. Credentials are read from the environment when not set
// in the file, so config files can be committed without secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	Slack    SlackConfig    `yaml:"slack"`
	Session  SessionConfig  `yaml:"session"`
	Backends BackendsConfig `yaml:"backends"`
	Search   SearchConfig   `yaml:"search"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SlackConfig holds the Slack workspace connection settings.
type SlackConfig struct {
	// BotToken is the xoxb bot token. Env: SLACK_BOT_TOKEN.
	BotToken string `yaml:"bot_token"`

	// AppToken is the xapp app-level token for Socket Mode. Env: SLACK_APP_TOKEN.
	AppToken string `yaml:"app_token"`

	// PoolSize is the number of searches served concurrently.
	PoolSize int `yaml:"pool_size"`
}

// SessionConfig holds the reasoning model connection settings.
type SessionConfig struct {
	// Host is the base URL of the OpenAI-compatible API.
	Host string `yaml:"host"`

	// Model is the model identifier used for search sessions.
	Model string `yaml:"model"`

	// Token is the API token. Env: UNISEARCH_SESSION_TOKEN.
	Token string `yaml:"token"`

	// MaxTurns caps the tool-calling turns per session.
	MaxTurns int `yaml:"max_turns"`
}

// BackendsConfig holds per-backend credentials and routing overrides.
// A backend with no credential is disabled rather than failing at runtime.
type BackendsConfig struct {
	Notion NotionConfig `yaml:"notion"`
	Linear LinearConfig `yaml:"linear"`
	Github GithubConfig `yaml:"github"`

	// Keywords overrides the trigger keywords per backend id.
	Keywords map[string][]string `yaml:"keywords"`

	// MaxFallback caps how many backends a no-signal query fans out to.
	// Zero means all enabled backends.
	MaxFallback int `yaml:"max_fallback"`
}

// NotionConfig holds the Notion integration settings.
type NotionConfig struct {
	// APIKey is the internal integration secret. Env: NOTION_API_KEY.
	APIKey string `yaml:"api_key"`
}

// LinearConfig holds the Linear integration settings.
type LinearConfig struct {
	// APIKey is the personal or OAuth API key. Env: LINEAR_API_KEY.
	APIKey string `yaml:"api_key"`
}

// GithubConfig holds the GitHub integration settings.
type GithubConfig struct {
	// Token is the personal access token. Env: GITHUB_TOKEN.
	Token string `yaml:"token"`

	// Org scopes issue and code searches to one organization.
	Org string `yaml:"org"`
}

// SearchConfig holds orchestration settings.
type SearchConfig struct {
	// TimeoutSeconds bounds one end-to-end search.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// CoalesceMillis is the minimum gap between progress edits.
	CoalesceMillis int `yaml:"coalesce_ms"`

	// Scope is an optional search scope hint passed to every session,
	// e.g. a GitHub organization or a product area.
	Scope string `yaml:"scope"`
}

// HistoryConfig holds the search history settings.
type HistoryConfig struct {
	// Path is the BadgerDB directory. Empty disables history.
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// Default returns a Config with defaults suitable for a local model and
// no backend credentials.
func Default() *Config {
	return &Config{
		Slack: SlackConfig{
			PoolSize: 8,
		},
		Session: SessionConfig{
			Host:     "http://localhost:11434/v1",
			Model:    "qwen2.5:14b",
			Token:    "none",
			MaxTurns: 15,
		},
		Search: SearchConfig{
			TimeoutSeconds: 120,
			CoalesceMillis: 1500,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path, fills defaults, and applies
// environment overrides. An empty path skips the file and uses defaults
// plus the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills credentials from the environment. File values win so a
// config file can pin a credential explicitly.
func (c *Config) applyEnv() {
	setIfEmpty(&c.Slack.BotToken, "SLACK_BOT_TOKEN")
	setIfEmpty(&c.Slack.AppToken, "SLACK_APP_TOKEN")
	setIfEmpty(&c.Session.Token, "UNISEARCH_SESSION_TOKEN")
	setIfEmpty(&c.Backends.Notion.APIKey, "NOTION_API_KEY")
	setIfEmpty(&c.Backends.Linear.APIKey, "LINEAR_API_KEY")
	setIfEmpty(&c.Backends.Github.Token, "GITHUB_TOKEN")
}

func setIfEmpty(dst *string, env string) {
	if *dst == "" {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

// Validate checks that the configuration is complete enough to run.
// Slack tokens are not checked here; only the serve command needs them.
func (c *Config) Validate() error {
	if c.Session.Host == "" {
		return fmt.Errorf("config: session host is required")
	}
	if c.Session.Model == "" {
		return fmt.Errorf("config: session model is required")
	}
	if c.Session.MaxTurns < 1 {
		return fmt.Errorf("config: session max_turns must be at least 1")
	}
	if c.Slack.PoolSize < 1 {
		return fmt.Errorf("config: slack pool_size must be at least 1")
	}
	if c.Search.TimeoutSeconds < 1 {
		return fmt.Errorf("config: search timeout_seconds must be at least 1")
	}
	if c.Search.CoalesceMillis < 0 {
		return fmt.Errorf("config: search coalesce_ms cannot be negative")
	}
	if c.Backends.MaxFallback < 0 {
		return fmt.Errorf("config: backends max_fallback cannot be negative")
	}
	return nil
}

// Timeout returns the search timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// CoalesceInterval returns the progress edit gap as a duration.
func (c *Config) CoalesceInterval() time.Duration {
	return time.Duration(c.Search.CoalesceMillis) * time.Millisecond
}
