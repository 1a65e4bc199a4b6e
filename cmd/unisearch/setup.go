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


package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/unisearch/config"
	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/history"
	"github.com/poiesic/unisearch/orchestrate"
	"github.com/poiesic/unisearch/session"
	"github.com/poiesic/unisearch/session/openai"
	"github.com/poiesic/unisearch/tools"
	"github.com/slack-go/slack"
)

// deps bundles the wired search stack shared by the serve and search
// commands.
type deps struct {
	engine  *orchestrate.Engine
	history history.Store
}

func (d *deps) close() {
	if d.history != nil {
		if err := d.history.Close(); err != nil {
			slog.Warn("failed to close history store", "err", err)
		}
	}
}

// buildDeps wires the registry, tools, launcher and engine from config.
func buildDeps(cfg *config.Config) (*deps, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to build backend registry: %w", err)
	}

	toolset, err := buildTools(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build tools: %w", err)
	}

	sessionCfg := session.NewConfig(
		session.WithHost(cfg.Session.Host),
		session.WithModel(cfg.Session.Model),
		session.WithToken(cfg.Session.Token),
		session.WithMaxTurns(cfg.Session.MaxTurns),
	)
	launcher, err := openai.NewLauncher(sessionCfg, toolset)
	if err != nil {
		return nil, fmt.Errorf("failed to create session launcher: %w", err)
	}

	engineOpts := []orchestrate.Option{
		orchestrate.WithTimeout(cfg.Timeout()),
	}
	if interval := cfg.CoalesceInterval(); interval > 0 {
		engineOpts = append(engineOpts, orchestrate.WithCoalesceInterval(interval))
	}

	var store history.Store
	if cfg.History.Path != "" {
		store, err = history.OpenStore(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		engineOpts = append(engineOpts, orchestrate.WithHistory(store))
	}

	engine, err := orchestrate.NewEngine(registry, launcher, engineOpts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	return &deps{engine: engine, history: store}, nil
}

// buildTools creates one search tool per configured credential. The tool
// set may legitimately be empty; the model then answers without searching.
func buildTools(cfg *config.Config) (*tools.Set, error) {
	var list []session.Tool

	if cfg.Slack.BotToken != "" {
		client := slack.New(cfg.Slack.BotToken)
		list = append(list, tools.NewSlackSearch(client))
	}
	if key := cfg.Backends.Notion.APIKey; key != "" {
		list = append(list, tools.NewNotionSearch(key))
	}
	if key := cfg.Backends.Linear.APIKey; key != "" {
		list = append(list, tools.NewLinearSearch(key))
	}
	if token := cfg.Backends.Github.Token; token != "" {
		var opts []tools.GithubOption
		if cfg.Backends.Github.Org != "" {
			opts = append(opts, tools.WithGithubOrg(cfg.Backends.Github.Org))
		}
		client := tools.NewGithubClient(token, opts...)
		list = append(list, client.IssueSearch(), client.CodeSearch())
	}

	return tools.NewSet(list...)
}

// terminalProgressSink prints progress transitions to the terminal.
type terminalProgressSink struct {
	out       io.Writer
	lastPhase core.Phase
	lastDone  int
}

func (s *terminalProgressSink) Publish(_ context.Context, update core.ProgressUpdate) {
	switch update.Phase {
	case core.PhaseStarted:
		if s.lastPhase != core.PhaseStarted {
			fmt.Fprintln(s.out, "analyzing the question...")
		}
	case core.PhaseSearching:
		if update.Backend != "" {
			fmt.Fprintf(s.out, "searching %s...\n", update.Backend)
		}
	case core.PhaseSynthesizing:
		if s.lastPhase != core.PhaseSynthesizing {
			fmt.Fprintln(s.out, "consolidating results...")
		}
	case core.PhaseError:
		if update.Detail != "" {
			fmt.Fprintf(s.out, "search failed: %s\n", update.Detail)
		}
	}
	s.lastPhase = update.Phase
	s.lastDone = len(update.CompletedBackends)
}

func printResult(out io.Writer, result *core.SearchResult) {
	fmt.Fprintln(out, result.Answer)

	if len(result.Sources) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Sources:")
		for _, src := range result.Sources {
			title := src.Title
			if title == "" {
				title = src.URL
			}
			fmt.Fprintf(out, "  [%s] %s\n        %s\n", src.Backend, title, src.URL)
		}
	}

	fmt.Fprintf(out, "\nelapsed: %s", result.Elapsed.Round(time.Millisecond))
	if len(result.FailedBackends) > 0 {
		fmt.Fprintf(out, "  (no answer from: %v)", result.FailedBackends)
	}
	fmt.Fprintln(out)
}

func printRecent(out io.Writer, records []core.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "no searches recorded yet")
		return
	}
	for _, r := range records {
		status := "ok"
		if r.Partial {
			status = "partial"
		}
		fmt.Fprintf(out, "%s  %-7s  %6s  %d sources  %s\n",
			r.CreatedAt.Format(time.RFC3339), status,
			r.Elapsed.Round(time.Millisecond), r.SourceCount, r.Query)
	}
}
