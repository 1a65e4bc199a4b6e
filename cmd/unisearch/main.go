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
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/poiesic/unisearch/config"
	"github.com/poiesic/unisearch/core"
	"github.com/poiesic/unisearch/history"
	"github.com/poiesic/unisearch/slackbot"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "unisearch",
		Usage: "Workspace search bot that answers questions from Slack, Notion, Linear and GitHub",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Connect to Slack and answer search requests",
				Action: serveCommand,
			},
			{
				Name:      "search",
				Usage:     "Run one search from the command line",
				ArgsUsage: "<query, optionally with --slack/--notion/--linear/--github flags>",
				Action:    searchCommand,
			},
			{
				Name:   "recent",
				Usage:  "List the most recent searches",
				Action: recentCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of searches to list",
						Value: 10,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if cfg.Slack.BotToken == "" {
		return fmt.Errorf("slack bot token is required: set slack.bot_token or SLACK_BOT_TOKEN")
	}
	if cfg.Slack.AppToken == "" {
		return fmt.Errorf("slack app token is required: set slack.app_token or SLACK_APP_TOKEN")
	}

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	botOpts := []slackbot.Option{
		slackbot.WithPoolSize(cfg.Slack.PoolSize),
		slackbot.WithScope(cfg.Search.Scope),
	}
	if deps.history != nil {
		botOpts = append(botOpts, slackbot.WithHistory(deps.history))
	}
	bot, err := slackbot.New(cfg.Slack.BotToken, cfg.Slack.AppToken, deps.engine, botOpts...)
	if err != nil {
		return err
	}
	defer bot.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting unisearch", "model", cfg.Session.Model)
	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("slack connection failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("a query is required")
	}
	parsed := slackbot.ParseQuery(text)
	if parsed.Query == "" {
		return fmt.Errorf("a query is required after the filter flags")
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := searchRequest(parsed, cfg.Search.Scope)
	result, runErr := deps.engine.RunWithProgress(ctx, req, &terminalProgressSink{out: os.Stderr})
	if runErr != nil && result == nil {
		return runErr
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n\n", runErr)
	}

	printResult(os.Stdout, result)
	return nil
}

func recentCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("history is not configured: set history.path")
	}

	store, err := history.OpenStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(context.Background(), c.Int("limit"))
	if err != nil {
		return err
	}
	printRecent(os.Stdout, records)
	return nil
}

// searchRequest builds a one-shot request for the CLI. The conversation key
// is unique per invocation; concurrent CLI runs never conflict.
func searchRequest(parsed slackbot.ParsedQuery, scope string) core.SearchRequest {
	id := uuid.NewString()
	return core.SearchRequest{
		Id:              id,
		Query:           parsed.Query,
		BackendFilter:   parsed.Backends,
		Scope:           scope,
		ConversationKey: "cli:" + id,
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
