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


package openai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/unisearch/session"
	"github.com/poiesic/unisearch/tools"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const eventBufferSize = 64

// Launcher implements session.Launcher against an OpenAI-compatible chat API.
type Launcher struct {
	client llms.Model
	config *session.Config
	tools  *tools.Set
	logger *slog.Logger
}

// newLauncher is an internal constructor that returns the concrete type.
func newLauncher(config *session.Config, set *tools.Set) (*Launcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("tool set cannot be nil")
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication.
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Launcher{
		client: client,
		config: config,
		tools:  set,
		logger: slog.Default().With("component", "openai-launcher"),
	}, nil
}

// NewLauncher creates a launcher using the provided configuration and tool set.
//
// Returns session.Launcher interface to enforce abstraction.
func NewLauncher(config *session.Config, set *tools.Set) (session.Launcher, error) {
	return newLauncher(config, set)
}

// NewLauncherWithModel creates a launcher backed by an existing model client.
// Used in tests to inject a fake model.
func NewLauncherWithModel(config *session.Config, set *tools.Set, model llms.Model) (session.Launcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("tool set cannot be nil")
	}
	return &Launcher{
		client: model,
		config: config,
		tools:  set,
		logger: slog.Default().With("component", "openai-launcher"),
	}, nil
}

// Launch starts one agent session restricted to the request's tool allow-list.
func (l *Launcher) Launch(ctx context.Context, req session.LaunchRequest) (session.Handle, error) {
	if len(req.Backends) == 0 {
		return nil, fmt.Errorf("%w: %w", session.ErrLaunch, session.ErrNoBackendsSelected)
	}

	allowed := l.tools.Filter(req.AllowedTools())
	if allowed.Len() == 0 {
		return nil, fmt.Errorf("%w: no tools available for selected backends", session.ErrLaunch)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	h := &handle{
		events: make(chan session.Event, eventBufferSize),
		cancel: cancel,
	}

	go l.run(sessionCtx, req, allowed, h)
	return h, nil
}

// run drives the agent loop until a terminal event or cancellation.
func (l *Launcher) run(ctx context.Context, req session.LaunchRequest, allowed *tools.Set, h *handle) {
	defer close(h.events)

	backendByTool := make(map[string]string)
	for _, b := range req.Backends {
		for _, name := range b.Tools {
			backendByTool[name] = b.Id
		}
	}

	var llmTools []llms.Tool
	for _, name := range allowed.Names() {
		tool, _ := allowed.Get(name)
		llmTools = append(llmTools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				Parameters:  tool.Parameters(),
			},
		})
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt(req.Scope))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(req.Query)},
		},
	}

	stream := func(_ context.Context, chunk []byte) error {
		if len(chunk) == 0 {
			return nil
		}
		if !h.emit(ctx, session.TextDelta{Text: string(chunk)}) {
			return ctx.Err()
		}
		return nil
	}

	for turn := 0; turn < l.config.MaxTurns; turn++ {
		if ctx.Err() != nil {
			return
		}

		resp, err := l.client.GenerateContent(ctx, messages,
			llms.WithTools(llmTools),
			llms.WithStreamingFunc(stream),
		)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Error("model call failed", "turn", turn+1, "err", err)
			h.emit(ctx, session.Failed{Cause: err})
			return
		}
		if len(resp.Choices) == 0 {
			h.emit(ctx, session.Failed{Cause: fmt.Errorf("model returned no choices")})
			return
		}

		choice := resp.Choices[0]
		if len(choice.ToolCalls) == 0 {
			h.emit(ctx, session.Completed{FinalText: choice.Content})
			return
		}

		assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if choice.Content != "" {
			assistant.Parts = append(assistant.Parts, llms.TextPart(choice.Content))
		}
		for _, tc := range choice.ToolCalls {
			assistant.Parts = append(assistant.Parts, tc)
		}
		messages = append(messages, assistant)

		for _, tc := range choice.ToolCalls {
			content := l.callTool(ctx, allowed, backendByTool, tc, h)
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       tc.FunctionCall.Name,
					Content:    content,
				}},
			})
		}
	}

	h.emit(ctx, session.Failed{Cause: session.ErrMaxTurnsExceeded})
}

// callTool executes one tool call, emitting the request and result events,
// and returns the content to hand back to the model.
func (l *Launcher) callTool(ctx context.Context, allowed *tools.Set, backendByTool map[string]string, tc llms.ToolCall, h *handle) string {
	name := tc.FunctionCall.Name
	backend := backendByTool[name]
	started := time.Now()

	h.emit(ctx, session.ToolUseRequested{
		Tool:      name,
		Backend:   backend,
		StartedAt: started,
	})

	tool, ok := allowed.Get(name)
	if !ok {
		// The model asked for something outside the allow-list.
		err := fmt.Errorf("%w: %s", session.ErrUnknownTool, name)
		l.logger.Warn("model requested unknown tool", "tool", name)
		h.emit(ctx, session.ToolResultReceived{
			Tool:    name,
			Backend: backend,
			Elapsed: time.Since(started),
			Err:     err.Error(),
		})
		return "Error: " + err.Error()
	}

	out, err := tool.Call(ctx, tc.FunctionCall.Arguments)
	result := session.ToolResultReceived{
		Tool:    name,
		Backend: backend,
		Elapsed: time.Since(started),
	}
	if err != nil {
		l.logger.Warn("tool call failed", "tool", name, "err", err)
		result.Err = err.Error()
		h.emit(ctx, result)
		return "Error: the search failed: " + err.Error()
	}

	result.Sources = out.Sources
	h.emit(ctx, result)
	return out.Content
}

// handle implements session.Handle for launched sessions.
type handle struct {
	events     chan session.Event
	cancel     context.CancelFunc
	cancelOnce sync.Once
}

func (h *handle) Events() <-chan session.Event {
	return h.events
}

func (h *handle) Cancel() {
	h.cancelOnce.Do(h.cancel)
}

// emit delivers an event unless the session is cancelled. Returns false when
// the context ended before the event could be delivered.
func (h *handle) emit(ctx context.Context, ev session.Event) bool {
	select {
	case h.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
