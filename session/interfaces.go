package session

import (
	"context"

	"github.com/poiesic/unisearch/backends"
	"github.com/poiesic/unisearch/core"
)

// LaunchRequest scopes one reasoning session.
type LaunchRequest struct {
	Query    string             // The user's natural-language query
	Scope    string             // Optional scope hint passed to the session
	Backends []backends.Backend // Selected backends, in registry order
}

// AllowedTools returns the tool allow-list for the request: the concatenation
// of each selected backend's tool names, in backend order.
func (r LaunchRequest) AllowedTools() []string {
	var tools []string
	for _, b := range r.Backends {
		tools = append(tools, b.Tools...)
	}
	return tools
}

// Launcher starts reasoning sessions.
// Implementations must be safe for concurrent use; each Launch call produces
// an independent session.
type Launcher interface {
	// Launch starts one session restricted to the request's tool allow-list.
	// The session runs until it completes, fails, is cancelled, or ctx ends.
	// Returns ErrLaunch (wrapped) if the underlying service cannot be started.
	Launch(ctx context.Context, req LaunchRequest) (Handle, error)
}

// Handle is a running session.
type Handle interface {
	// Events returns the session's event channel. The channel is closed after
	// a terminal event (Completed or Failed) or after cancellation. It must be
	// consumed by a single reader.
	Events() <-chan Event

	// Cancel requests the session to stop. Cancellation is cooperative:
	// already-buffered events remain readable until the channel closes.
	// Cancel is idempotent.
	Cancel()
}

// Tool is one callable capability a backend exposes to a session.
// Implementations must be safe for concurrent use.
type Tool interface {
	// Name returns the tool's unique name, as listed in a backend's catalog entry.
	Name() string

	// Description returns the natural-language description shown to the model.
	Description() string

	// Parameters returns the JSON-schema object describing the tool's arguments.
	Parameters() map[string]any

	// Call invokes the tool with the model-provided JSON arguments.
	Call(ctx context.Context, arguments string) (ToolOutput, error)
}

// ToolOutput is the payload a tool returns to the session.
type ToolOutput struct {
	Content string           // Text handed back to the model
	Sources []core.SourceRef // Linkable items found, if the backend returns any
}
