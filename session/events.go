package session

import (
	"time"

	"github.com/poiesic/unisearch/core"
)

// Event is one occurrence in a reasoning session's life. Events are produced
// in order by the session and consumed exactly once by a single reader.
//
// The concrete types are TextDelta, ToolUseRequested, ToolResultReceived,
// Completed and Failed.
type Event interface {
	sessionEvent()
}

// TextDelta carries a chunk of streamed answer text.
type TextDelta struct {
	Text string
}

// ToolUseRequested records that the session decided to invoke a tool.
type ToolUseRequested struct {
	Tool      string // Tool name from the allow-list
	Backend   string // Identifier of the backend that owns the tool
	StartedAt time.Time
}

// ToolResultReceived records the outcome of one tool invocation.
// A failed call carries Err and no sources; a successful call may carry
// linkable sources extracted from the tool's payload.
type ToolResultReceived struct {
	Tool    string
	Backend string
	Elapsed time.Duration
	Sources []core.SourceRef
	Err     string // Non-empty when the tool call failed
}

// Completed is terminal: the session produced its final answer.
// FinalText is authoritative and replaces any accumulated deltas.
type Completed struct {
	FinalText string
}

// Failed is terminal: the session could not produce an answer.
type Failed struct {
	Cause error
}

func (TextDelta) sessionEvent()          {}
func (ToolUseRequested) sessionEvent()   {}
func (ToolResultReceived) sessionEvent() {}
func (Completed) sessionEvent()          {}
func (Failed) sessionEvent()             {}
