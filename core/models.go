package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SearchRequest describes one search triggered by one user message.
// It lives for the duration of a single orchestration run.
type SearchRequest struct {
	Id              string    // Unique request identifier (UUID)
	Query           string    // Natural-language query text
	BackendFilter   []string  // Explicit backend identifiers; empty means no filter
	Scope           string    // Optional scope restriction (e.g. organization name)
	ConversationKey string    // Opaque key used for per-conversation mutual exclusion
	Deadline        time.Time // Absolute deadline for the whole run
}

// SourceRef is a citation attached to a synthesized answer.
type SourceRef struct {
	Backend string // Backend identifier the item came from
	Title   string
	URL     string
}

// SearchResult is the final outcome of one orchestration run.
type SearchResult struct {
	Answer         string
	Sources        []SourceRef
	Elapsed        time.Duration
	Partial        bool     // True when some selected backends failed but others answered
	FailedBackends []string // Identifiers of backends whose tool calls all errored
}

// Phase identifies where a running search currently is.
type Phase int

const (
	// PhaseStarted means the session is launching or the model is still planning.
	PhaseStarted Phase = iota + 1
	// PhaseSearching means a backend tool is being invoked.
	PhaseSearching
	// PhaseSynthesizing means tool calls are done and the answer is being composed.
	PhaseSynthesizing
	// PhaseDone means the run finished with a result.
	PhaseDone
	// PhaseError means the run finished with an error.
	PhaseError
)

// String returns the lowercase name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseStarted:
		return "started"
	case PhaseSearching:
		return "searching"
	case PhaseSynthesizing:
		return "synthesizing"
	case PhaseDone:
		return "done"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// ProgressUpdate is a rendering-agnostic snapshot of a running search.
// Updates are coalesced; consumers see phase changes, not raw session events.
type ProgressUpdate struct {
	Phase             Phase
	Backend           string   // Backend being searched when Phase is PhaseSearching
	CompletedBackends []string // Backends already searched, in completion order
	Elapsed           time.Duration
	Detail            string // Optional human-readable detail
}

// HistoryRecord is one completed search remembered in the history store.
type HistoryRecord struct {
	Id          ID
	Query       string
	Backends    []string // Backend identifiers the run searched
	Elapsed     time.Duration
	Partial     bool
	SourceCount int
	CreatedAt   time.Time
}
