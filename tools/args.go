package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

const defaultResultLimit = 5

// searchArgs is the argument shape shared by every search tool.
type searchArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// parseSearchArgs decodes the model-provided JSON arguments and applies the
// default result limit.
func parseSearchArgs(arguments string) (searchArgs, error) {
	var args searchArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return searchArgs{}, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return searchArgs{}, fmt.Errorf("%w: query is required", ErrInvalidArguments)
	}
	if args.Limit <= 0 || args.Limit > 25 {
		args.Limit = defaultResultLimit
	}
	return args, nil
}

// searchParameters is the JSON-schema describing searchArgs, shared by every
// search tool's Parameters implementation.
func searchParameters(queryDescription string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": queryDescription,
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of results to return (default 5, max 25)",
			},
		},
		"required": []string{"query"},
	}
}

// snippet trims s to at most n runes, appending an ellipsis when truncated.
func snippet(s string, n int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
