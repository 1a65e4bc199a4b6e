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


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateSearchRequest validates a SearchRequest according to domain rules.
//
// Validation rules:
//   - Query must not be empty or all whitespace
//   - ConversationKey must not be empty
//
// NOT validated:
//   - BackendFilter (unknown identifiers are ignored by classification)
//   - Deadline (a zero deadline means the engine applies its default timeout)
//   - Scope (optional)
func ValidateSearchRequest(request *SearchRequest) error {
	if request == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidSearchRequest)
	}

	if strings.TrimSpace(request.Query) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSearchRequest, ErrEmptyQuery)
	}

	if request.ConversationKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSearchRequest, ErrEmptyConversationKey)
	}

	return nil
}

// ValidateHistoryRecord validates a HistoryRecord according to domain rules.
//
// Validation rules:
//   - Query must not be empty
//   - CreatedAt must not be in the future
func ValidateHistoryRecord(record *HistoryRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidHistoryRecord)
	}

	if record.Query == "" {
		return fmt.Errorf("%w: %w", ErrInvalidHistoryRecord, ErrEmptyQuery)
	}

	if !IsValidTimestamp(record.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidHistoryRecord, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
