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


package orchestrate

import "errors"

var (
	// ErrConcurrentSearch is returned when a conversation already has a
	// search in flight. The second request is rejected, not queued.
	ErrConcurrentSearch = errors.New("a search is already running in this conversation")

	// ErrNoResults is returned when every selected backend's tool calls
	// errored. Surfaced as "no results" rather than a raw failure.
	ErrNoResults = errors.New("no results from any backend")

	// ErrSearchTimeout is returned when the deadline passes while the
	// session is still streaming. Any partial result accumulated so far is
	// returned alongside it.
	ErrSearchTimeout = errors.New("search timed out")

	// ErrSearchFailed is returned when the reasoning session itself failed.
	ErrSearchFailed = errors.New("search failed")

	// ErrReduction is returned when the event stream ends without a
	// terminal event and cannot be reduced to a result.
	ErrReduction = errors.New("event stream could not be reduced")
)
