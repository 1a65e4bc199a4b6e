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


package tools

import "errors"

var (
	// ErrDuplicateTool is returned when two tools in a set share a name.
	ErrDuplicateTool = errors.New("duplicate tool name")

	// ErrInvalidArguments is returned when a tool cannot parse the
	// model-provided JSON arguments.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrRequestFailed is returned when a backend API request fails after
	// all retry attempts.
	ErrRequestFailed = errors.New("backend request failed")
)
