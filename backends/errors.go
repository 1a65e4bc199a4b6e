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


package backends

import "errors"

var (
	// ErrNoBackends is returned when a registry is constructed without backends.
	ErrNoBackends = errors.New("at least one backend required")

	// ErrEmptyBackendId is returned when a backend has no identifier.
	ErrEmptyBackendId = errors.New("backend id cannot be empty")

	// ErrDuplicateBackend is returned when two backends share an identifier.
	ErrDuplicateBackend = errors.New("duplicate backend id")

	// ErrInvalidMaxFallback is returned for a negative fallback cap.
	ErrInvalidMaxFallback = errors.New("max fallback must not be negative")
)
