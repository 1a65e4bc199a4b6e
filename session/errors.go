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


package session

import "errors"

var (
	// ErrLaunch is returned when the underlying reasoning service cannot be
	// started. Fatal for the request, not for the process.
	ErrLaunch = errors.New("session launch failed")

	// ErrNoBackendsSelected is returned when a launch request carries no
	// backends. A session must never run with an empty tool allow-list.
	ErrNoBackendsSelected = errors.New("launch request has no backends")

	// ErrMaxTurnsExceeded is reported as a session failure cause when the
	// model keeps requesting tools past the configured turn cap.
	ErrMaxTurnsExceeded = errors.New("session exceeded max turns")

	// ErrUnknownTool is reported when the model requests a tool outside the
	// allow-list. Treated as a tool failure, not a session failure.
	ErrUnknownTool = errors.New("unknown tool requested")
)
