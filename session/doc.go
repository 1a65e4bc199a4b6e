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


// Package session provides abstractions for the AI reasoning sessions that
// drive a search.
//
// A session is one run of a reasoning/tool-calling service scoped to a
// restricted tool allow-list. The service decides which tools to call; this
// package only defines the contract: a Launcher starts a session and returns
// a Handle whose event channel carries the session's life as a sequence of
// Event values (text deltas, tool rounds, completion or failure).
//
// The event channel has a single producer (the session) and is intended for a
// single consumer. Fan-out to multiple consumers is the caller's concern; see
// the orchestrate package.
//
// # Implementation Packages
//
//   - session/openai: production implementation using OpenAI-compatible
//     chat-completion APIs with tool calling
//   - session/mock: scripted test double that replays a fixed event sequence
//
// Public constructors return the Launcher interface to prevent coupling to a
// concrete implementation; mock constructors return concrete types so tests
// can inject behavior and assert on call counts.
package session
