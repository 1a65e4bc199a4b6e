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


// Package tools implements the per-backend search capabilities exposed to
// reasoning sessions.
//
// Each tool wraps one backend's search API (Slack message search, Notion
// page search, Linear issue search, GitHub code and issue search) behind the
// session.Tool interface. Tools return both a textual payload for the model
// and structured source references for citation.
//
// Tools are only ever invoked through a session's tool-calling round; nothing
// in this module calls them directly. A Set groups tools by name so a
// launcher can restrict a session to an allow-list.
package tools
