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


// Package backends provides the catalog of searchable knowledge backends and
// the query classification that selects a subset of them per search.
//
// A Backend couples an identifier with the tool names it exposes to a
// reasoning session and the trigger keywords used for relevance detection.
// The Registry is built once at startup and is read-only afterwards, so it
// is safe to share across concurrent searches.
//
// Classification is deterministic and order-preserving: given the same query,
// filter, and registry, Select always returns the same backends in registry
// order. Downstream tool allow-lists are therefore reproducible.
package backends
