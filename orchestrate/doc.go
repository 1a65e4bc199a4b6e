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


// Package orchestrate runs one search request end to end.
//
// The Engine is the composition root: it classifies the query against the
// backend registry, launches a reasoning session restricted to the selected
// backends' tools, demultiplexes the session's event stream into a progress
// pipeline and a result reducer, and enforces the request deadline with
// cooperative cancellation. Partial results gathered before a timeout are
// returned alongside the timeout error rather than discarded.
//
// One run executes per request; runs for different conversations proceed
// concurrently. Overlapping runs for the same conversation are rejected,
// since a chat surface can only usefully show one progress stream at a time.
//
// # Usage
//
//	engine, err := orchestrate.NewEngine(registry, launcher,
//	    orchestrate.WithProgressSink(sink),
//	    orchestrate.WithHistory(store),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := engine.Run(ctx, request)
package orchestrate
