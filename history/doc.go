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


// Package history persists completed searches.
//
// Records are stored in BadgerDB under a time-ordered composite key, so the
// most recent searches can be listed with a single reverse prefix scan.
// Values are MUS-encoded through core.HistoryRecordMUS.
//
// # Usage
//
//	store, err := history.OpenStore("/var/lib/unisearch/history")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.Append(ctx, record)
//	recent, err := store.Recent(ctx, 10)
//
// Use OpenMemoryStore in tests; it keeps everything in memory.
//
// All store implementations are safe for concurrent use.
package history
