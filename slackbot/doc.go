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


// Package slackbot is the Slack surface of unisearch.
//
// The bot connects over Socket Mode and answers two triggers: @mentions of
// the bot and the /search slash command. Either trigger posts a placeholder
// message immediately, runs the search on a worker pool, live-edits the
// placeholder with progress as backends are searched, and finally replaces
// it with the synthesized answer and its cited sources rendered as Block
// Kit.
//
// Query text may carry backend filter flags (--slack, --notion, --linear,
// --github) which restrict the search to the named backends. The bare word
// "recent" lists the latest searches from the history store.
package slackbot
