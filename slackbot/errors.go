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


package slackbot

import "errors"

var (
	// ErrBotTokenRequired is returned when the xoxb bot token is missing.
	ErrBotTokenRequired = errors.New("slack bot token is required")

	// ErrAppTokenRequired is returned when the xapp app-level token needed
	// for Socket Mode is missing.
	ErrAppTokenRequired = errors.New("slack app token is required for socket mode")

	// ErrRunnerRequired is returned when no search runner is provided.
	ErrRunnerRequired = errors.New("search runner is required")
)
