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


// Package openai runs reasoning sessions against OpenAI-compatible chat APIs.
//
// This package implements the session.Launcher interface using the
// langchaingo library to communicate with OpenAI or OpenAI-compatible
// services (such as Ollama, LocalAI, or vLLM). Each launched session runs an
// agent loop: the model is offered the tool allow-list for the request,
// tool calls are executed locally, and their results are fed back until the
// model produces a final answer or the turn cap is reached.
//
// # Usage
//
//	config := session.NewConfig(
//	    session.WithHost("http://localhost:11434"),
//	    session.WithModel("qwen2.5:14b"),
//	)
//
//	launcher, err := openai.NewLauncher(config, toolSet)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	handle, err := launcher.Launch(ctx, req)
//	for event := range handle.Events() {
//	    // consume session events
//	}
package openai
