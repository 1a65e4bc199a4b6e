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


package config

import "github.com/poiesic/unisearch/backends"

// Registry builds the backend registry from the configured credentials.
// Backends without a credential are disabled, not removed, so selection
// and help output still know they exist.
func (c *Config) Registry() (*backends.Registry, error) {
	list := backends.DefaultBackends()
	for i := range list {
		switch list[i].Id {
		case backends.BackendSlack:
			list[i].Enabled = c.Slack.BotToken != ""
		case backends.BackendNotion:
			list[i].Enabled = c.Backends.Notion.APIKey != ""
		case backends.BackendLinear:
			list[i].Enabled = c.Backends.Linear.APIKey != ""
		case backends.BackendGithub:
			list[i].Enabled = c.Backends.Github.Token != ""
		}
		if kw, ok := c.Backends.Keywords[list[i].Id]; ok {
			list[i].Keywords = kw
		}
	}

	var opts []backends.Option
	if c.Backends.MaxFallback > 0 {
		opts = append(opts, backends.WithMaxFallback(c.Backends.MaxFallback))
	}
	return backends.NewRegistry(list, opts...)
}
