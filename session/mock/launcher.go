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


package mock

import (
	"context"
	"sync"

	"github.com/poiesic/unisearch/session"
)

// MockLauncher is a test double for session.Launcher.
// It allows custom behavior injection via function fields.
type MockLauncher struct {
	// LaunchFunc is called by Launch if set.
	// If nil, Launch replays Script through a MockHandle.
	LaunchFunc func(ctx context.Context, req session.LaunchRequest) (session.Handle, error)

	// Script is the event sequence replayed by the default behavior.
	// If empty, the session completes immediately with a fixed answer.
	Script []session.Event

	mu          sync.Mutex
	launchCount int
	lastRequest session.LaunchRequest
}

// NewMockLauncher creates a mock launcher with default behavior.
func NewMockLauncher(script ...session.Event) *MockLauncher {
	return &MockLauncher{Script: script}
}

// Launch replays the scripted events, or delegates to LaunchFunc if set.
func (m *MockLauncher) Launch(ctx context.Context, req session.LaunchRequest) (session.Handle, error) {
	m.mu.Lock()
	m.launchCount++
	m.lastRequest = req
	m.mu.Unlock()

	if m.LaunchFunc != nil {
		return m.LaunchFunc(ctx, req)
	}

	script := m.Script
	if len(script) == 0 {
		script = []session.Event{session.Completed{FinalText: "mock answer"}}
	}
	return NewMockHandle(script...), nil
}

// LaunchCount returns how many times Launch was called.
func (m *MockLauncher) LaunchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.launchCount
}

// LastRequest returns the most recent launch request, for test assertions.
func (m *MockLauncher) LastRequest() session.LaunchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// MockHandle is a test double for session.Handle.
type MockHandle struct {
	events     chan session.Event
	hang       bool
	cancelOnce sync.Once

	mu          sync.Mutex
	cancelCount int
}

// NewMockHandle creates a handle whose event channel delivers the given
// events and then closes.
func NewMockHandle(events ...session.Event) *MockHandle {
	h := &MockHandle{events: make(chan session.Event, len(events))}
	for _, ev := range events {
		h.events <- ev
	}
	close(h.events)
	return h
}

// NewHangingHandle creates a handle that delivers the given events and then
// stays open until cancelled. Used to test timeout and cancellation paths.
func NewHangingHandle(events ...session.Event) *MockHandle {
	h := &MockHandle{
		events: make(chan session.Event, len(events)),
		hang:   true,
	}
	for _, ev := range events {
		h.events <- ev
	}
	return h
}

// Events returns the scripted event channel.
func (h *MockHandle) Events() <-chan session.Event {
	return h.events
}

// Cancel closes a hanging handle's channel. Idempotent.
func (h *MockHandle) Cancel() {
	h.mu.Lock()
	h.cancelCount++
	h.mu.Unlock()

	if h.hang {
		h.cancelOnce.Do(func() { close(h.events) })
	}
}

// CancelCount returns how many times Cancel was called.
func (h *MockHandle) CancelCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelCount
}
