package visibility

import (
	"context"
	"sync"
)

type Event string

const (
	Shown  Event = "shown"
	Hidden Event = "hidden"
)

// Source delivers the host's activation signal. Events are edge-free: sending Shown
// twice is allowed and the consumer treats the second one as a no-op.
type Source interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

// AlwaysVisible reports Shown once on Start and never hides.
type AlwaysVisible struct{ ch chan Event }

func NewAlwaysVisible() *AlwaysVisible { return &AlwaysVisible{ch: make(chan Event, 1)} }

func (a *AlwaysVisible) Start(ctx context.Context) error {
	a.ch <- Shown
	return nil
}
func (a *AlwaysVisible) Stop() error          { return nil }
func (a *AlwaysVisible) Events() <-chan Event { return a.ch }

// Switch is driven by code: the HTTP API, terminal keys or device keys.
type Switch struct {
	mu      sync.Mutex
	visible bool
	ch      chan Event
}

func NewSwitch() *Switch { return &Switch{ch: make(chan Event, 8)} }

func (s *Switch) Start(ctx context.Context) error { return nil }
func (s *Switch) Stop() error                     { return nil }
func (s *Switch) Events() <-chan Event            { return s.ch }

// Visible reports the last state set.
func (s *Switch) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Set records the new state and emits the matching event.
func (s *Switch) Set(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
	s.emitLocked()
}

// Toggle flips the state and returns the new one.
func (s *Switch) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = !s.visible
	s.emitLocked()
	return s.visible
}

// emitLocked never blocks; a full channel means nobody is consuming anymore.
func (s *Switch) emitLocked() {
	ev := Hidden
	if s.visible {
		ev = Shown
	}
	select {
	case s.ch <- ev:
	default:
	}
}
