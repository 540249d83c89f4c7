package feature

import (
	"sync"

	"github.com/dmitrymomot/photoshare/pkg/broadcast"
)

// State is an immutable copy of all switches.
type State struct {
	Advanced bool
	Version  uint64
}

// Flags holds the switches and notifies subscribers about changes.
type Flags struct {
	mu    sync.Mutex
	state State
	hub   *broadcast.Hub[State]
}

// New returns flags with every switch off.
func New() *Flags {
	return &Flags{hub: broadcast.NewHub[State]()}
}

// Advanced reports whether the advanced features switch is on.
func (f *Flags) Advanced() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Advanced
}

// State returns the current switches.
func (f *Flags) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetAdvanced sets the advanced switch. Subscribers are notified only when
// the value changes. It returns the resulting state.
func (f *Flags) SetAdvanced(on bool) State {
	f.mu.Lock()
	if f.state.Advanced == on {
		s := f.state
		f.mu.Unlock()
		return s
	}
	f.state.Advanced = on
	f.state.Version++
	s := f.state
	f.mu.Unlock()

	f.hub.Publish(s.Version, s)
	return s
}

// ToggleAdvanced flips the advanced switch and returns the resulting state.
func (f *Flags) ToggleAdvanced() State {
	f.mu.Lock()
	f.state.Advanced = !f.state.Advanced
	f.state.Version++
	s := f.state
	f.mu.Unlock()

	f.hub.Publish(s.Version, s)
	return s
}

// Subscribe registers fn for state changes.
func (f *Flags) Subscribe(fn func(State)) (unsubscribe func()) {
	return f.hub.Subscribe(fn)
}
