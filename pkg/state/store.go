package state

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gramframe/pkg/errors"
	"github.com/matzehuels/gramframe/pkg/observability"
)

// Listener receives a snapshot after every commit. The snapshot is a deep
// copy and may be retained or modified freely.
type Listener func(State)

// ListenerID identifies a registered listener for removal.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// Store owns the canonical state of one instance.
//
// Store is not safe for concurrent use; all calls for one instance are
// expected to come from a single event loop.
type Store struct {
	state     State
	listeners []listenerEntry
	nextID    ListenerID
	logger    *log.Logger
}

// NewStore creates a store holding initial. A nil logger uses log.Default().
func NewStore(initial State, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{state: initial.Clone(), logger: logger}
}

// State returns the canonical state for read access. Callers must not
// mutate it outside [Store.Commit].
func (s *Store) State() *State { return &s.state }

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State { return s.state.Clone() }

// AddListener registers fn and returns a handle for [Store.RemoveListener].
// Listeners run in registration order.
func (s *Store) AddListener(fn Listener) ListenerID {
	s.nextID++
	s.listeners = append(s.listeners, listenerEntry{id: s.nextID, fn: fn})
	return s.nextID
}

// RemoveListener unregisters the listener with the given handle.
// It reports whether a listener was removed.
func (s *Store) RemoveListener(id ListenerID) bool {
	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Listeners returns the number of registered listeners.
func (s *Store) Listeners() int { return len(s.listeners) }

// Clear removes every listener.
func (s *Store) Clear() { s.listeners = nil }

// Commit applies fn to the canonical state and broadcasts a snapshot to
// every listener. It returns the broadcast snapshot.
func (s *Store) Commit(fn func(*State)) State {
	if fn != nil {
		fn(&s.state)
	}
	return s.broadcast()
}

// ForceUpdate re-broadcasts the current state without mutating it.
func (s *Store) ForceUpdate() State {
	return s.broadcast()
}

func (s *Store) broadcast() State {
	start := time.Now()
	snap := s.state.Clone()

	// Copy the slice so listeners may add or remove listeners while running.
	entries := make([]listenerEntry, len(s.listeners))
	copy(entries, s.listeners)
	for _, l := range entries {
		// Each listener gets its own copy so one cannot corrupt the next.
		s.notify(l, snap.Clone())
	}

	observability.Store().OnCommit(s.state.InstanceID, len(entries), time.Since(start))
	return snap
}

func (s *Store) notify(l listenerEntry, snap State) {
	defer func() {
		if r := recover(); r != nil {
			err := &errors.ListenerError{ListenerID: uint64(l.id), Recovered: r}
			s.logger.Error("state listener failed",
				"instance", s.state.InstanceID,
				"listener", l.id,
				"err", fmt.Sprint(r))
			observability.Store().OnListenerFailure(s.state.InstanceID, err)
		}
	}()
	l.fn(snap)
}
