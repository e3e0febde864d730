// pkg/selection/store.go
package selection

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InvalidSlotError rejects a selection on a dimension the store was not
// built with. The store's state is unchanged when it is returned.
type InvalidSlotError struct {
	Slot string
}

func (e *InvalidSlotError) Error() string {
	return fmt.Sprintf("unknown selection slot %q", e.Slot)
}

// Store holds the cross-filter selections for one session: at most one
// selected value per named slot. A view publishes a selection here and every
// other view reads it on its next render, so every mutation is immediately
// visible to subsequent reads.
//
// Stores are created per session and never shared between sessions. They are
// passed explicitly to whatever renders views; nothing here is process-wide.
type Store struct {
	id    string
	slots []string

	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates an empty store for the given slot names. The slot set is
// open: callers declare whatever dimensions their views cross-filter on.
func NewStore(slots ...string) *Store {
	s := &Store{
		id:     uuid.New().String(),
		slots:  make([]string, len(slots)),
		values: make(map[string]string, len(slots)),
	}
	copy(s.slots, slots)
	return s
}

// ID returns the session-unique store identifier.
func (s *Store) ID() string {
	return s.id
}

// Slots returns the declared slot names in declaration order.
func (s *Store) Slots() []string {
	out := make([]string, len(s.slots))
	copy(out, s.slots)
	return out
}

func (s *Store) known(slot string) bool {
	for _, k := range s.slots {
		if k == slot {
			return true
		}
	}
	return false
}

// Set selects a value in a slot, overwriting any prior selection. It fails
// closed: an unknown slot leaves every selection untouched.
func (s *Store) Set(slot, value string) error {
	if !s.known(slot) {
		return &InvalidSlotError{Slot: slot}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[slot] = value
	return nil
}

// Clear removes a slot's selection. Clearing an already-empty slot is a
// no-op, not an error.
func (s *Store) Clear(slot string) error {
	if !s.known(slot) {
		return &InvalidSlotError{Slot: slot}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, slot)
	return nil
}

// Get returns the slot's selected value and whether one is set.
func (s *Store) Get(slot string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[slot]
	return v, ok
}

// ResetAll clears every slot atomically: a concurrent reader observes either
// the prior selections or none, never a partial reset.
func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string, len(s.slots))
}

// Snapshot returns a copy of the current selections.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
