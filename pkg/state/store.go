package state

import (
	"sync"
)

// Store owns the current State. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state State

	subsMu sync.Mutex
	subs   map[int]chan State
	nextID int
}

// NewStore returns a store with an empty state. A pushed round more than
// threshold rounds ahead of the fetched data marks the state out of sync.
func NewStore(threshold uint64) *Store {
	return &Store{
		state: State{OutOfSyncThreshold: threshold},
		subs:  make(map[int]chan State),
	}
}

// Dispatch applies a to the current state and notifies subscribers. It
// returns the new state. Subscribers are notified in dispatch order.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Reduce(s.state, a)
	s.state = next
	s.notify(next)
	return next
}

// DispatchLatest dispatches a only when n is still the newest sequence number
// issued by seq for resource. It reports whether a was applied.
func (s *Store) DispatchLatest(seq *Sequencer, resource string, n uint64, a Action) bool {
	seq.mu.Lock()
	defer seq.mu.Unlock()

	if !seq.acceptLocked(resource, n) {
		return false
	}
	s.Dispatch(a)
	return true
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe returns a channel receiving every new state. A slow subscriber
// only ever misses intermediate states, the newest one is always delivered.
// The returned function must be called to release the subscription.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

func (s *Store) notify(st State) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, ch := range s.subs {
		// Replace a pending state nobody consumed yet.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
