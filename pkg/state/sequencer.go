package state

import (
	"sync"

	"github.com/iov-one/block-explorer/pkg/metrics"
)

// Logical resources refreshed from the indexer.
const (
	ResourceLatestBlocks = "latest_blocks"
	ResourceLatestTxns   = "latest_txns"
	ResourceSupply       = "supply"
)

// Sequencer tags requests with increasing numbers per resource so that only
// the response to the most recently issued request is applied, no matter in
// which order responses arrive.
type Sequencer struct {
	mu       sync.Mutex
	issued   map[string]uint64
	accepted map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{
		issued:   make(map[string]uint64),
		accepted: make(map[string]uint64),
	}
}

// Next returns the sequence number for a new request of resource.
func (s *Sequencer) Next(resource string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued[resource]++
	return s.issued[resource]
}

// Accept reports whether the response tagged n is the newest one issued for
// resource. A response is accepted at most once.
func (s *Sequencer) Accept(resource string, n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acceptLocked(resource, n)
}

func (s *Sequencer) acceptLocked(resource string, n uint64) bool {
	if n != s.issued[resource] || n <= s.accepted[resource] {
		metrics.StaleResponses.WithLabelValues(resource).Inc()
		return false
	}
	s.accepted[resource] = n
	return true
}
