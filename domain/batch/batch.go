// Package batch holds the per-session accumulation of pending calculation
// entries, one ordered bucket per provider and resource kind.
package batch

import (
	"sync"

	"cloud-carbon/domain/emissions"
)

// Store keeps the six pending batches (3 providers x 2 kinds) for one user
// session. It is constructor-injected, never process-global, so multi-session
// deployments stay safe. The mutex covers concurrent web handlers.
type Store struct {
	mu      sync.Mutex
	batches map[emissions.Bucket][]emissions.RequestBody
}

func NewStore() *Store {
	s := &Store{batches: make(map[emissions.Bucket][]emissions.RequestBody, len(emissions.Buckets()))}
	for _, b := range emissions.Buckets() {
		s.batches[b] = nil
	}
	return s
}

// Append adds one request body to the end of the matching batch.
func (s *Store) Append(provider emissions.ProviderID, kind emissions.ResourceKind, body emissions.RequestBody) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := emissions.Bucket{Provider: provider, Kind: kind}
	s.batches[bucket] = append(s.batches[bucket], body)
}

// Snapshot returns a copy of one batch in insertion order.
func (s *Store) Snapshot(provider emissions.ProviderID, kind emissions.ResourceKind) []emissions.RequestBody {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := emissions.Bucket{Provider: provider, Kind: kind}
	res := make([]emissions.RequestBody, len(s.batches[bucket]))
	copy(res, s.batches[bucket])
	return res
}

// Reset empties all six batches under one lock, so no partially cleared state
// is ever observable.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range emissions.Buckets() {
		s.batches[b] = nil
	}
}
