package dashboard

import (
	"context"
	"sync"
)

// Sequencer issues request tokens. Tokens for one dashboard must strictly
// increase; the first token is 1.
type Sequencer interface {
	Next(ctx context.Context, dashboardID string) (uint64, error)
}

type forgetter interface {
	Forget(ctx context.Context, dashboardID string) error
}

// MemorySequencer keeps counters in process memory.
type MemorySequencer struct {
	mu       sync.Mutex
	counters map[string]uint64
}

func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{counters: make(map[string]uint64)}
}

func (s *MemorySequencer) Next(_ context.Context, dashboardID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[dashboardID]++
	return s.counters[dashboardID], nil
}

func (s *MemorySequencer) Forget(_ context.Context, dashboardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, dashboardID)
	return nil
}
