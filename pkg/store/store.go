// Package store persists completed research responses. Persistence sits
// behind ReportStore so the orchestrator never depends on a concrete
// backend; the default is in-memory.
package store

import (
	"context"
	"sync"

	"github.com/spawn-mcp/deep-research/pkg/errors"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
)

// ReportStore persists and retrieves research responses by research id.
type ReportStore interface {
	Save(ctx context.Context, resp *schemas.ResearchResponse) error
	Get(ctx context.Context, researchID string) (*schemas.ResearchResponse, error)
}

// MemoryStore is a process-local ReportStore.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*schemas.ResearchResponse
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]*schemas.ResearchResponse)}
}

func (s *MemoryStore) Save(ctx context.Context, resp *schemas.ResearchResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[resp.ResearchID] = resp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, researchID string) (*schemas.ResearchResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp, ok := s.reports[researchID]
	if !ok {
		return nil, errors.Newf(errors.ErrReportNotFound, "report not found: %s", researchID)
	}
	return resp, nil
}
