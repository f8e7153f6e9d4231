package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/funnelviz/funnelviz/pkg/chart"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// MemoryStore is an in-memory chart store for development and testing.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Create stores a new chart under a fresh UUID.
func (s *MemoryStore) Create(ctx context.Context, c chart.Chart) (*Record, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := Record{
		ID:        uuid.NewString(),
		Chart:     c,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()
	return &rec, nil
}

// Get retrieves a record by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeChartNotFound, "chart %s not found", id)
	}
	return &rec, nil
}

// List returns all records, newest first.
func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update replaces the chart of an existing record.
func (s *MemoryStore) Update(ctx context.Context, id string, c chart.Chart) (*Record, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeChartNotFound, "chart %s not found", id)
	}
	rec.Chart = c
	rec.UpdatedAt = time.Now().UTC()
	s.records[id] = rec
	return &rec, nil
}

// Delete removes a record.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return apperrors.New(apperrors.ErrCodeChartNotFound, "chart %s not found", id)
	}
	delete(s.records, id)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
