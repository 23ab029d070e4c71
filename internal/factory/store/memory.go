package store

import (
	"context"
	"sync"

	"brique/internal/factory/models"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
)

// InMemory keeps the factory index in process memory. Order of appends is
// the index order.
type InMemory struct {
	mu      sync.RWMutex
	ordered []id.AssetID
	entries map[id.AssetID]*models.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[id.AssetID]*models.Entry)}
}

func (s *InMemory) Append(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	cp.Position = len(s.ordered)
	s.ordered = append(s.ordered, entry.AssetID)
	s.entries[entry.AssetID] = &cp
	return nil
}

func (s *InMemory) Get(_ context.Context, assetID id.AssetID) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[assetID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (s *InMemory) Update(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.AssetID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *entry
	s.entries[entry.AssetID] = &cp
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered), nil
}

func (s *InMemory) ByIndex(_ context.Context, position int) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if position < 0 || position >= len(s.ordered) {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.entries[s.ordered[position]]
	return &cp, nil
}

func (s *InMemory) ByIssuer(_ context.Context, issuer id.Address) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Entry
	for _, assetID := range s.ordered {
		entry := s.entries[assetID]
		if entry.Issuer == issuer {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (s *InMemory) List(_ context.Context) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Entry, 0, len(s.ordered))
	for _, assetID := range s.ordered {
		out = append(out, *s.entries[assetID])
	}
	return out, nil
}
