package store

import (
	"context"
	"sync"

	"brique/internal/identity/models"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
)

// InMemory keeps verification records in process memory.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.Address]*models.VerificationRecord
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.Address]*models.VerificationRecord)}
}

func (s *InMemory) Get(_ context.Context, wallet id.Address) (*models.VerificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[wallet]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *InMemory) Upsert(_ context.Context, rec *models.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.records[rec.Wallet] = &cp
	return nil
}

func (s *InMemory) CountVerified(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, rec := range s.records {
		if rec.Verified {
			count++
		}
	}
	return count, nil
}
