package store

import (
	"context"
	"sync"

	"brique/internal/kyc/models"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
)

// InMemory keeps KYC requests in process memory, one per wallet.
type InMemory struct {
	mu       sync.RWMutex
	requests map[id.Address]*models.Request
}

func NewInMemory() *InMemory {
	return &InMemory{requests: make(map[id.Address]*models.Request)}
}

func (s *InMemory) Get(_ context.Context, wallet id.Address) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[wallet]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *InMemory) Upsert(_ context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.requests[req.Wallet] = &cp
	return nil
}

func (s *InMemory) CountByStatus(_ context.Context, status models.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, req := range s.requests {
		if req.Status() == status {
			count++
		}
	}
	return count, nil
}
