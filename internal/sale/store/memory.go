package store

import (
	"context"
	"sync"

	"brique/internal/sale/models"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
)

// InMemory keeps sales and per-investor contributions in process memory.
type InMemory struct {
	mu            sync.RWMutex
	sales         map[id.SaleID]*models.Sale
	contributions map[id.SaleID]map[id.Address]uint64
}

func NewInMemory() *InMemory {
	return &InMemory{
		sales:         make(map[id.SaleID]*models.Sale),
		contributions: make(map[id.SaleID]map[id.Address]uint64),
	}
}

func (s *InMemory) GetSale(_ context.Context, saleID id.SaleID) (*models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sale
	return &cp, nil
}

func (s *InMemory) UpsertSale(_ context.Context, sale *models.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sale
	s.sales[sale.ID] = &cp
	return nil
}

func (s *InMemory) GetContribution(_ context.Context, saleID id.SaleID, wallet id.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contributions[saleID][wallet], nil
}

func (s *InMemory) SetContribution(_ context.Context, saleID id.SaleID, wallet id.Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	investors, ok := s.contributions[saleID]
	if !ok {
		investors = make(map[id.Address]uint64)
		s.contributions[saleID] = investors
	}
	investors[wallet] = amount
	return nil
}
