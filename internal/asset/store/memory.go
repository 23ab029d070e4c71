package store

import (
	"context"
	"sort"
	"sync"

	"brique/internal/asset/models"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
)

// InMemory keeps asset ledgers and balances in process memory.
type InMemory struct {
	mu       sync.RWMutex
	assets   map[id.AssetID]*models.Asset
	balances map[id.AssetID]map[id.Address]uint64
}

func NewInMemory() *InMemory {
	return &InMemory{
		assets:   make(map[id.AssetID]*models.Asset),
		balances: make(map[id.AssetID]map[id.Address]uint64),
	}
}

func (s *InMemory) GetAsset(_ context.Context, assetID id.AssetID) (*models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *asset
	return &cp, nil
}

func (s *InMemory) UpsertAsset(_ context.Context, asset *models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *asset
	s.assets[asset.ID] = &cp
	return nil
}

func (s *InMemory) GetBalance(_ context.Context, assetID id.AssetID, wallet id.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[assetID][wallet], nil
}

func (s *InMemory) SetBalance(_ context.Context, assetID id.AssetID, wallet id.Address, balance uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	holders, ok := s.balances[assetID]
	if !ok {
		holders = make(map[id.Address]uint64)
		s.balances[assetID] = holders
	}
	if balance == 0 {
		delete(holders, wallet)
		return nil
	}
	holders[wallet] = balance
	return nil
}

func (s *InMemory) ListHolders(_ context.Context, assetID id.AssetID) ([]models.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	holders := s.balances[assetID]
	out := make([]models.Holding, 0, len(holders))
	for wallet, balance := range holders {
		out = append(out, models.Holding{Wallet: wallet, Balance: balance})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Balance > out[j].Balance
	})
	return out, nil
}
