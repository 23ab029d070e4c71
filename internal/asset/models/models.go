package models

import (
	"time"

	id "brique/pkg/domain"
)

// Asset is one security-token ledger: fractional shares in a single
// real-world asset. Sum of balances == TotalSupply <= MaxSupply at all times.
type Asset struct {
	ID          id.AssetID
	Name        string
	Symbol      string
	MaxSupply   uint64
	TotalSupply uint64
	Issuer      id.Address
	LinkedSale  id.SaleID
	Paused      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HolderCap is the concentration cap: no wallet may hold more than 20% of
// the maximum issuable supply. Integer floor, constant per asset. Written as
// a division so MaxSupply*20 cannot wrap at uint64.
func (a *Asset) HolderCap() uint64 {
	return a.MaxSupply / 5
}

// Holding is one wallet's position in an asset.
type Holding struct {
	Wallet  id.Address
	Balance uint64
}
