package models

import (
	"time"

	id "brique/pkg/domain"
)

// Sale is one fixed-price primary sale: settlement currency in, freshly
// minted shares out. ContractBalance is the currency held and not yet
// withdrawn; TotalRaised only ever grows.
type Sale struct {
	ID              id.SaleID
	AssetID         id.AssetID
	Beneficiary     id.Address
	PricePerUnit    uint64
	MinPurchase     uint64
	Active          bool
	TotalRaised     uint64
	ContractBalance uint64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Purchase is the settlement breakdown of one buy: the value sent splits
// exactly into captured cost and refunded change.
type Purchase struct {
	Quantity uint64
	Cost     uint64
	Change   uint64
}

// InvestorStats is the per-wallet view of a sale.
type InvestorStats struct {
	Wallet       id.Address
	Contributed  uint64
	TokenBalance uint64
}
