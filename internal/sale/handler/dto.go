package handler

import (
	"time"

	"brique/internal/sale/models"
	s "brique/pkg/string"
	"brique/pkg/validation"
)

type CreateSaleRequest struct {
	AssetID      string `json:"asset_id" validate:"required,uuid"`
	Beneficiary  string `json:"beneficiary" validate:"required,eth_addr"`
	PricePerUnit uint64 `json:"price_per_unit" validate:"gt=0"`
	MinPurchase  uint64 `json:"min_purchase"`
}

func (r *CreateSaleRequest) Normalize() {
	s.TrimStrings(&r.AssetID, &r.Beneficiary)
}

func (r *CreateSaleRequest) Validate() error {
	return validation.Validate(r)
}

type BuyRequest struct {
	Value uint64 `json:"value"`
}

type WithdrawRequest struct {
	To     string `json:"to" validate:"required,eth_addr"`
	Amount uint64 `json:"amount" validate:"gt=0"`
}

func (r *WithdrawRequest) Normalize() {
	s.TrimStrings(&r.To)
}

func (r *WithdrawRequest) Validate() error {
	return validation.Validate(r)
}

type SaleResponse struct {
	ID              string    `json:"id"`
	AssetID         string    `json:"asset_id"`
	Beneficiary     string    `json:"beneficiary"`
	PricePerUnit    uint64    `json:"price_per_unit"`
	MinPurchase     uint64    `json:"min_purchase"`
	Active          bool      `json:"active"`
	TotalRaised     uint64    `json:"total_raised"`
	ContractBalance uint64    `json:"contract_balance"`
	CreatedAt       time.Time `json:"created_at"`
}

type PurchaseResponse struct {
	SaleID   string `json:"sale_id"`
	Wallet   string `json:"wallet"`
	Quantity uint64 `json:"quantity"`
	Cost     uint64 `json:"cost"`
	Change   uint64 `json:"change"`
}

type ContributionResponse struct {
	SaleID      string `json:"sale_id"`
	Wallet      string `json:"wallet"`
	Contributed uint64 `json:"contributed"`
}

type InvestorStatsResponse struct {
	SaleID       string `json:"sale_id"`
	Wallet       string `json:"wallet"`
	Contributed  uint64 `json:"contributed"`
	TokenBalance uint64 `json:"token_balance"`
}

func toSaleResponse(sale *models.Sale) *SaleResponse {
	return &SaleResponse{
		ID:              sale.ID.String(),
		AssetID:         sale.AssetID.String(),
		Beneficiary:     sale.Beneficiary.Hex(),
		PricePerUnit:    sale.PricePerUnit,
		MinPurchase:     sale.MinPurchase,
		Active:          sale.Active,
		TotalRaised:     sale.TotalRaised,
		ContractBalance: sale.ContractBalance,
		CreatedAt:       sale.CreatedAt,
	}
}
