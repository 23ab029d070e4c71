package handler

import (
	"time"

	"brique/internal/asset/models"
	id "brique/pkg/domain"
	s "brique/pkg/string"
	"brique/pkg/validation"
)

type MoveRequest struct {
	Wallet string `json:"wallet" validate:"required,eth_addr"`
	Amount uint64 `json:"amount"`
}

func (r *MoveRequest) Normalize() {
	s.TrimStrings(&r.Wallet)
}

func (r *MoveRequest) Validate() error {
	return validation.Validate(r)
}

type SetSaleRequest struct {
	SaleID string `json:"sale_id" validate:"required,uuid"`
}

func (r *SetSaleRequest) Normalize() {
	s.TrimStrings(&r.SaleID)
}

func (r *SetSaleRequest) Validate() error {
	return validation.Validate(r)
}

type AssetResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	MaxSupply   uint64    `json:"max_supply"`
	TotalSupply uint64    `json:"total_supply"`
	HolderCap   uint64    `json:"holder_cap"`
	Issuer      string    `json:"issuer"`
	LinkedSale  string    `json:"linked_sale,omitempty"`
	Paused      bool      `json:"paused"`
	CreatedAt   time.Time `json:"created_at"`
}

type BalanceResponse struct {
	AssetID string `json:"asset_id"`
	Wallet  string `json:"wallet"`
	Balance uint64 `json:"balance"`
}

type HoldersResponse struct {
	AssetID string            `json:"asset_id"`
	Holders []HoldingResponse `json:"holders"`
}

type HoldingResponse struct {
	Wallet  string `json:"wallet"`
	Balance uint64 `json:"balance"`
}

func toAssetResponse(asset *models.Asset) *AssetResponse {
	resp := &AssetResponse{
		ID:          asset.ID.String(),
		Name:        asset.Name,
		Symbol:      asset.Symbol,
		MaxSupply:   asset.MaxSupply,
		TotalSupply: asset.TotalSupply,
		HolderCap:   asset.HolderCap(),
		Issuer:      asset.Issuer.Hex(),
		Paused:      asset.Paused,
		CreatedAt:   asset.CreatedAt,
	}
	if !asset.LinkedSale.IsNil() {
		resp.LinkedSale = asset.LinkedSale.String()
	}
	return resp
}

func toHoldersResponse(assetID id.AssetID, holders []models.Holding) *HoldersResponse {
	out := &HoldersResponse{
		AssetID: assetID.String(),
		Holders: make([]HoldingResponse, 0, len(holders)),
	}
	for _, h := range holders {
		out.Holders = append(out.Holders, HoldingResponse{Wallet: h.Wallet.Hex(), Balance: h.Balance})
	}
	return out
}
