package handler

import (
	"time"

	assetmodels "brique/internal/asset/models"
	"brique/internal/factory/models"
	s "brique/pkg/string"
	"brique/pkg/validation"
)

type CreateAssetRequest struct {
	Name      string `json:"name" validate:"required,notblank"`
	Symbol    string `json:"symbol" validate:"required,notblank"`
	MaxSupply uint64 `json:"max_supply" validate:"gt=0"`
	Issuer    string `json:"issuer" validate:"required,eth_addr"`
}

func (r *CreateAssetRequest) Normalize() {
	s.TrimStrings(&r.Name, &r.Symbol, &r.Issuer)
}

func (r *CreateAssetRequest) Validate() error {
	return validation.Validate(r)
}

type CreatedResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	MaxSupply uint64    `json:"max_supply"`
	HolderCap uint64    `json:"holder_cap"`
	Issuer    string    `json:"issuer"`
	CreatedAt time.Time `json:"created_at"`
}

type EntryResponse struct {
	AssetID   string    `json:"asset_id"`
	Issuer    string    `json:"issuer"`
	Position  int       `json:"position"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type ListResponse struct {
	Count  int             `json:"count"`
	Assets []EntryResponse `json:"assets"`
}

func toCreatedResponse(asset *assetmodels.Asset) *CreatedResponse {
	return &CreatedResponse{
		ID:        asset.ID.String(),
		Name:      asset.Name,
		Symbol:    asset.Symbol,
		MaxSupply: asset.MaxSupply,
		HolderCap: asset.HolderCap(),
		Issuer:    asset.Issuer.Hex(),
		CreatedAt: asset.CreatedAt,
	}
}

func toEntryResponse(entry *models.Entry) *EntryResponse {
	return &EntryResponse{
		AssetID:   entry.AssetID.String(),
		Issuer:    entry.Issuer.Hex(),
		Position:  entry.Position,
		Active:    entry.Active,
		CreatedAt: entry.CreatedAt,
	}
}

func toListResponse(entries []models.Entry) *ListResponse {
	out := &ListResponse{
		Count:  len(entries),
		Assets: make([]EntryResponse, 0, len(entries)),
	}
	for i := range entries {
		out.Assets = append(out.Assets, *toEntryResponse(&entries[i]))
	}
	return out
}
