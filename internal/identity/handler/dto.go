package handler

import (
	"time"

	"brique/internal/identity/models"
	s "brique/pkg/string"
	"brique/pkg/validation"
)

type WalletRequest struct {
	Wallet string `json:"wallet" validate:"required,eth_addr"`
}

func (r *WalletRequest) Normalize() {
	s.TrimStrings(&r.Wallet)
}

func (r *WalletRequest) Validate() error {
	return validation.Validate(r)
}

type VerificationResponse struct {
	Wallet   string `json:"wallet"`
	Verified bool   `json:"verified"`
}

type CountResponse struct {
	Verified int `json:"verified"`
}

type RecordResponse struct {
	Wallet    string    `json:"wallet"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRecordResponse(rec *models.VerificationRecord) *RecordResponse {
	return &RecordResponse{
		Wallet:    rec.Wallet.Hex(),
		Verified:  rec.Verified,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
