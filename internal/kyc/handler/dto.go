package handler

import (
	"time"

	"brique/internal/kyc/models"
	s "brique/pkg/string"
	"brique/pkg/validation"
)

type SubmitRequest struct {
	Fingerprint string `json:"fingerprint" validate:"required,notblank"`
}

func (r *SubmitRequest) Normalize() {
	s.TrimStrings(&r.Fingerprint)
}

func (r *SubmitRequest) Validate() error {
	return validation.Validate(r)
}

type RequestResponse struct {
	Wallet      string     `json:"wallet"`
	Fingerprint string     `json:"fingerprint"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

type PendingCountResponse struct {
	Pending int `json:"pending"`
}

func toRequestResponse(req *models.Request) *RequestResponse {
	resp := &RequestResponse{
		Wallet:      req.Wallet.Hex(),
		Fingerprint: req.Fingerprint.Hex(),
		Status:      string(req.Status()),
		SubmittedAt: req.SubmittedAt,
	}
	if !req.DecidedAt.IsZero() {
		decidedAt := req.DecidedAt
		resp.DecidedAt = &decidedAt
	}
	return resp
}
