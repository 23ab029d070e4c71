package models

import (
	"time"

	id "brique/pkg/domain"
)

// VerificationRecord is the per-wallet whitelist entry. A wallet with no
// record is treated as unverified; records are toggled, never deleted, so the
// verification history survives revocation.
type VerificationRecord struct {
	Wallet    id.Address `json:"wallet"`
	Verified  bool       `json:"verified"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
