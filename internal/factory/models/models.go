package models

import (
	"time"

	id "brique/pkg/domain"
)

// Entry is one deployed asset in the factory index. The index is
// append-only; Active is a soft visibility flag and never cascades into
// ledger state.
type Entry struct {
	AssetID   id.AssetID
	Issuer    id.Address
	Position  int
	Active    bool
	CreatedAt time.Time
}
