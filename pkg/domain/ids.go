// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "brique/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing an AssetID where a SaleID is expected.
type (
	AssetID uuid.UUID
	SaleID  uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseAssetID(s string) (AssetID, error) {
	id, err := parseUUID(s, "asset ID")
	return AssetID(id), err
}

func ParseSaleID(s string) (SaleID, error) {
	id, err := parseUUID(s, "sale ID")
	return SaleID(id), err
}

// String methods - for logging and debugging.

func (id AssetID) String() string { return uuid.UUID(id).String() }
func (id SaleID) String() string  { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id AssetID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SaleID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// NewAssetID allocates a fresh asset identifier. Deployed ledger instances are
// addressed through this identifier rather than in-process references.
func NewAssetID() AssetID { return AssetID(uuid.New()) }

// NewSaleID allocates a fresh sale identifier.
func NewSaleID() SaleID { return SaleID(uuid.New()) }

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here; use IsNil() at the service layer for business
// validation, which lets store lookups return proper "not found" errors.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return id, nil
}
