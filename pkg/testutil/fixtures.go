package testutil

import (
	"time"

	"github.com/google/uuid"

	assetmodels "brique/internal/asset/models"
	salemodels "brique/internal/sale/models"
	id "brique/pkg/domain"
)

// TestWallets provides convenient pre-defined addresses for tests.
// Use these for deterministic test data.
var TestWallets = struct {
	Owner    id.Address
	Issuer   id.Address
	Investor id.Address
	Other    id.Address
}{
	Owner:    mustAddress("0x00000000000000000000000000000000000000Aa"),
	Issuer:   mustAddress("0x1111111111111111111111111111111111111111"),
	Investor: mustAddress("0x2222222222222222222222222222222222222222"),
	Other:    mustAddress("0x3333333333333333333333333333333333333333"),
}

// TestIDs provides pre-generated ledger identifiers for tests.
var TestIDs = struct {
	AssetID1 id.AssetID
	AssetID2 id.AssetID
	SaleID1  id.SaleID
	SaleID2  id.SaleID
}{
	AssetID1: id.AssetID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	AssetID2: id.AssetID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000002")),
	SaleID1:  id.SaleID(uuid.MustParse("eeee0000-0000-0000-0000-000000000001")),
	SaleID2:  id.SaleID(uuid.MustParse("eeee0000-0000-0000-0000-000000000002")),
}

func mustAddress(s string) id.Address {
	addr, err := id.ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// AssetBuilder provides a fluent interface for building test assets.
type AssetBuilder struct {
	asset *assetmodels.Asset
}

// NewAssetBuilder creates a new AssetBuilder with sensible defaults.
func NewAssetBuilder() *AssetBuilder {
	now := time.Now().UTC()
	return &AssetBuilder{
		asset: &assetmodels.Asset{
			ID:        id.NewAssetID(),
			Name:      "Test Property",
			Symbol:    "PROP",
			MaxSupply: 1000,
			Issuer:    TestWallets.Issuer,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (b *AssetBuilder) WithID(assetID id.AssetID) *AssetBuilder {
	b.asset.ID = assetID
	return b
}

func (b *AssetBuilder) WithSymbol(name, symbol string) *AssetBuilder {
	b.asset.Name = name
	b.asset.Symbol = symbol
	return b
}

func (b *AssetBuilder) WithMaxSupply(maxSupply uint64) *AssetBuilder {
	b.asset.MaxSupply = maxSupply
	return b
}

func (b *AssetBuilder) WithIssuer(issuer id.Address) *AssetBuilder {
	b.asset.Issuer = issuer
	return b
}

func (b *AssetBuilder) WithLinkedSale(saleID id.SaleID) *AssetBuilder {
	b.asset.LinkedSale = saleID
	return b
}

func (b *AssetBuilder) Paused(paused bool) *AssetBuilder {
	b.asset.Paused = paused
	return b
}

// Build returns the constructed asset.
func (b *AssetBuilder) Build() *assetmodels.Asset {
	a := *b.asset
	return &a
}

// SaleBuilder provides a fluent interface for building test sales.
type SaleBuilder struct {
	sale *salemodels.Sale
}

// NewSaleBuilder creates a new SaleBuilder with sensible defaults.
// The sale references TestIDs.AssetID1 unless overridden.
func NewSaleBuilder() *SaleBuilder {
	now := time.Now().UTC()
	return &SaleBuilder{
		sale: &salemodels.Sale{
			ID:           id.NewSaleID(),
			AssetID:      TestIDs.AssetID1,
			Beneficiary:  TestWallets.Issuer,
			PricePerUnit: 10,
			MinPurchase:  0,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

func (b *SaleBuilder) WithID(saleID id.SaleID) *SaleBuilder {
	b.sale.ID = saleID
	return b
}

func (b *SaleBuilder) WithAssetID(assetID id.AssetID) *SaleBuilder {
	b.sale.AssetID = assetID
	return b
}

func (b *SaleBuilder) WithBeneficiary(beneficiary id.Address) *SaleBuilder {
	b.sale.Beneficiary = beneficiary
	return b
}

func (b *SaleBuilder) WithPrice(pricePerUnit uint64) *SaleBuilder {
	b.sale.PricePerUnit = pricePerUnit
	return b
}

func (b *SaleBuilder) WithMinPurchase(minPurchase uint64) *SaleBuilder {
	b.sale.MinPurchase = minPurchase
	return b
}

func (b *SaleBuilder) Active(active bool) *SaleBuilder {
	b.sale.Active = active
	return b
}

// Build returns the constructed sale.
func (b *SaleBuilder) Build() *salemodels.Sale {
	s := *b.sale
	return &s
}
