// Package seeder populates the ledger with demo data for local development.
// It drives the regular service operations so seeded state goes through the
// same validation, events and invariant checks as real traffic.
package seeder

import (
	"context"
	"fmt"
	"log/slog"

	assetmodels "brique/internal/asset/models"
	kycmodels "brique/internal/kyc/models"
	salemodels "brique/internal/sale/models"
	id "brique/pkg/domain"
)

// IdentityService verifies demo wallets.
type IdentityService interface {
	Verify(ctx context.Context, caller, wallet id.Address) error
}

// KYCService submits and decides demo KYC requests.
type KYCService interface {
	Submit(ctx context.Context, wallet id.Address, fingerprint id.Fingerprint) (*kycmodels.Request, error)
	Approve(ctx context.Context, caller, wallet id.Address) error
}

// FactoryService deploys demo assets.
type FactoryService interface {
	CreateAsset(ctx context.Context, caller id.Address, name, symbol string, maxSupply uint64, issuer id.Address) (*assetmodels.Asset, error)
}

// AssetService links the demo sale as the asset's authorized minter.
type AssetService interface {
	SetSaleContract(ctx context.Context, caller id.Address, assetID id.AssetID, saleID id.SaleID) error
}

// SaleService opens demo sales.
type SaleService interface {
	Create(ctx context.Context, caller id.Address, assetID id.AssetID, beneficiary id.Address, pricePerUnit, minPurchase uint64) (*salemodels.Sale, error)
	Activate(ctx context.Context, caller id.Address, saleID id.SaleID) error
	Buy(ctx context.Context, buyer id.Address, saleID id.SaleID, value uint64) (*salemodels.Purchase, error)
}

// Seeder populates the ledger with demo data.
type Seeder struct {
	owner    id.Address
	identity IdentityService
	kyc      KYCService
	assets   AssetService
	factory  FactoryService
	sales    SaleService
	logger   *slog.Logger
}

// New creates a new seeder. All mutations are issued as the platform owner.
func New(owner id.Address, identity IdentityService, kyc KYCService, assets AssetService, factory FactoryService, sales SaleService, logger *slog.Logger) *Seeder {
	return &Seeder{
		owner:    owner,
		identity: identity,
		kyc:      kyc,
		assets:   assets,
		factory:  factory,
		sales:    sales,
		logger:   logger,
	}
}

// SeedAll populates the ledger with demo wallets, one asset and an open sale.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	wallets, err := s.seedWallets(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed wallets: %w", err)
	}

	asset, sale, err := s.seedAssetWithSale(ctx, wallets[0])
	if err != nil {
		return fmt.Errorf("failed to seed asset: %w", err)
	}

	if err := s.seedPurchases(ctx, sale, wallets[1:]); err != nil {
		return fmt.Errorf("failed to seed purchases: %w", err)
	}

	s.logger.Info("demo data seeded successfully",
		"wallets", len(wallets),
		"asset_id", asset.ID.String(),
		"sale_id", sale.ID.String(),
	)

	return nil
}

func (s *Seeder) seedWallets(ctx context.Context) ([]id.Address, error) {
	demoWallets := []struct {
		hex      string
		document byte
	}{
		{"0xA11CE00000000000000000000000000000000001", 0x01},
		{"0xB0B0000000000000000000000000000000000002", 0x02},
		{"0xC4A1000000000000000000000000000000000003", 0x03},
		{"0xD1A4000000000000000000000000000000000004", 0x04},
	}

	var wallets []id.Address
	for _, w := range demoWallets {
		wallet, err := id.ParseAddress(w.hex)
		if err != nil {
			return nil, err
		}

		var fingerprint id.Fingerprint
		fingerprint[31] = w.document
		if _, err := s.kyc.Submit(ctx, wallet, fingerprint); err != nil {
			return nil, err
		}
		if err := s.kyc.Approve(ctx, s.owner, wallet); err != nil {
			return nil, err
		}
		if err := s.identity.Verify(ctx, s.owner, wallet); err != nil {
			return nil, err
		}

		wallets = append(wallets, wallet)
	}

	return wallets, nil
}

func (s *Seeder) seedAssetWithSale(ctx context.Context, issuer id.Address) (*assetmodels.Asset, *salemodels.Sale, error) {
	asset, err := s.factory.CreateAsset(ctx, s.owner, "Rue de la Brique 12", "BRQ12", 1000, issuer)
	if err != nil {
		return nil, nil, err
	}

	sale, err := s.sales.Create(ctx, s.owner, asset.ID, issuer, 10, 50)
	if err != nil {
		return nil, nil, err
	}
	if err := s.assets.SetSaleContract(ctx, s.owner, asset.ID, sale.ID); err != nil {
		return nil, nil, err
	}
	if err := s.sales.Activate(ctx, s.owner, sale.ID); err != nil {
		return nil, nil, err
	}

	return asset, sale, nil
}

func (s *Seeder) seedPurchases(ctx context.Context, sale *salemodels.Sale, buyers []id.Address) error {
	// Values chosen so at least one purchase carries change.
	values := []uint64{500, 255, 120}

	for i, buyer := range buyers {
		if i >= len(values) {
			break
		}
		if _, err := s.sales.Buy(ctx, buyer, sale.ID, values[i]); err != nil {
			return err
		}
	}

	return nil
}
