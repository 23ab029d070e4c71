package seeder_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	assetservice "brique/internal/asset/service"
	assetstore "brique/internal/asset/store"
	factoryservice "brique/internal/factory/service"
	factorystore "brique/internal/factory/store"
	identityservice "brique/internal/identity/service"
	identitystore "brique/internal/identity/store"
	kycservice "brique/internal/kyc/service"
	kycstore "brique/internal/kyc/store"
	"brique/internal/ledger"
	saleservice "brique/internal/sale/service"
	salestore "brique/internal/sale/store"
	"brique/internal/seeder"
	"brique/pkg/testutil"
)

func TestSeedAll(t *testing.T) {
	owner := testutil.TestWallets.Owner
	tx := ledger.NewSerialTx()

	identitySvc := identityservice.New(identitystore.NewInMemory(), owner, tx)
	kycSvc := kycservice.New(kycstore.NewInMemory(), owner, tx)
	assetSvc := assetservice.New(assetstore.NewInMemory(), identitySvc, owner, tx)
	saleSvc := saleservice.New(salestore.NewInMemory(), assetSvc, identitySvc, owner, tx)
	factorySvc := factoryservice.New(factorystore.NewInMemory(), assetSvc, owner, tx)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	seed := seeder.New(owner, identitySvc, kycSvc, assetSvc, factorySvc, saleSvc, log)

	ctx := context.Background()
	require.NoError(t, seed.SeedAll(ctx))

	// One asset deployed through the factory.
	count, err := factorySvc.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	entry, err := factorySvc.ByIndex(ctx, 0)
	require.NoError(t, err)
	require.True(t, entry.Active)

	// All demo wallets verified.
	verified, err := identitySvc.VerifiedCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, verified)

	// Purchases minted shares; supply conservation holds.
	asset, err := assetSvc.Get(ctx, entry.AssetID)
	require.NoError(t, err)
	require.NotZero(t, asset.TotalSupply)

	holders, err := assetSvc.Holders(ctx, entry.AssetID)
	require.NoError(t, err)
	var sum uint64
	for _, h := range holders {
		sum += h.Balance
	}
	require.Equal(t, asset.TotalSupply, sum)

	// The sale is linked and holds the captured proceeds.
	require.False(t, asset.LinkedSale.IsNil())
	sale, err := saleSvc.Get(ctx, asset.LinkedSale)
	require.NoError(t, err)
	require.True(t, sale.Active)
	require.NotZero(t, sale.TotalRaised)
	require.Equal(t, sale.TotalRaised, sale.ContractBalance)
}
