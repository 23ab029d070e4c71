//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"brique/internal/sale/store"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
	"brique/pkg/testutil"
	"brique/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	assetID  id.AssetID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "sale_contributions", "sales", "assets")
	s.Require().NoError(err)
	s.assetID = s.postgres.CreateTestAsset(ctx, s.T(), testutil.TestWallets.Issuer, 1000)
}

func (s *PostgresStoreSuite) TestGetMissingSale() {
	_, err := s.store.GetSale(context.Background(), id.NewSaleID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpsertSaleRoundTrip() {
	ctx := context.Background()

	sale := testutil.NewSaleBuilder().
		WithAssetID(s.assetID).
		WithPrice(25).
		WithMinPurchase(100).
		Build()
	s.Require().NoError(s.store.UpsertSale(ctx, sale))

	got, err := s.store.GetSale(ctx, sale.ID)
	s.Require().NoError(err)
	s.Equal(sale.ID, got.ID)
	s.Equal(s.assetID, got.AssetID)
	s.Equal(uint64(25), got.PricePerUnit)
	s.Equal(uint64(100), got.MinPurchase)
	s.False(got.Active)
	s.Zero(got.TotalRaised)
}

func (s *PostgresStoreSuite) TestUpsertSalePersistsProceeds() {
	ctx := context.Background()

	sale := testutil.NewSaleBuilder().WithAssetID(s.assetID).Build()
	s.Require().NoError(s.store.UpsertSale(ctx, sale))

	sale.Active = true
	sale.TotalRaised = 500
	sale.ContractBalance = 300
	sale.UpdatedAt = time.Now().UTC()
	s.Require().NoError(s.store.UpsertSale(ctx, sale))

	got, err := s.store.GetSale(ctx, sale.ID)
	s.Require().NoError(err)
	s.True(got.Active)
	s.Equal(uint64(500), got.TotalRaised)
	s.Equal(uint64(300), got.ContractBalance)
}

func (s *PostgresStoreSuite) TestContributionLifecycle() {
	ctx := context.Background()

	sale := testutil.NewSaleBuilder().WithAssetID(s.assetID).Build()
	s.Require().NoError(s.store.UpsertSale(ctx, sale))

	// Missing contribution reads as zero.
	amount, err := s.store.GetContribution(ctx, sale.ID, testutil.TestWallets.Investor)
	s.Require().NoError(err)
	s.Zero(amount)

	s.Require().NoError(s.store.SetContribution(ctx, sale.ID, testutil.TestWallets.Investor, 50))
	s.Require().NoError(s.store.SetContribution(ctx, sale.ID, testutil.TestWallets.Investor, 120))

	amount, err = s.store.GetContribution(ctx, sale.ID, testutil.TestWallets.Investor)
	s.Require().NoError(err)
	s.Equal(uint64(120), amount)

	// Other wallets are unaffected.
	amount, err = s.store.GetContribution(ctx, sale.ID, testutil.TestWallets.Other)
	s.Require().NoError(err)
	s.Zero(amount)
}
