//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"brique/internal/factory/models"
	"brique/internal/factory/store"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
	"brique/pkg/testutil"
	"brique/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
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
	err := s.postgres.TruncateTables(context.Background(), "factory_index", "assets")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) appendEntry(ctx context.Context, issuer id.Address) *models.Entry {
	assetID := s.postgres.CreateTestAsset(ctx, s.T(), issuer, 1000)
	entry := &models.Entry{
		AssetID:   assetID,
		Issuer:    issuer,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.store.Append(ctx, entry))
	return entry
}

func (s *PostgresStoreSuite) TestAppendAssignsPositions() {
	ctx := context.Background()

	first := s.appendEntry(ctx, testutil.TestWallets.Issuer)
	second := s.appendEntry(ctx, testutil.TestWallets.Issuer)
	third := s.appendEntry(ctx, testutil.TestWallets.Other)

	for i, entry := range []*models.Entry{first, second, third} {
		got, err := s.store.ByIndex(ctx, i)
		s.Require().NoError(err)
		s.Equal(entry.AssetID, got.AssetID)
		s.Equal(i, got.Position)
	}

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *PostgresStoreSuite) TestByIndexOutOfRange() {
	_, err := s.store.ByIndex(context.Background(), 0)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestByIssuerFiltersAndOrders() {
	ctx := context.Background()

	s.appendEntry(ctx, testutil.TestWallets.Issuer)
	s.appendEntry(ctx, testutil.TestWallets.Other)
	s.appendEntry(ctx, testutil.TestWallets.Issuer)

	entries, err := s.store.ByIssuer(ctx, testutil.TestWallets.Issuer)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Less(entries[0].Position, entries[1].Position)
	for _, e := range entries {
		s.Equal(testutil.TestWallets.Issuer, e.Issuer)
	}
}

func (s *PostgresStoreSuite) TestUpdateTogglesActive() {
	ctx := context.Background()

	entry := s.appendEntry(ctx, testutil.TestWallets.Issuer)
	entry.Active = false
	s.Require().NoError(s.store.Update(ctx, entry))

	got, err := s.store.Get(ctx, entry.AssetID)
	s.Require().NoError(err)
	s.False(got.Active)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.False(all[0].Active)
}
