//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"brique/internal/kyc/models"
	"brique/internal/kyc/store"
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
	err := s.postgres.TruncateTables(context.Background(), "kyc_requests")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) fingerprint(b byte) id.Fingerprint {
	var fp id.Fingerprint
	fp[31] = b
	return fp
}

func (s *PostgresStoreSuite) TestGetMissingWallet() {
	_, err := s.store.Get(context.Background(), testutil.TestWallets.Investor)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpsertRoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	req := &models.Request{
		Wallet:      testutil.TestWallets.Investor,
		Fingerprint: s.fingerprint(0x07),
		SubmittedAt: now,
	}
	s.Require().NoError(s.store.Upsert(ctx, req))

	got, err := s.store.Get(ctx, testutil.TestWallets.Investor)
	s.Require().NoError(err)
	s.Equal(req.Fingerprint, got.Fingerprint)
	s.Equal(models.StatusSubmitted, got.Status())
	s.True(got.DecidedAt.IsZero())
}

func (s *PostgresStoreSuite) TestUpsertRecordsDecision() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	req := &models.Request{
		Wallet:      testutil.TestWallets.Investor,
		Fingerprint: s.fingerprint(0x07),
		SubmittedAt: now,
	}
	s.Require().NoError(s.store.Upsert(ctx, req))

	req.Approved = true
	req.DecidedAt = now.Add(time.Minute)
	s.Require().NoError(s.store.Upsert(ctx, req))

	got, err := s.store.Get(ctx, testutil.TestWallets.Investor)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, got.Status())
	s.False(got.DecidedAt.IsZero())
}

func (s *PostgresStoreSuite) TestCountByStatus() {
	ctx := context.Background()
	now := time.Now().UTC()

	wallets := []struct {
		hex      string
		approved bool
		rejected bool
	}{
		{"0x2000000000000000000000000000000000000001", false, false},
		{"0x2000000000000000000000000000000000000002", false, false},
		{"0x2000000000000000000000000000000000000003", true, false},
		{"0x2000000000000000000000000000000000000004", false, true},
	}
	for _, w := range wallets {
		addr, err := id.ParseAddress(w.hex)
		s.Require().NoError(err)
		req := &models.Request{
			Wallet:      addr,
			Fingerprint: s.fingerprint(0x01),
			Approved:    w.approved,
			Rejected:    w.rejected,
			SubmittedAt: now,
		}
		if req.Decided() {
			req.DecidedAt = now
		}
		s.Require().NoError(s.store.Upsert(ctx, req))
	}

	pending, err := s.store.CountByStatus(ctx, models.StatusSubmitted)
	s.Require().NoError(err)
	s.Equal(2, pending)

	approved, err := s.store.CountByStatus(ctx, models.StatusApproved)
	s.Require().NoError(err)
	s.Equal(1, approved)

	rejected, err := s.store.CountByStatus(ctx, models.StatusRejected)
	s.Require().NoError(err)
	s.Equal(1, rejected)
}
