// Package service implements the identity registry: the per-wallet
// verified/unverified whitelist every mint, transfer and purchase is gated on.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"brique/internal/identity/models"
	"brique/internal/ledger"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/events"
)

// Stable rejection reasons. Every failure is terminal: the attempted state
// change is rejected as a whole and the caller decides whether to retry.
var (
	ErrNotOwner        = dErrors.New(dErrors.CodeForbidden, "identity: caller is not the registry owner")
	ErrAlreadyVerified = dErrors.New(dErrors.CodeConflict, "identity: already verified")
	ErrNotVerified     = dErrors.New(dErrors.CodeConflict, "identity: not verified")
)

// Store persists verification records.
type Store interface {
	Get(ctx context.Context, wallet id.Address) (*models.VerificationRecord, error)
	Upsert(ctx context.Context, rec *models.VerificationRecord) error
	CountVerified(ctx context.Context) (int, error)
}

// Cache is the optional read cache for the verification flag.
type Cache interface {
	Lookup(ctx context.Context, wallet id.Address) (bool, bool)
	Store(ctx context.Context, wallet id.Address, verified bool)
	Invalidate(ctx context.Context, wallet id.Address)
}

// Service owns the verified flag per wallet. Only the platform owner may
// flip it; reads are unrestricted.
type Service struct {
	records       Store
	platformOwner id.Address
	tx            ledger.StoreTx

	cache     Cache
	logger    *slog.Logger
	publisher events.Publisher
	metrics   Metrics
}

// Metrics is the subset of identity metrics the service drives.
type Metrics interface {
	IncrementVerified()
	IncrementRevoked()
}

func New(records Store, platformOwner id.Address, tx ledger.StoreTx, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		records:       records,
		platformOwner: platformOwner,
		tx:            tx,
		cache:         cfg.cache,
		logger:        cfg.logger,
		publisher:     cfg.publisher,
		metrics:       cfg.metrics,
	}
}

// Verify whitelists a wallet. Caller must be the platform owner; verifying an
// already-verified wallet is rejected so the operator sees the stale state.
func (s *Service) Verify(ctx context.Context, caller, wallet id.Address) error {
	if caller != s.platformOwner {
		return ErrNotOwner
	}
	if wallet == id.ZeroAddress {
		return dErrors.New(dErrors.CodeInvalidInput, "identity: zero wallet address")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := time.Now()
		rec, err := s.records.Get(txCtx, wallet)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			rec = &models.VerificationRecord{Wallet: wallet, CreatedAt: now}
		case err != nil:
			return dErrors.Wrap(err, dErrors.CodeInternal, "identity: failed to load record")
		case rec.Verified:
			return ErrAlreadyVerified
		}

		rec.Verified = true
		rec.UpdatedAt = now
		if err := s.records.Upsert(txCtx, rec); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "identity: failed to store record")
		}

		s.invalidate(txCtx, wallet)
		s.emit(txCtx, events.ActionInvestorVerified, wallet)
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementVerified()
	}
	return nil
}

// Revoke removes a wallet from the whitelist. The verification record is
// toggled, never deleted; balances the wallet already holds are untouched.
func (s *Service) Revoke(ctx context.Context, caller, wallet id.Address) error {
	if caller != s.platformOwner {
		return ErrNotOwner
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		rec, err := s.records.Get(txCtx, wallet)
		if errors.Is(err, sentinel.ErrNotFound) {
			return ErrNotVerified
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "identity: failed to load record")
		}
		if !rec.Verified {
			return ErrNotVerified
		}

		rec.Verified = false
		rec.UpdatedAt = time.Now()
		if err := s.records.Upsert(txCtx, rec); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "identity: failed to store record")
		}

		s.invalidate(txCtx, wallet)
		s.emit(txCtx, events.ActionInvestorRevoked, wallet)
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementRevoked()
	}
	return nil
}

// IsVerified reports whether the wallet is currently whitelisted. Pure read,
// no access restriction; absent records read as unverified.
func (s *Service) IsVerified(ctx context.Context, wallet id.Address) (bool, error) {
	if s.cache != nil {
		if verified, hit := s.cache.Lookup(ctx, wallet); hit {
			return verified, nil
		}
	}

	rec, err := s.records.Get(ctx, wallet)
	if errors.Is(err, sentinel.ErrNotFound) {
		if s.cache != nil {
			s.cache.Store(ctx, wallet, false)
		}
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "identity: failed to load record")
	}

	if s.cache != nil {
		s.cache.Store(ctx, wallet, rec.Verified)
	}
	return rec.Verified, nil
}

// Get returns the full verification record for a wallet.
func (s *Service) Get(ctx context.Context, wallet id.Address) (*models.VerificationRecord, error) {
	rec, err := s.records.Get(ctx, wallet)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "identity: wallet not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "identity: failed to load record")
	}
	return rec, nil
}

// VerifiedCount returns the number of currently verified wallets.
func (s *Service) VerifiedCount(ctx context.Context) (int, error) {
	n, err := s.records.CountVerified(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "identity: failed to count records")
	}
	return n, nil
}

func (s *Service) invalidate(ctx context.Context, wallet id.Address) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, wallet)
	}
}

func (s *Service) emit(ctx context.Context, action events.Action, wallet id.Address) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(action),
			"wallet", wallet.Hex(),
			"log_type", "ledger_event",
		)
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, events.For(action, wallet)); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit ledger event",
			"action", action,
			"error", err,
		)
	}
}
