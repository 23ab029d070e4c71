// Package service implements the KYC request registry. The per-wallet state
// machine is SUBMITTED -> {APPROVED, REJECTED}; a rejected wallet may submit
// again, replacing the rejected record with a fresh submission.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"brique/internal/kyc/models"
	"brique/internal/ledger"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/events"
)

var (
	ErrNotOwner         = dErrors.New(dErrors.CodeForbidden, "kyc: caller is not the registry owner")
	ErrEmptyFingerprint = dErrors.New(dErrors.CodeInvalidInput, "kyc: empty fingerprint")
	ErrAlreadySubmitted = dErrors.New(dErrors.CodeConflict, "kyc: request already submitted")
	ErrRequestNotFound  = dErrors.New(dErrors.CodeNotFound, "kyc: request not found")
	ErrAlreadyDecided   = dErrors.New(dErrors.CodeConflict, "kyc: request already decided")
	ErrAlreadyRejected  = dErrors.New(dErrors.CodeConflict, "kyc: request already rejected")
)

// Store persists KYC requests.
type Store interface {
	Get(ctx context.Context, wallet id.Address) (*models.Request, error)
	Upsert(ctx context.Context, req *models.Request) error
	CountByStatus(ctx context.Context, status models.Status) (int, error)
}

// Metrics is the subset of KYC metrics the service drives.
type Metrics interface {
	IncrementSubmitted()
	IncrementApproved()
	IncrementRejected(wasPending bool)
}

// Service owns the per-wallet request lifecycle. Submission is open to any
// wallet; decisions belong to the platform owner. Approving a request never
// touches the identity whitelist: compliance decision and trading
// authorization are two deliberate, separate calls.
type Service struct {
	requests      Store
	platformOwner id.Address
	tx            ledger.StoreTx

	logger    *slog.Logger
	publisher events.Publisher
	metrics   Metrics
}

func New(requests Store, platformOwner id.Address, tx ledger.StoreTx, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		requests:      requests,
		platformOwner: platformOwner,
		tx:            tx,
		logger:        cfg.logger,
		publisher:     cfg.publisher,
		metrics:       cfg.metrics,
	}
}

// Submit records a fingerprint for the calling wallet. A wallet holds at
// most one live request; only a rejected request may be replaced.
func (s *Service) Submit(ctx context.Context, wallet id.Address, fingerprint id.Fingerprint) (*models.Request, error) {
	if fingerprint == id.ZeroFingerprint {
		return nil, ErrEmptyFingerprint
	}

	var out *models.Request
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.requests.Get(txCtx, wallet)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "kyc: failed to load request")
		}
		if existing != nil && !existing.Rejected {
			return ErrAlreadySubmitted
		}

		req := &models.Request{
			Wallet:      wallet,
			Fingerprint: fingerprint,
			SubmittedAt: time.Now(),
		}
		if err := s.requests.Upsert(txCtx, req); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "kyc: failed to store request")
		}
		out = req

		ev := events.For(events.ActionKYCSubmitted, wallet)
		ev.Fingerprint = fingerprint.Hex()
		s.emit(txCtx, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementSubmitted()
	}
	return out, nil
}

// Approve transitions an undecided request to APPROVED.
func (s *Service) Approve(ctx context.Context, caller, wallet id.Address) error {
	if caller != s.platformOwner {
		return ErrNotOwner
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.loadRequest(txCtx, wallet)
		if err != nil {
			return err
		}
		if req.Decided() {
			return ErrAlreadyDecided
		}

		req.Approved = true
		req.DecidedAt = time.Now()
		if err := s.requests.Upsert(txCtx, req); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "kyc: failed to store request")
		}

		s.emit(txCtx, events.For(events.ActionKYCApproved, wallet))
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementApproved()
	}
	return nil
}

// Reject transitions a request to REJECTED. Rejection is also allowed from
// APPROVED so compliance can reverse a decision; a rejected request stays
// rejected until the wallet resubmits.
func (s *Service) Reject(ctx context.Context, caller, wallet id.Address) error {
	if caller != s.platformOwner {
		return ErrNotOwner
	}

	var wasPending bool
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.loadRequest(txCtx, wallet)
		if err != nil {
			return err
		}
		if req.Rejected {
			return ErrAlreadyRejected
		}
		wasPending = !req.Approved

		req.Approved = false
		req.Rejected = true
		req.DecidedAt = time.Now()
		if err := s.requests.Upsert(txCtx, req); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "kyc: failed to store request")
		}

		s.emit(txCtx, events.For(events.ActionKYCRejected, wallet))
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementRejected(wasPending)
	}
	return nil
}

// Get returns the request for a wallet.
func (s *Service) Get(ctx context.Context, wallet id.Address) (*models.Request, error) {
	return s.loadRequest(ctx, wallet)
}

// PendingCount returns the number of undecided requests.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	n, err := s.requests.CountByStatus(ctx, models.StatusSubmitted)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "kyc: failed to count requests")
	}
	return n, nil
}

func (s *Service) loadRequest(ctx context.Context, wallet id.Address) (*models.Request, error) {
	req, err := s.requests.Get(ctx, wallet)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "kyc: failed to load request")
	}
	return req, nil
}

func (s *Service) emit(ctx context.Context, ev events.Event) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(ev.Action),
			"wallet", ev.Wallet,
			"log_type", "ledger_event",
		)
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, ev); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit ledger event",
			"action", ev.Action,
			"error", err,
		)
	}
}
