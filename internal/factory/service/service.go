// Package service implements the asset factory: the owner-only entry point
// that deploys asset ledgers and keeps the ordered index of everything it
// ever deployed, with a soft active flag per asset.
package service

import (
	"context"
	"errors"
	"log/slog"

	assetmodels "brique/internal/asset/models"
	"brique/internal/factory/models"
	"brique/internal/ledger"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/events"
)

var (
	ErrNotOwner        = dErrors.New(dErrors.CodeForbidden, "factory: caller is not the factory owner")
	ErrEmptyName       = dErrors.New(dErrors.CodeInvalidInput, "factory: name is empty")
	ErrEmptySymbol     = dErrors.New(dErrors.CodeInvalidInput, "factory: symbol is empty")
	ErrZeroIssuer      = dErrors.New(dErrors.CodeInvalidInput, "factory: zero issuer address")
	ErrZeroSupply      = dErrors.New(dErrors.CodeInvalidInput, "factory: max supply must be positive")
	ErrEntryNotFound   = dErrors.New(dErrors.CodeNotFound, "factory: asset not indexed")
	ErrAlreadyActive   = dErrors.New(dErrors.CodeConflict, "factory: asset already active")
	ErrAlreadyInactive = dErrors.New(dErrors.CodeConflict, "factory: asset already inactive")
)

// Store persists the factory index.
type Store interface {
	Append(ctx context.Context, entry *models.Entry) error
	Get(ctx context.Context, assetID id.AssetID) (*models.Entry, error)
	Update(ctx context.Context, entry *models.Entry) error
	Count(ctx context.Context) (int, error)
	ByIndex(ctx context.Context, position int) (*models.Entry, error)
	ByIssuer(ctx context.Context, issuer id.Address) ([]models.Entry, error)
	List(ctx context.Context) ([]models.Entry, error)
}

// Deployer creates asset ledgers. Satisfied by the asset service; runs
// inside the shared transaction so the ledger and its index entry commit
// together.
type Deployer interface {
	CreateInTx(txCtx context.Context, name, symbol string, maxSupply uint64, issuer id.Address) (*assetmodels.Asset, error)
}

// Metrics is the subset of factory metrics the service drives.
type Metrics interface {
	IncrementCreated()
	SetActive(active bool)
}

// Service owns asset deployment and the index. Deactivation is a registry
// flag for the presentation layer; it never cascades into ledger state.
type Service struct {
	index         Store
	deployer      Deployer
	platformOwner id.Address
	tx            ledger.StoreTx

	logger    *slog.Logger
	publisher events.Publisher
	metrics   Metrics
}

func New(index Store, deployer Deployer, platformOwner id.Address, tx ledger.StoreTx, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		index:         index,
		deployer:      deployer,
		platformOwner: platformOwner,
		tx:            tx,
		logger:        cfg.logger,
		publisher:     cfg.publisher,
		metrics:       cfg.metrics,
	}
}

// CreateAsset deploys a fresh asset ledger and appends it to the index,
// active by default.
func (s *Service) CreateAsset(ctx context.Context, caller id.Address, name, symbol string, maxSupply uint64, issuer id.Address) (*assetmodels.Asset, error) {
	if caller != s.platformOwner {
		return nil, ErrNotOwner
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	if issuer == id.ZeroAddress {
		return nil, ErrZeroIssuer
	}
	if maxSupply == 0 {
		return nil, ErrZeroSupply
	}

	var asset *assetmodels.Asset
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		asset, err = s.deployer.CreateInTx(txCtx, name, symbol, maxSupply, issuer)
		if err != nil {
			return err
		}

		entry := &models.Entry{
			AssetID:   asset.ID,
			Issuer:    issuer,
			Active:    true,
			CreatedAt: asset.CreatedAt,
		}
		if err := s.index.Append(txCtx, entry); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "factory: failed to index asset")
		}

		ev := events.For(events.ActionAssetCreated, issuer)
		ev.AssetID = asset.ID.String()
		s.emit(txCtx, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	return asset, nil
}

// Activate restores an asset's visibility flag.
func (s *Service) Activate(ctx context.Context, caller id.Address, assetID id.AssetID) error {
	return s.setActive(ctx, caller, assetID, true)
}

// Deactivate soft-deletes an asset from the catalog. Ledger balances and
// sale accounting are untouched.
func (s *Service) Deactivate(ctx context.Context, caller id.Address, assetID id.AssetID) error {
	return s.setActive(ctx, caller, assetID, false)
}

func (s *Service) setActive(ctx context.Context, caller id.Address, assetID id.AssetID, active bool) error {
	if caller != s.platformOwner {
		return ErrNotOwner
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		entry, err := s.loadEntry(txCtx, assetID)
		if err != nil {
			return err
		}
		if entry.Active == active {
			if active {
				return ErrAlreadyActive
			}
			return ErrAlreadyInactive
		}

		entry.Active = active
		if err := s.index.Update(txCtx, entry); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "factory: failed to update index")
		}

		action := events.ActionAssetDeactivated
		if active {
			action = events.ActionAssetActivated
		}
		ev := events.For(action, caller)
		ev.AssetID = assetID.String()
		s.emit(txCtx, ev)
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.SetActive(active)
	}
	return nil
}

// Count returns how many assets the factory ever deployed.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.index.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "factory: failed to count index")
	}
	return n, nil
}

// ByIndex returns the entry at an append position.
func (s *Service) ByIndex(ctx context.Context, position int) (*models.Entry, error) {
	entry, err := s.index.ByIndex(ctx, position)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "factory: failed to load index")
	}
	return entry, nil
}

// ByIssuer returns every entry an issuer owns, in index order.
func (s *Service) ByIssuer(ctx context.Context, issuer id.Address) ([]models.Entry, error) {
	entries, err := s.index.ByIssuer(ctx, issuer)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "factory: failed to load index")
	}
	return entries, nil
}

// List returns the full index in append order.
func (s *Service) List(ctx context.Context) ([]models.Entry, error) {
	entries, err := s.index.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "factory: failed to load index")
	}
	return entries, nil
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, assetID id.AssetID) (*models.Entry, error) {
	return s.loadEntry(ctx, assetID)
}

func (s *Service) loadEntry(ctx context.Context, assetID id.AssetID) (*models.Entry, error) {
	entry, err := s.index.Get(ctx, assetID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "factory: failed to load index")
	}
	return entry, nil
}

func (s *Service) emit(ctx context.Context, ev events.Event) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(ev.Action),
			"asset_id", ev.AssetID,
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
