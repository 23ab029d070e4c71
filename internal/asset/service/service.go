// Package service implements the asset ledger: per-asset share balances
// under a max supply, a 20% per-holder concentration cap, a pause switch and
// identity gating on every mint and transfer.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"brique/internal/asset/models"
	"brique/internal/ledger"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/events"
)

var (
	ErrNotIssuer            = dErrors.New(dErrors.CodeForbidden, "asset: caller is not the issuer or platform owner")
	ErrNotOwner             = dErrors.New(dErrors.CodeForbidden, "asset: caller is not the platform owner")
	ErrAssetNotFound        = dErrors.New(dErrors.CodeNotFound, "asset: not found")
	ErrZeroAmount           = dErrors.New(dErrors.CodeInvalidInput, "asset: amount must be positive")
	ErrSenderNotVerified    = dErrors.New(dErrors.CodeConflict, "asset: sender not verified")
	ErrRecipientNotVerified = dErrors.New(dErrors.CodeConflict, "asset: recipient not verified")
	ErrTransfersPaused      = dErrors.New(dErrors.CodeConflict, "asset: transfers paused")
	ErrAlreadyPaused        = dErrors.New(dErrors.CodeConflict, "asset: already paused")
	ErrNotPaused            = dErrors.New(dErrors.CodeConflict, "asset: not paused")
	ErrCapExceeded          = dErrors.New(dErrors.CodeInvariantViolation, "asset: exceeds 20% holder cap")
	ErrSupplyExceeded       = dErrors.New(dErrors.CodeInvariantViolation, "asset: exceeds max supply")
	ErrInsufficientBalance  = dErrors.New(dErrors.CodeInvariantViolation, "asset: insufficient balance")
	ErrSaleNotLinked        = dErrors.New(dErrors.CodeForbidden, "asset: sale is not linked to this asset")
)

// Store persists asset ledgers and balances.
type Store interface {
	GetAsset(ctx context.Context, assetID id.AssetID) (*models.Asset, error)
	UpsertAsset(ctx context.Context, asset *models.Asset) error
	GetBalance(ctx context.Context, assetID id.AssetID, wallet id.Address) (uint64, error)
	SetBalance(ctx context.Context, assetID id.AssetID, wallet id.Address, balance uint64) error
	ListHolders(ctx context.Context, assetID id.AssetID) ([]models.Holding, error)
}

// Verifier reads the identity whitelist. Satisfied by the identity service.
type Verifier interface {
	IsVerified(ctx context.Context, wallet id.Address) (bool, error)
}

// Metrics is the subset of asset metrics the service drives.
type Metrics interface {
	AddMinted(amount uint64)
	AddBurned(amount uint64)
	IncrementTransfers()
	IncrementInvariantReject(reason string)
	SetPaused(paused bool)
}

// Service owns all balance mutations. Every mutation re-validates invariants
// against current state inside the shared serial transaction and applies all
// of its writes or none of them.
type Service struct {
	assets        Store
	verifier      Verifier
	platformOwner id.Address
	tx            ledger.StoreTx

	logger    *slog.Logger
	publisher events.Publisher
	metrics   Metrics
}

func New(assets Store, verifier Verifier, platformOwner id.Address, tx ledger.StoreTx, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		assets:        assets,
		verifier:      verifier,
		platformOwner: platformOwner,
		tx:            tx,
		logger:        cfg.logger,
		publisher:     cfg.publisher,
		metrics:       cfg.metrics,
	}
}

// CreateInTx registers a fresh ledger with zero supply. Must run inside the
// shared transaction; the factory drives it and owns the validation of name,
// symbol and issuer.
func (s *Service) CreateInTx(txCtx context.Context, name, symbol string, maxSupply uint64, issuer id.Address) (*models.Asset, error) {
	now := time.Now()
	asset := &models.Asset{
		ID:        id.NewAssetID(),
		Name:      name,
		Symbol:    symbol,
		MaxSupply: maxSupply,
		Issuer:    issuer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.assets.UpsertAsset(txCtx, asset); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to store asset")
	}
	return asset, nil
}

// Mint issues new shares to a verified wallet.
func (s *Service) Mint(ctx context.Context, caller id.Address, assetID id.AssetID, to id.Address, amount uint64) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.MintInTx(txCtx, caller, assetID, to, amount)
	})
}

// MintInTx is Mint for callers already inside the shared transaction.
func (s *Service) MintInTx(txCtx context.Context, caller id.Address, assetID id.AssetID, to id.Address, amount uint64) error {
	asset, err := s.loadAsset(txCtx, assetID)
	if err != nil {
		return err
	}
	if id.ResolveRole(caller, s.platformOwner, asset.Issuer, id.RoleIssuer) == id.RoleNone {
		return ErrNotIssuer
	}
	return s.mint(txCtx, asset, to, amount)
}

// MintForSaleInTx mints on behalf of a primary sale. Authority comes from
// the ledger's sale linkage, not from a wallet role. Must run inside the
// shared transaction so the purchase stays all-or-nothing.
func (s *Service) MintForSaleInTx(txCtx context.Context, saleID id.SaleID, assetID id.AssetID, to id.Address, amount uint64) error {
	asset, err := s.loadAsset(txCtx, assetID)
	if err != nil {
		return err
	}
	if asset.LinkedSale != saleID {
		return ErrSaleNotLinked
	}
	return s.mint(txCtx, asset, to, amount)
}

func (s *Service) mint(txCtx context.Context, asset *models.Asset, to id.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}

	verified, err := s.verifier.IsVerified(txCtx, to)
	if err != nil {
		return err
	}
	if !verified {
		return s.reject(ErrRecipientNotVerified, "recipient_not_verified")
	}

	balance, err := s.assets.GetBalance(txCtx, asset.ID, to)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to load balance")
	}
	// Overflow-safe forms: balance+amount and TotalSupply+amount would wrap
	// at uint64 and slip past the bounds.
	cap := asset.HolderCap()
	if amount > cap || balance > cap-amount {
		return s.reject(ErrCapExceeded, "cap_exceeded")
	}
	if amount > asset.MaxSupply || asset.TotalSupply > asset.MaxSupply-amount {
		return s.reject(ErrSupplyExceeded, "supply_exceeded")
	}

	asset.TotalSupply += amount
	asset.UpdatedAt = time.Now()
	if err := s.assets.SetBalance(txCtx, asset.ID, to, balance+amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to store balance")
	}
	if err := s.assets.UpsertAsset(txCtx, asset); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to store asset")
	}

	ev := events.For(events.ActionSharesMinted, to)
	ev.AssetID = asset.ID.String()
	ev.Quantity = amount
	s.emit(txCtx, ev)

	if s.metrics != nil {
		s.metrics.AddMinted(amount)
	}
	return nil
}

// Transfer moves shares between two verified wallets. The cap is re-checked
// on the recipient only; the sender's balance can only decrease.
func (s *Service) Transfer(ctx context.Context, from id.Address, assetID id.AssetID, to id.Address, amount uint64) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		asset, err := s.loadAsset(txCtx, assetID)
		if err != nil {
			return err
		}
		if asset.Paused {
			return ErrTransfersPaused
		}
		if amount == 0 {
			return ErrZeroAmount
		}

		for _, gate := range []struct {
			wallet id.Address
			reject error
			reason string
		}{
			{from, ErrSenderNotVerified, "sender_not_verified"},
			{to, ErrRecipientNotVerified, "recipient_not_verified"},
		} {
			verified, err := s.verifier.IsVerified(txCtx, gate.wallet)
			if err != nil {
				return err
			}
			if !verified {
				return s.reject(gate.reject, gate.reason)
			}
		}

		fromBalance, err := s.assets.GetBalance(txCtx, assetID, from)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to load balance")
		}
		if fromBalance < amount {
			return s.reject(ErrInsufficientBalance, "insufficient_balance")
		}

		// A self-transfer nets to zero; validated above, balances untouched.
		if from != to {
			toBalance, err := s.assets.GetBalance(txCtx, assetID, to)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to load balance")
			}
			cap := asset.HolderCap()
			if amount > cap || toBalance > cap-amount {
				return s.reject(ErrCapExceeded, "cap_exceeded")
			}

			if err := s.assets.SetBalance(txCtx, assetID, from, fromBalance-amount); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to store balance")
			}
			if err := s.assets.SetBalance(txCtx, assetID, to, toBalance+amount); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to store balance")
			}
		}

		ev := events.For(events.ActionSharesTransferred, from)
		ev.AssetID = assetID.String()
		ev.Quantity = amount
		s.emit(txCtx, ev)

		if s.metrics != nil {
			s.metrics.IncrementTransfers()
		}
		return nil
	})
}

// Burn removes shares from a wallet and shrinks total supply. No identity
// gate: burning is an issuer action, not a trade.
func (s *Service) Burn(ctx context.Context, caller id.Address, assetID id.AssetID, from id.Address, amount uint64) error {
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		asset, err := s.loadAsset(txCtx, assetID)
		if err != nil {
			return err
		}
		if id.ResolveRole(caller, s.platformOwner, asset.Issuer, id.RoleIssuer) == id.RoleNone {
			return ErrNotIssuer
		}
		if amount == 0 {
			return ErrZeroAmount
		}

		balance, err := s.assets.GetBalance(txCtx, assetID, from)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to load balance")
		}
		if balance < amount {
			return s.reject(ErrInsufficientBalance, "insufficient_balance")
		}

		asset.TotalSupply -= amount
		asset.UpdatedAt = time.Now()
		if err := s.assets.SetBalance(txCtx, assetID, from, balance-amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to store balance")
		}
		if err := s.assets.UpsertAsset(txCtx, asset); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to store asset")
		}

		ev := events.For(events.ActionSharesBurned, from)
		ev.AssetID = assetID.String()
		ev.Quantity = amount
		s.emit(txCtx, ev)

		if s.metrics != nil {
			s.metrics.AddBurned(amount)
		}
		return nil
	})
}

// Pause halts all transfers on the ledger. Pausing an already-paused ledger
// is rejected so the operator sees the stale state.
func (s *Service) Pause(ctx context.Context, caller id.Address, assetID id.AssetID) error {
	return s.setPaused(ctx, caller, assetID, true)
}

// Unpause resumes transfers.
func (s *Service) Unpause(ctx context.Context, caller id.Address, assetID id.AssetID) error {
	return s.setPaused(ctx, caller, assetID, false)
}

func (s *Service) setPaused(ctx context.Context, caller id.Address, assetID id.AssetID, paused bool) error {
	if caller != s.platformOwner {
		return ErrNotOwner
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		asset, err := s.loadAsset(txCtx, assetID)
		if err != nil {
			return err
		}
		if asset.Paused == paused {
			if paused {
				return ErrAlreadyPaused
			}
			return ErrNotPaused
		}

		asset.Paused = paused
		asset.UpdatedAt = time.Now()
		if err := s.assets.UpsertAsset(txCtx, asset); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to store asset")
		}

		action := events.ActionTransfersUnpaused
		if paused {
			action = events.ActionTransfersPaused
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
		s.metrics.SetPaused(paused)
	}
	return nil
}

// SetSaleContract links the primary sale allowed to mint against this ledger.
func (s *Service) SetSaleContract(ctx context.Context, caller id.Address, assetID id.AssetID, saleID id.SaleID) error {
	if saleID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "asset: sale ID is required")
	}
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		asset, err := s.loadAsset(txCtx, assetID)
		if err != nil {
			return err
		}
		if id.ResolveRole(caller, s.platformOwner, asset.Issuer, id.RoleIssuer) == id.RoleNone {
			return ErrNotIssuer
		}

		asset.LinkedSale = saleID
		asset.UpdatedAt = time.Now()
		if err := s.assets.UpsertAsset(txCtx, asset); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to store asset")
		}
		return nil
	})
}

// Get returns the asset ledger.
func (s *Service) Get(ctx context.Context, assetID id.AssetID) (*models.Asset, error) {
	return s.loadAsset(ctx, assetID)
}

// GetInTx is Get for callers already inside the shared transaction.
func (s *Service) GetInTx(txCtx context.Context, assetID id.AssetID) (*models.Asset, error) {
	return s.loadAsset(txCtx, assetID)
}

// Balance returns a wallet's position; unknown wallets hold zero.
func (s *Service) Balance(ctx context.Context, assetID id.AssetID, wallet id.Address) (uint64, error) {
	if _, err := s.loadAsset(ctx, assetID); err != nil {
		return 0, err
	}
	balance, err := s.assets.GetBalance(ctx, assetID, wallet)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to load balance")
	}
	return balance, nil
}

// Holders returns all non-zero positions, largest first.
func (s *Service) Holders(ctx context.Context, assetID id.AssetID) ([]models.Holding, error) {
	if _, err := s.loadAsset(ctx, assetID); err != nil {
		return nil, err
	}
	holders, err := s.assets.ListHolders(ctx, assetID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to list holders")
	}
	return holders, nil
}

func (s *Service) loadAsset(ctx context.Context, assetID id.AssetID) (*models.Asset, error) {
	asset, err := s.assets.GetAsset(ctx, assetID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "asset: failed to load asset")
	}
	return asset, nil
}

func (s *Service) reject(rejection error, reason string) error {
	if s.metrics != nil {
		s.metrics.IncrementInvariantReject(reason)
	}
	return rejection
}

func (s *Service) emit(ctx context.Context, ev events.Event) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(ev.Action),
			"wallet", ev.Wallet,
			"asset_id", ev.AssetID,
			"quantity", ev.Quantity,
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
