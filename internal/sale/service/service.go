// Package service implements the primary sale: a fixed-price exchange of
// settlement currency for freshly minted shares, with exact-change refund
// computed inside the same atomic purchase.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	assetmodels "brique/internal/asset/models"
	"brique/internal/ledger"
	"brique/internal/sale/models"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
	dErrors "brique/pkg/domain-errors"
	"brique/pkg/platform/events"
)

var (
	ErrNotOwner           = dErrors.New(dErrors.CodeForbidden, "sale: caller is not the platform owner")
	ErrNotBeneficiary     = dErrors.New(dErrors.CodeForbidden, "sale: caller is not the beneficiary")
	ErrNotAuthorized      = dErrors.New(dErrors.CodeForbidden, "sale: caller is not the beneficiary or platform owner")
	ErrSaleNotFound       = dErrors.New(dErrors.CodeNotFound, "sale: not found")
	ErrZeroPrice          = dErrors.New(dErrors.CodeInvalidInput, "sale: price must be positive")
	ErrZeroBeneficiary    = dErrors.New(dErrors.CodeInvalidInput, "sale: zero beneficiary address")
	ErrNotActive          = dErrors.New(dErrors.CodeConflict, "sale: not active")
	ErrAlreadyActive      = dErrors.New(dErrors.CodeConflict, "sale: already active")
	ErrAlreadyInactive    = dErrors.New(dErrors.CodeConflict, "sale: already inactive")
	ErrNoValue            = dErrors.New(dErrors.CodeInvalidInput, "sale: no value sent")
	ErrBelowMinimum       = dErrors.New(dErrors.CodeInvalidInput, "sale: below minimum purchase")
	ErrBuyerNotVerified   = dErrors.New(dErrors.CodeConflict, "sale: wallet not verified")
	ErrZeroQuantity       = dErrors.New(dErrors.CodeInvalidInput, "sale: value buys no whole unit")
	ErrInsufficientFunds  = dErrors.New(dErrors.CodeInvariantViolation, "sale: insufficient contract balance")
	ErrZeroWithdrawTarget = dErrors.New(dErrors.CodeInvalidInput, "sale: zero withdrawal address")
)

// Store persists sales and per-investor contributions.
type Store interface {
	GetSale(ctx context.Context, saleID id.SaleID) (*models.Sale, error)
	UpsertSale(ctx context.Context, sale *models.Sale) error
	GetContribution(ctx context.Context, saleID id.SaleID, wallet id.Address) (uint64, error)
	SetContribution(ctx context.Context, saleID id.SaleID, wallet id.Address, amount uint64) error
}

// Ledger is the asset-side port the sale drives. Satisfied by the asset
// service; the InTx methods run inside the shared transaction so a purchase
// commits its mint and its accounting together or not at all.
type Ledger interface {
	GetInTx(txCtx context.Context, assetID id.AssetID) (*assetmodels.Asset, error)
	MintForSaleInTx(txCtx context.Context, saleID id.SaleID, assetID id.AssetID, to id.Address, amount uint64) error
	Balance(ctx context.Context, assetID id.AssetID, wallet id.Address) (uint64, error)
}

// Verifier reads the identity whitelist.
type Verifier interface {
	IsVerified(ctx context.Context, wallet id.Address) (bool, error)
}

// Metrics is the subset of sale metrics the service drives.
type Metrics interface {
	RecordPurchase(cost, change uint64)
	RecordWithdrawal(amount uint64)
	SetActive(active bool)
}

// Service owns the sale lifecycle and the purchase settlement. The exact
// change rule is absolute: for sent value v and price p, quantity = v/p,
// cost = quantity*p, change = v-cost, and cost+change == v always.
type Service struct {
	sales         Store
	assets        Ledger
	verifier      Verifier
	platformOwner id.Address
	tx            ledger.StoreTx

	logger    *slog.Logger
	publisher events.Publisher
	metrics   Metrics
}

func New(sales Store, assets Ledger, verifier Verifier, platformOwner id.Address, tx ledger.StoreTx, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		sales:         sales,
		assets:        assets,
		verifier:      verifier,
		platformOwner: platformOwner,
		tx:            tx,
		logger:        cfg.logger,
		publisher:     cfg.publisher,
		metrics:       cfg.metrics,
	}
}

// Create opens a sale for an existing asset. Sales start inactive; the
// beneficiary activates when the offering goes live.
func (s *Service) Create(ctx context.Context, caller id.Address, assetID id.AssetID, beneficiary id.Address, pricePerUnit, minPurchase uint64) (*models.Sale, error) {
	if caller != s.platformOwner {
		return nil, ErrNotOwner
	}
	if pricePerUnit == 0 {
		return nil, ErrZeroPrice
	}
	if beneficiary == id.ZeroAddress {
		return nil, ErrZeroBeneficiary
	}
	if assetID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "sale: asset ID is required")
	}

	var sale *models.Sale
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.assets.GetInTx(txCtx, assetID); err != nil {
			return err
		}

		now := time.Now()
		sale = &models.Sale{
			ID:           id.NewSaleID(),
			AssetID:      assetID,
			Beneficiary:  beneficiary,
			PricePerUnit: pricePerUnit,
			MinPurchase:  minPurchase,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.sales.UpsertSale(txCtx, sale); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "sale: failed to store sale")
		}

		ev := events.For(events.ActionSaleCreated, beneficiary)
		ev.SaleID = sale.ID.String()
		ev.AssetID = assetID.String()
		s.emit(txCtx, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Activate opens the sale for purchases.
func (s *Service) Activate(ctx context.Context, caller id.Address, saleID id.SaleID) error {
	return s.setActive(ctx, caller, saleID, true)
}

// Deactivate closes the sale. Ledger state and raised funds are untouched.
func (s *Service) Deactivate(ctx context.Context, caller id.Address, saleID id.SaleID) error {
	return s.setActive(ctx, caller, saleID, false)
}

func (s *Service) setActive(ctx context.Context, caller id.Address, saleID id.SaleID, active bool) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.loadSale(txCtx, saleID)
		if err != nil {
			return err
		}
		if id.ResolveRole(caller, s.platformOwner, sale.Beneficiary, id.RoleBeneficiary) == id.RoleNone {
			return ErrNotAuthorized
		}
		if sale.Active == active {
			if active {
				return ErrAlreadyActive
			}
			return ErrAlreadyInactive
		}

		sale.Active = active
		sale.UpdatedAt = time.Now()
		if err := s.sales.UpsertSale(txCtx, sale); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "sale: failed to store sale")
		}

		action := events.ActionSaleDeactivated
		if active {
			action = events.ActionSaleActivated
		}
		ev := events.For(action, caller)
		ev.SaleID = saleID.String()
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

// Buy settles a purchase. All checks precede all mutations; a failed mint
// reverts the whole purchase and the full value stays with the buyer. The
// refund is never a separate movement: only cost is ever captured.
func (s *Service) Buy(ctx context.Context, buyer id.Address, saleID id.SaleID, value uint64) (*models.Purchase, error) {
	var purchase *models.Purchase
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.loadSale(txCtx, saleID)
		if err != nil {
			return err
		}
		if !sale.Active {
			return ErrNotActive
		}
		if value == 0 {
			return ErrNoValue
		}
		if value < sale.MinPurchase {
			return ErrBelowMinimum
		}

		verified, err := s.verifier.IsVerified(txCtx, buyer)
		if err != nil {
			return err
		}
		if !verified {
			return ErrBuyerNotVerified
		}

		quantity := value / sale.PricePerUnit
		if quantity == 0 {
			return ErrZeroQuantity
		}
		cost := quantity * sale.PricePerUnit
		change := value - cost

		if err := s.assets.MintForSaleInTx(txCtx, saleID, sale.AssetID, buyer, quantity); err != nil {
			return err
		}

		contributed, err := s.sales.GetContribution(txCtx, saleID, buyer)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "sale: failed to load contribution")
		}
		sale.TotalRaised += cost
		sale.ContractBalance += cost
		sale.UpdatedAt = time.Now()
		if err := s.sales.SetContribution(txCtx, saleID, buyer, contributed+cost); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "sale: failed to store contribution")
		}
		if err := s.sales.UpsertSale(txCtx, sale); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "sale: failed to store sale")
		}

		purchase = &models.Purchase{Quantity: quantity, Cost: cost, Change: change}

		ev := events.For(events.ActionPurchaseExecuted, buyer)
		ev.SaleID = saleID.String()
		ev.AssetID = sale.AssetID.String()
		ev.Quantity = quantity
		ev.Cost = cost
		ev.Change = change
		s.emit(txCtx, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordPurchase(purchase.Cost, purchase.Change)
	}
	return purchase, nil
}

// Withdraw moves raised currency out of the sale. Beneficiary only; the
// platform owner has no administrative path into the funds.
func (s *Service) Withdraw(ctx context.Context, caller id.Address, saleID id.SaleID, to id.Address, amount uint64) error {
	if to == id.ZeroAddress {
		return ErrZeroWithdrawTarget
	}
	if amount == 0 {
		return ErrNoValue
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.loadSale(txCtx, saleID)
		if err != nil {
			return err
		}
		if caller != sale.Beneficiary {
			return ErrNotBeneficiary
		}
		if sale.ContractBalance < amount {
			return ErrInsufficientFunds
		}

		sale.ContractBalance -= amount
		sale.UpdatedAt = time.Now()
		if err := s.sales.UpsertSale(txCtx, sale); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "sale: failed to store sale")
		}

		ev := events.For(events.ActionWithdrawalExecuted, to)
		ev.SaleID = saleID.String()
		ev.Amount = amount
		s.emit(txCtx, ev)
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordWithdrawal(amount)
	}
	return nil
}

// Get returns the sale.
func (s *Service) Get(ctx context.Context, saleID id.SaleID) (*models.Sale, error) {
	return s.loadSale(ctx, saleID)
}

// Contribution returns the currency a wallet has contributed so far. The
// value is monotonically non-decreasing.
func (s *Service) Contribution(ctx context.Context, saleID id.SaleID, wallet id.Address) (uint64, error) {
	if _, err := s.loadSale(ctx, saleID); err != nil {
		return 0, err
	}
	contributed, err := s.sales.GetContribution(ctx, saleID, wallet)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "sale: failed to load contribution")
	}
	return contributed, nil
}

// InvestorStats returns the per-wallet view: contribution plus the wallet's
// current token position in the sale's asset.
func (s *Service) InvestorStats(ctx context.Context, saleID id.SaleID, wallet id.Address) (*models.InvestorStats, error) {
	sale, err := s.loadSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	var contributed, balance uint64
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.sales.GetContribution(gCtx, saleID, wallet)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "sale: failed to load contribution")
		}
		contributed = c
		return nil
	})
	g.Go(func() error {
		b, err := s.assets.Balance(gCtx, sale.AssetID, wallet)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &models.InvestorStats{
		Wallet:       wallet,
		Contributed:  contributed,
		TokenBalance: balance,
	}, nil
}

func (s *Service) loadSale(ctx context.Context, saleID id.SaleID) (*models.Sale, error) {
	sale, err := s.sales.GetSale(ctx, saleID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "sale: failed to load sale")
	}
	return sale, nil
}

func (s *Service) emit(ctx context.Context, ev events.Event) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(ev.Action),
			"wallet", ev.Wallet,
			"sale_id", ev.SaleID,
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
