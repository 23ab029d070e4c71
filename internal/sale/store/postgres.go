package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"brique/internal/sale/models"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
)

// PostgresStore persists sales and contributions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed sale store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetSale(ctx context.Context, saleID id.SaleID) (*models.Sale, error) {
	query := `
		SELECT id, asset_id, beneficiary, price_per_unit, min_purchase, active,
		       total_raised, contract_balance, created_at, updated_at
		FROM sales
		WHERE id = $1
	`
	var (
		sale           models.Sale
		rawID          uuid.UUID
		rawAssetID     uuid.UUID
		beneficiaryHex string
	)
	err := s.db.QueryRowContext(ctx, query, saleID.String()).Scan(
		&rawID, &rawAssetID, &beneficiaryHex, &sale.PricePerUnit, &sale.MinPurchase, &sale.Active,
		&sale.TotalRaised, &sale.ContractBalance, &sale.CreatedAt, &sale.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find sale: %w", err)
	}
	sale.ID = id.SaleID(rawID)
	sale.AssetID = id.AssetID(rawAssetID)
	beneficiary, err := id.ParseAddress(beneficiaryHex)
	if err != nil {
		return nil, fmt.Errorf("scan sale beneficiary: %w", err)
	}
	sale.Beneficiary = beneficiary
	return &sale, nil
}

func (s *PostgresStore) UpsertSale(ctx context.Context, sale *models.Sale) error {
	if sale == nil {
		return fmt.Errorf("sale is required")
	}
	query := `
		INSERT INTO sales (id, asset_id, beneficiary, price_per_unit, min_purchase, active,
		                   total_raised, contract_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET active = EXCLUDED.active,
		    total_raised = EXCLUDED.total_raised,
		    contract_balance = EXCLUDED.contract_balance,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		sale.ID.String(), sale.AssetID.String(), sale.Beneficiary.Hex(),
		sale.PricePerUnit, sale.MinPurchase, sale.Active,
		sale.TotalRaised, sale.ContractBalance, sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert sale: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetContribution(ctx context.Context, saleID id.SaleID, wallet id.Address) (uint64, error) {
	var amount uint64
	err := s.db.QueryRowContext(ctx,
		`SELECT amount FROM sale_contributions WHERE sale_id = $1 AND wallet = $2`,
		saleID.String(), wallet.Hex(),
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find contribution: %w", err)
	}
	return amount, nil
}

func (s *PostgresStore) SetContribution(ctx context.Context, saleID id.SaleID, wallet id.Address, amount uint64) error {
	query := `
		INSERT INTO sale_contributions (sale_id, wallet, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (sale_id, wallet) DO UPDATE
		SET amount = EXCLUDED.amount
	`
	_, err := s.db.ExecContext(ctx, query, saleID.String(), wallet.Hex(), amount)
	if err != nil {
		return fmt.Errorf("set contribution: %w", err)
	}
	return nil
}
