package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"brique/internal/asset/models"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
)

// PostgresStore persists asset ledgers and balances in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed asset store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetAsset(ctx context.Context, assetID id.AssetID) (*models.Asset, error) {
	query := `
		SELECT id, name, symbol, max_supply, total_supply, issuer, linked_sale, paused, created_at, updated_at
		FROM assets
		WHERE id = $1
	`
	var (
		asset      models.Asset
		rawID      uuid.UUID
		issuerHex  string
		linkedSale sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, assetID.String()).Scan(
		&rawID, &asset.Name, &asset.Symbol, &asset.MaxSupply, &asset.TotalSupply,
		&issuerHex, &linkedSale, &asset.Paused, &asset.CreatedAt, &asset.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find asset: %w", err)
	}
	asset.ID = id.AssetID(rawID)
	issuer, err := id.ParseAddress(issuerHex)
	if err != nil {
		return nil, fmt.Errorf("scan asset issuer: %w", err)
	}
	asset.Issuer = issuer
	if linkedSale.Valid {
		saleID, err := id.ParseSaleID(linkedSale.String)
		if err != nil {
			return nil, fmt.Errorf("scan asset linked sale: %w", err)
		}
		asset.LinkedSale = saleID
	}
	return &asset, nil
}

func (s *PostgresStore) UpsertAsset(ctx context.Context, asset *models.Asset) error {
	if asset == nil {
		return fmt.Errorf("asset is required")
	}
	query := `
		INSERT INTO assets (id, name, symbol, max_supply, total_supply, issuer, linked_sale, paused, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET total_supply = EXCLUDED.total_supply,
		    linked_sale = EXCLUDED.linked_sale,
		    paused = EXCLUDED.paused,
		    updated_at = EXCLUDED.updated_at
	`
	linkedSale := sql.NullString{String: asset.LinkedSale.String(), Valid: !asset.LinkedSale.IsNil()}
	_, err := s.db.ExecContext(ctx, query,
		asset.ID.String(), asset.Name, asset.Symbol, asset.MaxSupply, asset.TotalSupply,
		asset.Issuer.Hex(), linkedSale, asset.Paused, asset.CreatedAt, asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert asset: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBalance(ctx context.Context, assetID id.AssetID, wallet id.Address) (uint64, error) {
	var balance uint64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM asset_balances WHERE asset_id = $1 AND wallet = $2`,
		assetID.String(), wallet.Hex(),
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find balance: %w", err)
	}
	return balance, nil
}

func (s *PostgresStore) SetBalance(ctx context.Context, assetID id.AssetID, wallet id.Address, balance uint64) error {
	if balance == 0 {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM asset_balances WHERE asset_id = $1 AND wallet = $2`,
			assetID.String(), wallet.Hex(),
		)
		if err != nil {
			return fmt.Errorf("clear balance: %w", err)
		}
		return nil
	}
	query := `
		INSERT INTO asset_balances (asset_id, wallet, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (asset_id, wallet) DO UPDATE
		SET balance = EXCLUDED.balance
	`
	_, err := s.db.ExecContext(ctx, query, assetID.String(), wallet.Hex(), balance)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListHolders(ctx context.Context, assetID id.AssetID) ([]models.Holding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT wallet, balance FROM asset_balances WHERE asset_id = $1 ORDER BY balance DESC`,
		assetID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list holders: %w", err)
	}
	defer rows.Close()

	var out []models.Holding
	for rows.Next() {
		var (
			walletHex string
			holding   models.Holding
		)
		if err := rows.Scan(&walletHex, &holding.Balance); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		wallet, err := id.ParseAddress(walletHex)
		if err != nil {
			return nil, fmt.Errorf("scan holding wallet: %w", err)
		}
		holding.Wallet = wallet
		out = append(out, holding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holders: %w", err)
	}
	return out, nil
}
