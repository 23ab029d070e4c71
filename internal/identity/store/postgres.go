package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"brique/internal/identity/models"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
)

// PostgresStore persists verification records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed verification store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, wallet id.Address) (*models.VerificationRecord, error) {
	query := `
		SELECT wallet, verified, created_at, updated_at
		FROM identity_records
		WHERE wallet = $1
	`
	var (
		rec       models.VerificationRecord
		walletHex string
	)
	err := s.db.QueryRowContext(ctx, query, wallet.Hex()).Scan(
		&walletHex, &rec.Verified, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification record: %w", err)
	}
	addr, err := id.ParseAddress(walletHex)
	if err != nil {
		return nil, fmt.Errorf("scan verification record wallet: %w", err)
	}
	rec.Wallet = addr
	return &rec, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec *models.VerificationRecord) error {
	if rec == nil {
		return fmt.Errorf("verification record is required")
	}
	query := `
		INSERT INTO identity_records (wallet, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet) DO UPDATE
		SET verified = EXCLUDED.verified, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.Wallet.Hex(), rec.Verified, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert verification record: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountVerified(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM identity_records WHERE verified`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count verified wallets: %w", err)
	}
	return count, nil
}
