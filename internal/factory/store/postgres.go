package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"brique/internal/factory/models"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
)

// PostgresStore persists the factory index in PostgreSQL. The position
// column carries the append order.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed factory index.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry *models.Entry) error {
	if entry == nil {
		return fmt.Errorf("factory entry is required")
	}
	query := `
		INSERT INTO factory_index (asset_id, issuer, position, active, created_at)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM factory_index), $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.AssetID.String(), entry.Issuer.Hex(), entry.Active, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append factory entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, assetID id.AssetID) (*models.Entry, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT asset_id, issuer, position, active, created_at FROM factory_index WHERE asset_id = $1`,
		assetID.String(),
	))
}

func (s *PostgresStore) Update(ctx context.Context, entry *models.Entry) error {
	if entry == nil {
		return fmt.Errorf("factory entry is required")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE factory_index SET active = $2 WHERE asset_id = $1`,
		entry.AssetID.String(), entry.Active,
	)
	if err != nil {
		return fmt.Errorf("update factory entry: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update factory entry: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM factory_index`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count factory entries: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ByIndex(ctx context.Context, position int) (*models.Entry, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT asset_id, issuer, position, active, created_at FROM factory_index WHERE position = $1`,
		position,
	))
}

func (s *PostgresStore) ByIssuer(ctx context.Context, issuer id.Address) ([]models.Entry, error) {
	return s.scanMany(ctx,
		`SELECT asset_id, issuer, position, active, created_at FROM factory_index WHERE issuer = $1 ORDER BY position`,
		issuer.Hex(),
	)
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Entry, error) {
	return s.scanMany(ctx,
		`SELECT asset_id, issuer, position, active, created_at FROM factory_index ORDER BY position`,
	)
}

type row interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(r row) (*models.Entry, error) {
	var (
		entry     models.Entry
		rawID     uuid.UUID
		issuerHex string
	)
	err := r.Scan(&rawID, &issuerHex, &entry.Position, &entry.Active, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan factory entry: %w", err)
	}
	entry.AssetID = id.AssetID(rawID)
	issuer, err := id.ParseAddress(issuerHex)
	if err != nil {
		return nil, fmt.Errorf("scan factory entry issuer: %w", err)
	}
	entry.Issuer = issuer
	return &entry, nil
}

func (s *PostgresStore) scanMany(ctx context.Context, query string, args ...any) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list factory entries: %w", err)
	}
	defer rows.Close()

	var out []models.Entry
	for rows.Next() {
		entry, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate factory entries: %w", err)
	}
	return out, nil
}
