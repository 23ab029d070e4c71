package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"brique/internal/kyc/models"
	"brique/internal/sentinel"
	id "brique/pkg/domain"
)

// PostgresStore persists KYC requests in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed request store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, wallet id.Address) (*models.Request, error) {
	query := `
		SELECT wallet, fingerprint, approved, rejected, submitted_at, decided_at
		FROM kyc_requests
		WHERE wallet = $1
	`
	var (
		req            models.Request
		walletHex      string
		fingerprintHex string
		decidedAt      sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, wallet.Hex()).Scan(
		&walletHex, &fingerprintHex, &req.Approved, &req.Rejected, &req.SubmittedAt, &decidedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find kyc request: %w", err)
	}
	addr, err := id.ParseAddress(walletHex)
	if err != nil {
		return nil, fmt.Errorf("scan kyc request wallet: %w", err)
	}
	fp, err := id.ParseFingerprint(fingerprintHex)
	if err != nil {
		return nil, fmt.Errorf("scan kyc request fingerprint: %w", err)
	}
	req.Wallet = addr
	req.Fingerprint = fp
	if decidedAt.Valid {
		req.DecidedAt = decidedAt.Time
	}
	return &req, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, req *models.Request) error {
	if req == nil {
		return fmt.Errorf("kyc request is required")
	}
	query := `
		INSERT INTO kyc_requests (wallet, fingerprint, approved, rejected, submitted_at, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (wallet) DO UPDATE
		SET fingerprint = EXCLUDED.fingerprint,
		    approved = EXCLUDED.approved,
		    rejected = EXCLUDED.rejected,
		    submitted_at = EXCLUDED.submitted_at,
		    decided_at = EXCLUDED.decided_at
	`
	decidedAt := sql.NullTime{Time: req.DecidedAt, Valid: !req.DecidedAt.IsZero()}
	_, err := s.db.ExecContext(ctx, query,
		req.Wallet.Hex(), req.Fingerprint.Hex(), req.Approved, req.Rejected, req.SubmittedAt, decidedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert kyc request: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	var clause string
	switch status {
	case models.StatusApproved:
		clause = "approved"
	case models.StatusRejected:
		clause = "rejected"
	default:
		clause = "NOT approved AND NOT rejected"
	}
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kyc_requests WHERE `+clause).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count kyc requests: %w", err)
	}
	return count, nil
}
