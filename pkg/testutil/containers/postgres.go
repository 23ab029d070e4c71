//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"brique/migrations"
	id "brique/pkg/domain"
)

// PostgresContainer wraps a testcontainers Postgres instance.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container with migrations applied.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("brique_test"),
		postgres.WithUsername("brique"),
		postgres.WithPassword("brique_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	pc := &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}

	if err := pc.runMigrations(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Note: We don't register t.Cleanup here because the container is managed
	// by the singleton Manager and shared across test suites. Ryuk (testcontainers'
	// cleanup sidecar) handles container cleanup when the test process exits.

	return pc
}

// runMigrations executes all *.up.sql migrations from the embedded migrations.FS.
func (p *PostgresContainer) runMigrations(ctx context.Context) error {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		if _, err := p.DB.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", file, err)
		}
	}

	return nil
}

// TruncateTables clears all data from the specified tables.
// Use between tests to ensure isolation without restarting the container.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		if err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// TruncateModuleTables truncates all ledger tables for full test isolation.
// Tables are truncated with CASCADE to handle foreign key dependencies.
func (p *PostgresContainer) TruncateModuleTables(ctx context.Context) error {
	// Order matters due to FK constraints; CASCADE handles dependencies
	tables := []string{
		"sale_contributions",
		"sales",
		"factory_index",
		"asset_balances",
		"assets",
		"kyc_requests",
		"identity_records",
	}
	return p.TruncateTables(ctx, tables...)
}

// Exec runs a SQL statement and returns the result.
func (p *PostgresContainer) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.DB.ExecContext(ctx, query, args...)
}

// Query runs a SQL query and returns rows.
func (p *PostgresContainer) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return p.DB.QueryContext(ctx, query, args...)
}

// QueryRow runs a SQL query expected to return a single row.
func (p *PostgresContainer) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return p.DB.QueryRowContext(ctx, query, args...)
}

// CreateTestAsset inserts a minimal asset row and returns its ID.
// Fails the test if insertion fails.
func (p *PostgresContainer) CreateTestAsset(ctx context.Context, t testing.TB, issuer id.Address, maxSupply uint64) id.AssetID {
	t.Helper()
	assetID := id.NewAssetID()
	_, err := p.Exec(ctx, `
		INSERT INTO assets (id, name, symbol, max_supply, total_supply, issuer, paused, created_at, updated_at)
		VALUES ($1, $2, 'TST', $3, 0, $4, FALSE, NOW(), NOW())
	`, uuid.UUID(assetID), "Test Asset "+uuid.NewString(), maxSupply, issuer.Hex())
	if err != nil {
		t.Fatalf("CreateTestAsset: %v", err)
	}
	return assetID
}

// CreateTestSale inserts an inactive sale row for the given asset and returns its ID.
// Fails the test if insertion fails.
func (p *PostgresContainer) CreateTestSale(ctx context.Context, t testing.TB, assetID id.AssetID, beneficiary id.Address, price uint64) id.SaleID {
	t.Helper()
	saleID := id.NewSaleID()
	_, err := p.Exec(ctx, `
		INSERT INTO sales (id, asset_id, beneficiary, price_per_unit, min_purchase, active,
			total_raised, contract_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, FALSE, 0, 0, NOW(), NOW())
	`, uuid.UUID(saleID), uuid.UUID(assetID), beneficiary.Hex(), price)
	if err != nil {
		t.Fatalf("CreateTestSale: %v", err)
	}
	return saleID
}
