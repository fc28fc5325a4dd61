// Package testutil holds the Postgres plumbing shared by the registry's
// integration tests. Every helper skips, or runs nothing, when DSNEnv is unset,
// so `go test ./...` passes on a machine without a database.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/consultoria-ambiental/registro/migrations"
)

// DSNEnv names the variable holding the integration database DSN.
const DSNEnv = "TEST_DATABASE_URL"

// RegistryTables lists every table the migrations create.
var RegistryTables = []string{
	"clients", "properties", "projects", "invoices", "documents", "expirations", "notifications",
}

// RunWithMigrations is the body of a package TestMain: it brings the schema
// up to date when a database is configured, then runs the tests.
func RunWithMigrations(m *testing.M) int {
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		return m.Run()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("testutil: open %s: %v", DSNEnv, err)
	}
	err = Migrate(context.Background(), db)
	db.Close()
	if err != nil {
		log.Fatalf("testutil: %v", err)
	}
	return m.Run()
}

// Migrate applies every pending registry migration.
func Migrate(ctx context.Context, db *sql.DB) error {
	provider, err := NewProvider(db)
	if err != nil {
		return err
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// NewProvider returns a goose provider over the embedded registry migrations.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// NewPool returns a pool on the integration database, closed when the test ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB is NewPool for code that needs database/sql, such as goose.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// BeginTx opens a transaction over an empty registry. It is rolled back when
// the test ends, so nothing a test writes outlives it.
func BeginTx(t *testing.T) pgx.Tx {
	t.Helper()
	ctx := context.Background()

	tx, err := NewPool(t).Begin(ctx)
	if err != nil {
		t.Fatalf("testutil.BeginTx: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })

	if _, err := tx.Exec(ctx, "TRUNCATE "+strings.Join(RegistryTables, ", ")); err != nil {
		t.Fatalf("testutil.BeginTx: truncate: %v", err)
	}
	return tx
}

func dsn(t *testing.T) string {
	t.Helper()
	v := os.Getenv(DSNEnv)
	if v == "" {
		t.Skip(DSNEnv + " not set; registry integration tests need Postgres")
	}
	return v
}
