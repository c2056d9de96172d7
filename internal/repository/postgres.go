// Package repository implements the persistence layer on PostgreSQL via
// pgx. Repositories are generic over a querier so the same code serves
// pool-backed reads and transaction-scoped mutations.
package repository

import (
	"context"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lehoangvu/techstore/db"
	"github.com/lehoangvu/techstore/internal/domain/catalog"
	"github.com/lehoangvu/techstore/internal/domain/inventory"
	"github.com/lehoangvu/techstore/internal/domain/order"
)

// DB is the querier subset shared by pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// NewPool creates a pgxpool.Pool configured with shopspring/decimal support
// for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the embedded DDL schema against the pool.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, db.Schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

var _ order.Store = (*Store)(nil)

// Store opens database transactions for the orchestrator. Repositories
// handed to the callback are bound to the transaction, so every reserve
// and write inside it commits or rolls back as one unit.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithinTx runs fn inside a transaction. Any error from fn rolls the
// transaction back and is returned unchanged.
func (s *Store) WithinTx(ctx context.Context, fn func(tx order.Tx) error) error {
	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer pgtx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(&txRepos{db: pgtx}); err != nil {
		return err
	}

	if err := pgtx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// txRepos is the repository set bound to one transaction.
type txRepos struct {
	db pgx.Tx
}

func (t *txRepos) Orders() order.Repository    { return NewOrderRepository(t.db) }
func (t *txRepos) Catalog() catalog.Repository { return NewCatalogRepository(t.db) }
func (t *txRepos) Ledger() inventory.Ledger    { return NewInventoryLedger(t.db) }
