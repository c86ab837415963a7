package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pricing/internal/contracts"
	"github.com/GTDGit/gtd_pricing/internal/database"
)

// scope hands out repositories bound to either the pool or a transaction.
type scope struct {
	q sqlx.ExtContext
}

func (s scope) Products() contracts.ProductStore       { return NewProductRepository(s.q) }
func (s scope) History() contracts.PriceHistoryStore   { return NewPriceHistoryRepository(s.q) }
func (s scope) BulkUpdates() contracts.BulkUpdateStore { return NewBulkUpdateRepository(s.q) }
func (s scope) Rules() contracts.PricingRuleStore      { return NewPricingRuleRepository(s.q) }
func (s scope) Sales() contracts.SaleStore             { return NewSaleRepository(s.q) }
func (s scope) Config() contracts.PricingConfigStore   { return NewPricingConfigRepository(s.q) }

// Store is the PostgreSQL implementation of contracts.Store.
type Store struct {
	scope
	db *sqlx.DB
}

// NewStore creates a Store on top of an open pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{scope: scope{q: db}, db: db}
}

// WithTx runs fn in a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx contracts.Tx) error) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(&txScope{scope: scope{q: tx}, tx: tx})
	})
}

type txScope struct {
	scope
	tx  *sqlx.Tx
	seq int
}

// Savepoint wraps fn in a uniquely named savepoint.
func (t *txScope) Savepoint(ctx context.Context, fn func() error) error {
	t.seq++
	return database.Savepoint(ctx, t.tx, fmt.Sprintf("sp_%d", t.seq), fn)
}

var (
	_ contracts.Store = (*Store)(nil)
	_ contracts.Tx    = (*txScope)(nil)
)
