// Package contracts declares the persistence ports of the pricing engine.
// The repository package implements them on PostgreSQL; services depend only
// on these interfaces.
package contracts

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_pricing/internal/models"
)

// ProductStore reads products and writes the pricing-owned columns.
type ProductStore interface {
	// FindMatching returns the ACTIVE products selected by sel.
	FindMatching(ctx context.Context, sel models.Selector) ([]models.Product, error)
	// GetForUpdate loads a product and locks its row for the rest of the
	// transaction. Returns utils.ErrProductNotFound.
	GetForUpdate(ctx context.Context, id string) (*models.Product, error)
	// UpdatePrice sets price to newPrice only when the stored price still
	// equals expected. compareAt, when non-nil, replaces compare_at_price.
	// Returns utils.ErrPriceConflict when the row changed underneath.
	UpdatePrice(ctx context.Context, id string, expected, newPrice decimal.Decimal, compareAt *decimal.Decimal) error
	// ApplySale marks every product matched by sel as on sale and returns the
	// number of rows touched.
	ApplySale(ctx context.Context, sel models.Selector, m models.SaleMarker) (int64, error)
	// ClaimSale marks the products matched by sel that carry no sale and
	// returns how many it marked. Products owned by another sale are left alone.
	ClaimSale(ctx context.Context, sel models.Selector, m models.SaleMarker) (int64, error)
	// RemoveSale clears the sale columns on the products carrying saleID.
	RemoveSale(ctx context.Context, saleID string) (int64, error)
	// CountOnSale counts the products currently carrying saleID.
	CountOnSale(ctx context.Context, saleID string) (int, error)
}

// PriceHistoryStore is the append-only price ledger.
type PriceHistoryStore interface {
	Insert(ctx context.Context, h *models.PriceHistory) error
	ListByProduct(ctx context.Context, productID string, limit int) ([]models.PriceHistory, error)
	ListRecent(ctx context.Context, limit int) ([]models.PriceChange, error)
	ListByBulkUpdate(ctx context.Context, bulkUpdateID string) ([]models.PriceHistory, error)
}

// BulkUpdateStore persists bulk update descriptors.
type BulkUpdateStore interface {
	Create(ctx context.Context, b *models.BulkPriceUpdate) error
	// GetByID returns utils.ErrBulkUpdateNotFound.
	GetByID(ctx context.Context, id string) (*models.BulkPriceUpdate, error)
	SetAffectedCount(ctx context.Context, id string, n int) error
	// MarkReverted flips is_reverted exactly once. A second call returns
	// utils.ErrAlreadyReverted.
	MarkReverted(ctx context.Context, id, actorID string, at time.Time) error
	ListRecent(ctx context.Context, limit int) ([]models.BulkPriceUpdate, error)
}

// PricingRuleStore persists pricing rules.
type PricingRuleStore interface {
	Create(ctx context.Context, r *models.PricingRule) error
	// GetByID returns utils.ErrRuleNotFound.
	GetByID(ctx context.Context, id string) (*models.PricingRule, error)
	Update(ctx context.Context, r *models.PricingRule) error
	Delete(ctx context.Context, id string) error
	// List orders by priority desc then created_at desc. A nil isActive
	// disables the filter.
	List(ctx context.Context, isActive *bool) ([]models.PricingRule, error)
}

// SaleFilter narrows sale listings.
type SaleFilter struct {
	Status models.SaleStatus
	Now    time.Time
	Page   int
	Limit  int
}

// SaleStore persists sales.
type SaleStore interface {
	Create(ctx context.Context, s *models.Sale) error
	// GetByID returns utils.ErrSaleNotFound.
	GetByID(ctx context.Context, id string) (*models.Sale, error)
	Update(ctx context.Context, s *models.Sale) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f SaleFilter) ([]models.Sale, int, error)
	// ListActive returns the sales whose window contains now, soonest ending first.
	ListActive(ctx context.Context, now time.Time) ([]models.Sale, error)
	// ListEnabled returns every sale with the admin toggle on.
	ListEnabled(ctx context.Context) ([]models.Sale, error)
}

// PricingConfigStore persists the singleton pricing config row.
type PricingConfigStore interface {
	// Get returns (nil, nil) when the row has not been created yet.
	Get(ctx context.Context) (*models.PricingConfig, error)
	Upsert(ctx context.Context, c *models.PricingConfig) error
}

// Stores bundles the stores reachable from one database handle.
type Stores interface {
	Products() ProductStore
	History() PriceHistoryStore
	BulkUpdates() BulkUpdateStore
	Rules() PricingRuleStore
	Sales() SaleStore
	Config() PricingConfigStore
}

// Tx is a unit of work. Savepoint runs fn so that a failure undoes only the
// writes fn made; the transaction itself stays usable.
type Tx interface {
	Stores
	Savepoint(ctx context.Context, fn func() error) error
}

// Store is the root persistence handle.
type Store interface {
	Stores
	// WithTx commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
