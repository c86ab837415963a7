package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pricing/internal/models"
)

const historyColumns = `id, product_id, previous_price, new_price, change_reason, rule_id,
        bulk_update_id, changed_by, created_at`

// PriceHistoryRepository handles the price ledger.
type PriceHistoryRepository struct {
	db sqlx.ExtContext
}

// NewPriceHistoryRepository creates a new PriceHistoryRepository.
func NewPriceHistoryRepository(db sqlx.ExtContext) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

// Insert appends a ledger row. CreatedAt is filled by the database when zero.
func (r *PriceHistoryRepository) Insert(ctx context.Context, h *models.PriceHistory) error {
	const q = `
        INSERT INTO price_history (
            id, product_id, previous_price, new_price, change_reason,
            rule_id, bulk_update_id, changed_by, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,COALESCE($9, NOW()))
        RETURNING created_at`

	var createdAt any
	if !h.CreatedAt.IsZero() {
		createdAt = h.CreatedAt
	}
	return sqlx.GetContext(ctx, r.db, &h.CreatedAt, q,
		h.ID, h.ProductID, h.PreviousPrice, h.NewPrice, h.ChangeReason,
		h.RuleID, h.BulkUpdateID, h.ChangedBy, createdAt,
	)
}

// ListByProduct returns the newest ledger rows of a product.
func (r *PriceHistoryRepository) ListByProduct(ctx context.Context, productID string, limit int) ([]models.PriceHistory, error) {
	const q = `SELECT ` + historyColumns + `
        FROM price_history
        WHERE product_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2`

	items := []models.PriceHistory{}
	if err := sqlx.SelectContext(ctx, r.db, &items, q, productID, limit); err != nil {
		return nil, err
	}
	return items, nil
}

// ListRecent returns the newest ledger rows across products joined with the
// product name and SKU.
func (r *PriceHistoryRepository) ListRecent(ctx context.Context, limit int) ([]models.PriceChange, error) {
	const q = `
        SELECT ph.id, ph.product_id, ph.previous_price, ph.new_price, ph.change_reason,
            ph.rule_id, ph.bulk_update_id, ph.changed_by, ph.created_at,
            p.name AS product_name, p.sku AS product_sku
        FROM price_history ph
        JOIN products p ON p.id = ph.product_id
        ORDER BY ph.created_at DESC, ph.id DESC
        LIMIT $1`

	items := []models.PriceChange{}
	if err := sqlx.SelectContext(ctx, r.db, &items, q, limit); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByBulkUpdate returns the ledger rows written by one bulk update.
func (r *PriceHistoryRepository) ListByBulkUpdate(ctx context.Context, bulkUpdateID string) ([]models.PriceHistory, error) {
	const q = `SELECT ` + historyColumns + `
        FROM price_history
        WHERE bulk_update_id = $1
        ORDER BY created_at, id`

	items := []models.PriceHistory{}
	if err := sqlx.SelectContext(ctx, r.db, &items, q, bulkUpdateID); err != nil {
		return nil, err
	}
	return items, nil
}
