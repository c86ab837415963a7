package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

const bulkColumns = `id, adjustment_type, adjustment_value, apply_to, target_ids, affected_count,
        created_by, created_at, is_reverted, reverted_at, reverted_by`

// BulkUpdateRepository handles bulk_price_updates.
type BulkUpdateRepository struct {
	db sqlx.ExtContext
}

// NewBulkUpdateRepository creates a new BulkUpdateRepository.
func NewBulkUpdateRepository(db sqlx.ExtContext) *BulkUpdateRepository {
	return &BulkUpdateRepository{db: db}
}

// Create inserts a descriptor.
func (r *BulkUpdateRepository) Create(ctx context.Context, b *models.BulkPriceUpdate) error {
	const q = `
        INSERT INTO bulk_price_updates (
            id, adjustment_type, adjustment_value, apply_to, target_ids,
            affected_count, created_by, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	if b.TargetIDs == nil {
		b.TargetIDs = []string{}
	}
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.AdjustmentType, b.AdjustmentValue, b.ApplyTo, b.TargetIDs,
		b.AffectedCount, b.CreatedBy, b.CreatedAt,
	)
	return err
}

// GetByID fetches a descriptor.
func (r *BulkUpdateRepository) GetByID(ctx context.Context, id string) (*models.BulkPriceUpdate, error) {
	const q = `SELECT ` + bulkColumns + ` FROM bulk_price_updates WHERE id = $1`

	var b models.BulkPriceUpdate
	if err := sqlx.GetContext(ctx, r.db, &b, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrBulkUpdateNotFound
		}
		return nil, err
	}
	return &b, nil
}

// SetAffectedCount records how many products the update changed.
func (r *BulkUpdateRepository) SetAffectedCount(ctx context.Context, id string, n int) error {
	const q = `UPDATE bulk_price_updates SET affected_count = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, n)
	return err
}

// MarkReverted is conditional on is_reverted so that concurrent reverts
// cannot both succeed.
func (r *BulkUpdateRepository) MarkReverted(ctx context.Context, id, actorID string, at time.Time) error {
	const q = `
        UPDATE bulk_price_updates SET
            is_reverted = TRUE,
            reverted_at = $2,
            reverted_by = $3
        WHERE id = $1 AND is_reverted = FALSE`

	res, err := r.db.ExecContext(ctx, q, id, at, actorID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrAlreadyReverted
	}
	return nil
}

// ListRecent returns the newest descriptors.
func (r *BulkUpdateRepository) ListRecent(ctx context.Context, limit int) ([]models.BulkPriceUpdate, error) {
	const q = `SELECT ` + bulkColumns + `
        FROM bulk_price_updates
        ORDER BY created_at DESC, id DESC
        LIMIT $1`

	items := []models.BulkPriceUpdate{}
	if err := sqlx.SelectContext(ctx, r.db, &items, q, limit); err != nil {
		return nil, err
	}
	return items, nil
}
