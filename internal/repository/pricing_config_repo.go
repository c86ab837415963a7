package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pricing/internal/models"
)

// PricingConfigRepository handles the singleton pricing_config row.
type PricingConfigRepository struct {
	db sqlx.ExtContext
}

// NewPricingConfigRepository creates a new PricingConfigRepository.
func NewPricingConfigRepository(db sqlx.ExtContext) *PricingConfigRepository {
	return &PricingConfigRepository{db: db}
}

// Get returns nil without error when the row does not exist yet.
func (r *PricingConfigRepository) Get(ctx context.Context) (*models.PricingConfig, error) {
	const q = `SELECT * FROM pricing_config WHERE id = $1`

	var c models.PricingConfig
	if err := sqlx.GetContext(ctx, r.db, &c, q, models.DefaultPricingConfigID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Upsert writes the singleton row.
func (r *PricingConfigRepository) Upsert(ctx context.Context, c *models.PricingConfig) error {
	const q = `
        INSERT INTO pricing_config (
            id, default_markup_percent, minimum_margin, rounding_rule,
            min_price_new_with_tags, min_price_new_without_tags, min_price_like_new,
            min_price_good, min_price_fair, min_price_poor, updated_by, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        ON CONFLICT (id) DO UPDATE SET
            default_markup_percent = EXCLUDED.default_markup_percent,
            minimum_margin = EXCLUDED.minimum_margin,
            rounding_rule = EXCLUDED.rounding_rule,
            min_price_new_with_tags = EXCLUDED.min_price_new_with_tags,
            min_price_new_without_tags = EXCLUDED.min_price_new_without_tags,
            min_price_like_new = EXCLUDED.min_price_like_new,
            min_price_good = EXCLUDED.min_price_good,
            min_price_fair = EXCLUDED.min_price_fair,
            min_price_poor = EXCLUDED.min_price_poor,
            updated_by = EXCLUDED.updated_by,
            updated_at = EXCLUDED.updated_at`

	c.ID = models.DefaultPricingConfigID
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.DefaultMarkupPercent, c.MinimumMargin, c.RoundingRule,
		c.MinPriceNewWithTags, c.MinPriceNewWithoutTags, c.MinPriceLikeNew,
		c.MinPriceGood, c.MinPriceFair, c.MinPricePoor, c.UpdatedBy, c.UpdatedAt,
	)
	return err
}
