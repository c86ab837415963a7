package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pricing/internal/contracts"
	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

const saleColumns = `id, name, description, discount_type, discount_value, apply_to, category_ids,
        product_ids, tags, starts_at, ends_at, is_active, show_countdown, banner_text,
        banner_color, created_at, updated_at`

// SaleRepository handles sales.
type SaleRepository struct {
	db sqlx.ExtContext
}

// NewSaleRepository creates a new SaleRepository.
func NewSaleRepository(db sqlx.ExtContext) *SaleRepository {
	return &SaleRepository{db: db}
}

// Create inserts a sale.
func (r *SaleRepository) Create(ctx context.Context, s *models.Sale) error {
	const q = `
        INSERT INTO sales (
            id, name, description, discount_type, discount_value, apply_to, category_ids,
            product_ids, tags, starts_at, ends_at, is_active, show_countdown, banner_text,
            banner_color, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	normalizeSaleLists(s)
	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.Name, s.Description, s.DiscountType, s.DiscountValue, s.ApplyTo, s.CategoryIDs,
		s.ProductIDs, s.Tags, s.StartsAt, s.EndsAt, s.IsActive, s.ShowCountdown, s.BannerText,
		s.BannerColor, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// GetByID fetches a sale.
func (r *SaleRepository) GetByID(ctx context.Context, id string) (*models.Sale, error) {
	const q = `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`

	var s models.Sale
	if err := sqlx.GetContext(ctx, r.db, &s, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrSaleNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Update overwrites every mutable column of a sale.
func (r *SaleRepository) Update(ctx context.Context, s *models.Sale) error {
	const q = `
        UPDATE sales SET
            name = $2,
            description = $3,
            discount_type = $4,
            discount_value = $5,
            apply_to = $6,
            category_ids = $7,
            product_ids = $8,
            tags = $9,
            starts_at = $10,
            ends_at = $11,
            is_active = $12,
            show_countdown = $13,
            banner_text = $14,
            banner_color = $15,
            updated_at = $16
        WHERE id = $1`

	normalizeSaleLists(s)
	res, err := r.db.ExecContext(ctx, q,
		s.ID, s.Name, s.Description, s.DiscountType, s.DiscountValue, s.ApplyTo, s.CategoryIDs,
		s.ProductIDs, s.Tags, s.StartsAt, s.EndsAt, s.IsActive, s.ShowCountdown, s.BannerText,
		s.BannerColor, s.UpdatedAt,
	)
	return requireRow(res, err, utils.ErrSaleNotFound)
}

// Delete removes a sale.
func (r *SaleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	return requireRow(res, err, utils.ErrSaleNotFound)
}

// List returns one page of sales, newest first, and the total match count.
func (r *SaleRepository) List(ctx context.Context, f contracts.SaleFilter) ([]models.Sale, int, error) {
	where := "WHERE 1=1"
	var args []any
	argIdx := 1

	switch f.Status {
	case models.SaleStatusInactive:
		where += " AND is_active = FALSE"
	case models.SaleStatusActive:
		where += fmt.Sprintf(" AND is_active = TRUE AND starts_at <= $%d AND ends_at >= $%d", argIdx, argIdx)
		args = append(args, f.Now)
		argIdx++
	case models.SaleStatusUpcoming:
		where += fmt.Sprintf(" AND is_active = TRUE AND starts_at > $%d", argIdx)
		args = append(args, f.Now)
		argIdx++
	case models.SaleStatusExpired:
		where += fmt.Sprintf(" AND is_active = TRUE AND ends_at < $%d", argIdx)
		args = append(args, f.Now)
		argIdx++
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, "SELECT COUNT(*) FROM sales "+where, args...); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	q := fmt.Sprintf(`SELECT %s FROM sales %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		saleColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	items := []models.Sale{}
	if err := sqlx.SelectContext(ctx, r.db, &items, q, args...); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListActive returns enabled sales whose window contains now.
func (r *SaleRepository) ListActive(ctx context.Context, now time.Time) ([]models.Sale, error) {
	const q = `SELECT ` + saleColumns + `
        FROM sales
        WHERE is_active = TRUE AND starts_at <= $1 AND ends_at >= $1
        ORDER BY ends_at ASC, id`

	items := []models.Sale{}
	if err := sqlx.SelectContext(ctx, r.db, &items, q, now); err != nil {
		return nil, err
	}
	return items, nil
}

// ListEnabled returns every sale with is_active set.
func (r *SaleRepository) ListEnabled(ctx context.Context) ([]models.Sale, error) {
	const q = `SELECT ` + saleColumns + ` FROM sales WHERE is_active = TRUE ORDER BY starts_at, id`

	items := []models.Sale{}
	if err := sqlx.SelectContext(ctx, r.db, &items, q); err != nil {
		return nil, err
	}
	return items, nil
}

func normalizeSaleLists(s *models.Sale) {
	if s.CategoryIDs == nil {
		s.CategoryIDs = []string{}
	}
	if s.ProductIDs == nil {
		s.ProductIDs = []string{}
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
}
