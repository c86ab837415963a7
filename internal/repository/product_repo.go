package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

const productColumns = `id, sku, name, price, compare_at_price, is_on_sale, sale_percentage,
        sale_amount, sale_ends_at, active_sale_id, status, category_id, subcategory_id,
        condition, brand, tags, version, created_at, updated_at`

// ProductRepository provides pricing access to the products table.
type ProductRepository struct {
	db sqlx.ExtContext
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db sqlx.ExtContext) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindMatching returns the ACTIVE products selected by sel, ordered by id so
// batches touch rows in a stable order.
func (r *ProductRepository) FindMatching(ctx context.Context, sel models.Selector) ([]models.Product, error) {
	where, args := selectorWhere(sel, nil)
	q := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY id`, productColumns, where)

	var items []models.Product
	if err := sqlx.SelectContext(ctx, r.db, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// GetForUpdate fetches a product by id and locks the row.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*models.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1 FOR UPDATE`, productColumns)

	var p models.Product
	if err := sqlx.GetContext(ctx, r.db, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdatePrice is a compare-and-swap on the price column.
func (r *ProductRepository) UpdatePrice(ctx context.Context, id string, expected, newPrice decimal.Decimal, compareAt *decimal.Decimal) error {
	const q = `
        UPDATE products SET
            price = $3,
            compare_at_price = COALESCE($4, compare_at_price),
            version = version + 1,
            updated_at = NOW()
        WHERE id = $1 AND price = $2`

	res, err := r.db.ExecContext(ctx, q, id, expected, newPrice, compareAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrPriceConflict
	}
	return nil
}

// ApplySale writes the sale marker onto every matching product.
func (r *ProductRepository) ApplySale(ctx context.Context, sel models.Selector, m models.SaleMarker) (int64, error) {
	return r.markSale(ctx, sel, m, false)
}

func (r *ProductRepository) markSale(ctx context.Context, sel models.Selector, m models.SaleMarker, unmarkedOnly bool) (int64, error) {
	args := []any{m.SaleID, m.Percentage, m.Amount, m.EndsAt}
	where, args := selectorWhere(sel, args)
	if unmarkedOnly {
		where += " AND active_sale_id IS NULL"
	}
	q := `
        UPDATE products SET
            is_on_sale = TRUE,
            active_sale_id = $1,
            sale_percentage = $2,
            sale_amount = $3,
            sale_ends_at = $4,
            updated_at = NOW()
        ` + where

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClaimSale writes the sale marker onto matching products that carry no sale.
func (r *ProductRepository) ClaimSale(ctx context.Context, sel models.Selector, m models.SaleMarker) (int64, error) {
	return r.markSale(ctx, sel, m, true)
}

// RemoveSale clears the sale marker of products that carry saleID. Products
// that were since claimed by another sale are left alone.
func (r *ProductRepository) RemoveSale(ctx context.Context, saleID string) (int64, error) {
	const q = `
        UPDATE products SET
            is_on_sale = FALSE,
            active_sale_id = NULL,
            sale_percentage = NULL,
            sale_amount = NULL,
            sale_ends_at = NULL,
            updated_at = NOW()
        WHERE active_sale_id = $1`

	res, err := r.db.ExecContext(ctx, q, saleID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountOnSale counts products carrying saleID.
func (r *ProductRepository) CountOnSale(ctx context.Context, saleID string) (int, error) {
	const q = `SELECT COUNT(*) FROM products WHERE active_sale_id = $1`
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, q, saleID); err != nil {
		return 0, err
	}
	return n, nil
}
