package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

const ruleColumns = `id, name, description, rule_type, adjustment_type, adjustment_value, apply_to,
        category_ids, subcategory_ids, conditions, brands, min_price, max_price, priority,
        is_active, created_at, updated_at`

// PricingRuleRepository handles pricing_rules.
type PricingRuleRepository struct {
	db sqlx.ExtContext
}

// NewPricingRuleRepository creates a new PricingRuleRepository.
func NewPricingRuleRepository(db sqlx.ExtContext) *PricingRuleRepository {
	return &PricingRuleRepository{db: db}
}

// Create inserts a rule.
func (r *PricingRuleRepository) Create(ctx context.Context, rule *models.PricingRule) error {
	const q = `
        INSERT INTO pricing_rules (
            id, name, description, rule_type, adjustment_type, adjustment_value, apply_to,
            category_ids, subcategory_ids, conditions, brands, min_price, max_price,
            priority, is_active, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	normalizeRuleLists(rule)
	_, err := r.db.ExecContext(ctx, q,
		rule.ID, rule.Name, rule.Description, rule.RuleType, rule.AdjustmentType, rule.AdjustmentValue, rule.ApplyTo,
		rule.CategoryIDs, rule.SubcategoryIDs, rule.Conditions, rule.Brands, rule.MinPrice, rule.MaxPrice,
		rule.Priority, rule.IsActive, rule.CreatedAt, rule.UpdatedAt,
	)
	return err
}

// GetByID fetches a rule.
func (r *PricingRuleRepository) GetByID(ctx context.Context, id string) (*models.PricingRule, error) {
	const q = `SELECT ` + ruleColumns + ` FROM pricing_rules WHERE id = $1`

	var rule models.PricingRule
	if err := sqlx.GetContext(ctx, r.db, &rule, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// Update overwrites every mutable column of a rule.
func (r *PricingRuleRepository) Update(ctx context.Context, rule *models.PricingRule) error {
	const q = `
        UPDATE pricing_rules SET
            name = $2,
            description = $3,
            rule_type = $4,
            adjustment_type = $5,
            adjustment_value = $6,
            apply_to = $7,
            category_ids = $8,
            subcategory_ids = $9,
            conditions = $10,
            brands = $11,
            min_price = $12,
            max_price = $13,
            priority = $14,
            is_active = $15,
            updated_at = $16
        WHERE id = $1`

	normalizeRuleLists(rule)
	res, err := r.db.ExecContext(ctx, q,
		rule.ID, rule.Name, rule.Description, rule.RuleType, rule.AdjustmentType, rule.AdjustmentValue, rule.ApplyTo,
		rule.CategoryIDs, rule.SubcategoryIDs, rule.Conditions, rule.Brands, rule.MinPrice, rule.MaxPrice,
		rule.Priority, rule.IsActive, rule.UpdatedAt,
	)
	return requireRow(res, err, utils.ErrRuleNotFound)
}

// Delete removes a rule. Ledger rows keep their history with rule_id nulled.
func (r *PricingRuleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pricing_rules WHERE id = $1`, id)
	return requireRow(res, err, utils.ErrRuleNotFound)
}

// List returns rules by priority.
func (r *PricingRuleRepository) List(ctx context.Context, isActive *bool) ([]models.PricingRule, error) {
	q := `SELECT ` + ruleColumns + ` FROM pricing_rules`
	var args []any
	if isActive != nil {
		q += fmt.Sprintf(" WHERE is_active = $%d", len(args)+1)
		args = append(args, *isActive)
	}
	q += " ORDER BY priority DESC, created_at DESC"

	items := []models.PricingRule{}
	if err := sqlx.SelectContext(ctx, r.db, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func normalizeRuleLists(rule *models.PricingRule) {
	if rule.CategoryIDs == nil {
		rule.CategoryIDs = []string{}
	}
	if rule.SubcategoryIDs == nil {
		rule.SubcategoryIDs = []string{}
	}
	if rule.Conditions == nil {
		rule.Conditions = []string{}
	}
	if rule.Brands == nil {
		rule.Brands = []string{}
	}
}

// requireRow turns a zero-row write into notFound.
func requireRow(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
