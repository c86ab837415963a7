package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// RuleType encodes the direction/shape of a price adjustment.
type RuleType string

const (
	RuleTypeMarkup          RuleType = "markup"
	RuleTypeMarkdown        RuleType = "markdown"
	RuleTypeFixedAdjustment RuleType = "fixed_adjustment"
	RuleTypePriceFloor      RuleType = "price_floor"
	RuleTypePriceCeiling    RuleType = "price_ceiling"
)

// AdjustmentType tells whether an adjustment value is a percentage or an amount.
type AdjustmentType string

const (
	AdjustmentPercentage AdjustmentType = "percentage"
	AdjustmentFixed      AdjustmentType = "fixed"
)

// PricingRule is an admin-defined conditional price adjustment that is
// applied on demand.
type PricingRule struct {
	ID              string           `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	Description     *string          `db:"description" json:"description,omitempty"`
	RuleType        RuleType         `db:"rule_type" json:"ruleType"`
	AdjustmentType  AdjustmentType   `db:"adjustment_type" json:"adjustmentType"`
	AdjustmentValue decimal.Decimal  `db:"adjustment_value" json:"adjustmentValue"`
	ApplyTo         ApplyTo          `db:"apply_to" json:"applyTo"`
	CategoryIDs     pq.StringArray   `db:"category_ids" json:"categoryIds"`
	SubcategoryIDs  pq.StringArray   `db:"subcategory_ids" json:"subcategoryIds"`
	Conditions      pq.StringArray   `db:"conditions" json:"conditions"`
	Brands          pq.StringArray   `db:"brands" json:"brands"`
	MinPrice        *decimal.Decimal `db:"min_price" json:"minPrice,omitempty"`
	MaxPrice        *decimal.Decimal `db:"max_price" json:"maxPrice,omitempty"`
	Priority        int              `db:"priority" json:"priority"`
	IsActive        bool             `db:"is_active" json:"isActive"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updatedAt"`
}

// Selector returns the product selector described by the rule.
func (r *PricingRule) Selector() Selector {
	return Selector{
		ApplyTo:        r.ApplyTo,
		CategoryIDs:    r.CategoryIDs,
		SubcategoryIDs: r.SubcategoryIDs,
		Conditions:     r.Conditions,
		Brands:         r.Brands,
		MinPrice:       r.MinPrice,
		MaxPrice:       r.MaxPrice,
	}
}
