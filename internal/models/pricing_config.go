package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPricingConfigID is the primary key of the singleton config row.
const DefaultPricingConfigID = "default-config"

// PricingConfig holds storewide pricing defaults: the default markup, the
// minimum margin, the rounding strategy and a price floor per item condition.
type PricingConfig struct {
	ID                     string          `db:"id" json:"id"`
	DefaultMarkupPercent   decimal.Decimal `db:"default_markup_percent" json:"defaultMarkupPercent"`
	MinimumMargin          decimal.Decimal `db:"minimum_margin" json:"minimumMargin"`
	RoundingRule           string          `db:"rounding_rule" json:"roundingRule"`
	MinPriceNewWithTags    decimal.Decimal `db:"min_price_new_with_tags" json:"minPriceNewWithTags"`
	MinPriceNewWithoutTags decimal.Decimal `db:"min_price_new_without_tags" json:"minPriceNewWithoutTags"`
	MinPriceLikeNew        decimal.Decimal `db:"min_price_like_new" json:"minPriceLikeNew"`
	MinPriceGood           decimal.Decimal `db:"min_price_good" json:"minPriceGood"`
	MinPriceFair           decimal.Decimal `db:"min_price_fair" json:"minPriceFair"`
	MinPricePoor           decimal.Decimal `db:"min_price_poor" json:"minPricePoor"`
	UpdatedBy              *string         `db:"updated_by" json:"updatedBy,omitempty"`
	UpdatedAt              time.Time       `db:"updated_at" json:"updatedAt"`
}

// DefaultPricingConfig returns the values a fresh store starts with.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		ID:                     DefaultPricingConfigID,
		DefaultMarkupPercent:   decimal.NewFromInt(30),
		MinimumMargin:          decimal.NewFromInt(10),
		RoundingRule:           "nearest_99",
		MinPriceNewWithTags:    decimal.NewFromInt(15),
		MinPriceNewWithoutTags: decimal.NewFromInt(12),
		MinPriceLikeNew:        decimal.NewFromInt(10),
		MinPriceGood:           decimal.NewFromInt(8),
		MinPriceFair:           decimal.NewFromInt(5),
		MinPricePoor:           decimal.NewFromInt(3),
	}
}
