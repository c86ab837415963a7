// Package pricing holds the side-effect free parts of the pricing engine:
// the price calculator, the product matcher predicate, sale status and
// countdown arithmetic and rule previews.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_pricing/internal/models"
)

var (
	// MinPrice is the lowest price the calculator will ever return.
	MinPrice = decimal.New(1, -2)

	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Adjustment is the calculator input: a rule shape plus its value.
type Adjustment struct {
	RuleType       models.RuleType
	AdjustmentType models.AdjustmentType
	Value          decimal.Decimal
}

// RuleAdjustment extracts the adjustment described by a pricing rule.
func RuleAdjustment(r *models.PricingRule) Adjustment {
	return Adjustment{
		RuleType:       r.RuleType,
		AdjustmentType: r.AdjustmentType,
		Value:          r.AdjustmentValue,
	}
}

// BulkAdjustment models an ad hoc bulk update. Bulk values are signed, so a
// negative value lowers prices: percentage means p*(1+v/100), fixed means p+v.
func BulkAdjustment(t models.AdjustmentType, value decimal.Decimal) Adjustment {
	return Adjustment{
		RuleType:       models.RuleTypeMarkup,
		AdjustmentType: t,
		Value:          value,
	}
}

// ComputeNewPrice applies adj to current. Combinations the adjustment type
// does not support (price_floor as a percentage, for instance) leave the
// price unchanged. The result is always rounded to cents and never below MinPrice.
func ComputeNewPrice(current decimal.Decimal, adj Adjustment) decimal.Decimal {
	newPrice := current
	v := adj.Value

	if adj.AdjustmentType == models.AdjustmentPercentage {
		switch adj.RuleType {
		case models.RuleTypeMarkup:
			newPrice = current.Mul(one.Add(v.Div(hundred)))
		case models.RuleTypeMarkdown:
			newPrice = current.Mul(one.Sub(v.Div(hundred)))
		}
	} else {
		switch adj.RuleType {
		case models.RuleTypeMarkup, models.RuleTypeFixedAdjustment:
			newPrice = current.Add(v)
		case models.RuleTypeMarkdown:
			newPrice = current.Sub(v)
		case models.RuleTypePriceFloor:
			newPrice = decimal.Max(current, v)
		case models.RuleTypePriceCeiling:
			newPrice = decimal.Min(current, v)
		}
	}

	return Normalize(newPrice)
}

// Normalize rounds p to two decimal places and clamps it to MinPrice.
func Normalize(p decimal.Decimal) decimal.Decimal {
	r := p.Round(2)
	if r.LessThan(MinPrice) {
		return MinPrice
	}
	return r
}
