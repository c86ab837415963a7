package pricing

import (
	"strings"

	"github.com/GTDGit/gtd_pricing/internal/models"
)

var (
	// RuleTargets are the selector kinds a pricing rule or bulk update may use.
	RuleTargets = []models.ApplyTo{
		models.ApplyToAll,
		models.ApplyToCategory,
		models.ApplyToSubcategory,
		models.ApplyToCondition,
		models.ApplyToBrand,
		models.ApplyToPriceRange,
	}

	// SaleTargets are the selector kinds a sale may use.
	SaleTargets = []models.ApplyTo{
		models.ApplyToAll,
		models.ApplyToCategory,
		models.ApplyToProducts,
		models.ApplyToTags,
	}
)

// ValidTarget reports whether applyTo is one of allowed.
func ValidTarget(applyTo models.ApplyTo, allowed []models.ApplyTo) bool {
	for _, a := range allowed {
		if a == applyTo {
			return true
		}
	}
	return false
}

// Matches is the reference definition of the product matcher. Only ACTIVE
// products are eligible, and an empty target list matches nothing. The
// repository renders the same predicate in SQL.
func Matches(p *models.Product, sel models.Selector) bool {
	if p.Status != models.ProductStatusActive {
		return false
	}

	switch sel.ApplyTo {
	case models.ApplyToAll:
		return true
	case models.ApplyToCategory:
		return contains(sel.CategoryIDs, p.CategoryID)
	case models.ApplyToSubcategory:
		return p.SubcategoryID != nil && contains(sel.SubcategoryIDs, *p.SubcategoryID)
	case models.ApplyToCondition:
		return p.Condition != nil && contains(sel.Conditions, string(*p.Condition))
	case models.ApplyToBrand:
		if p.Brand == nil {
			return false
		}
		for _, b := range sel.Brands {
			if strings.EqualFold(b, *p.Brand) {
				return true
			}
		}
		return false
	case models.ApplyToTags:
		for _, t := range p.Tags {
			if contains(sel.Tags, t) {
				return true
			}
		}
		return false
	case models.ApplyToProducts:
		return contains(sel.ProductIDs, p.ID)
	case models.ApplyToPriceRange:
		if sel.MinPrice != nil && p.Price.LessThan(*sel.MinPrice) {
			return false
		}
		if sel.MaxPrice != nil && p.Price.GreaterThan(*sel.MaxPrice) {
			return false
		}
		return true
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
