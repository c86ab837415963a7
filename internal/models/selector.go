package models

import "github.com/shopspring/decimal"

// ApplyTo names the product field a rule, sale or bulk update targets.
type ApplyTo string

const (
	ApplyToAll         ApplyTo = "all"
	ApplyToCategory    ApplyTo = "category"
	ApplyToSubcategory ApplyTo = "subcategory"
	ApplyToCondition   ApplyTo = "condition"
	ApplyToBrand       ApplyTo = "brand"
	ApplyToPriceRange  ApplyTo = "price_range"
	ApplyToProducts    ApplyTo = "products"
	ApplyToTags        ApplyTo = "tags"
)

// Selector is the normalized predicate resolved by the product matcher.
// Only the list that corresponds to ApplyTo is consulted.
type Selector struct {
	ApplyTo        ApplyTo          `json:"applyTo"`
	CategoryIDs    []string         `json:"categoryIds,omitempty"`
	SubcategoryIDs []string         `json:"subcategoryIds,omitempty"`
	Conditions     []string         `json:"conditions,omitempty"`
	Brands         []string         `json:"brands,omitempty"`
	Tags           []string         `json:"tags,omitempty"`
	ProductIDs     []string         `json:"productIds,omitempty"`
	MinPrice       *decimal.Decimal `json:"minPrice,omitempty"`
	MaxPrice       *decimal.Decimal `json:"maxPrice,omitempty"`
}

// TargetIDs returns the selector list that ApplyTo points at, used as the
// target description recorded on bulk update descriptors.
func (s Selector) TargetIDs() []string {
	switch s.ApplyTo {
	case ApplyToCategory:
		return s.CategoryIDs
	case ApplyToSubcategory:
		return s.SubcategoryIDs
	case ApplyToCondition:
		return s.Conditions
	case ApplyToBrand:
		return s.Brands
	case ApplyToTags:
		return s.Tags
	case ApplyToProducts:
		return s.ProductIDs
	}
	return []string{}
}
