package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ProductStatus enumerates catalog lifecycle states.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusSold     ProductStatus = "SOLD"
	ProductStatusArchived ProductStatus = "ARCHIVED"
	ProductStatusReserved ProductStatus = "RESERVED"
)

// ItemCondition enumerates the condition grades of second-hand items.
type ItemCondition string

const (
	ConditionNewWithTags    ItemCondition = "NEW_WITH_TAGS"
	ConditionNewWithoutTags ItemCondition = "NEW_WITHOUT_TAGS"
	ConditionLikeNew        ItemCondition = "LIKE_NEW"
	ConditionGood           ItemCondition = "GOOD"
	ConditionFair           ItemCondition = "FAIR"
	ConditionPoor           ItemCondition = "POOR"
)

// Product is the catalog entity as seen by the pricing engine. The catalog
// owns it; pricing only writes the price and sale columns.
type Product struct {
	ID             string           `db:"id" json:"id"`
	SKU            string           `db:"sku" json:"sku"`
	Name           string           `db:"name" json:"name"`
	Price          decimal.Decimal  `db:"price" json:"price"`
	CompareAtPrice *decimal.Decimal `db:"compare_at_price" json:"compareAtPrice,omitempty"`
	IsOnSale       bool             `db:"is_on_sale" json:"isOnSale"`
	SalePercentage *decimal.Decimal `db:"sale_percentage" json:"salePercentage,omitempty"`
	SaleAmount     *decimal.Decimal `db:"sale_amount" json:"saleAmount,omitempty"`
	SaleEndsAt     *time.Time       `db:"sale_ends_at" json:"saleEndsAt,omitempty"`
	ActiveSaleID   *string          `db:"active_sale_id" json:"activeSaleId,omitempty"`
	Status         ProductStatus    `db:"status" json:"status"`
	CategoryID     string           `db:"category_id" json:"categoryId"`
	SubcategoryID  *string          `db:"subcategory_id" json:"subcategoryId,omitempty"`
	Condition      *ItemCondition   `db:"condition" json:"condition,omitempty"`
	Brand          *string          `db:"brand" json:"brand,omitempty"`
	Tags           pq.StringArray   `db:"tags" json:"tags"`
	Version        int64            `db:"version" json:"-"`
	CreatedAt      time.Time        `db:"created_at" json:"-"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updatedAt"`
}
