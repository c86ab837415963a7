package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// DiscountType mirrors AdjustmentType for sales.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// SaleStatus is derived from the admin toggle and the sale window; it is never stored.
type SaleStatus string

const (
	SaleStatusInactive SaleStatus = "inactive"
	SaleStatusUpcoming SaleStatus = "upcoming"
	SaleStatusActive   SaleStatus = "active"
	SaleStatusExpired  SaleStatus = "expired"
)

// DefaultBannerColor is used when a sale is created without a banner color.
const DefaultBannerColor = "#FF5733"

// Sale is a time-boxed promotion.
type Sale struct {
	ID            string          `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   *string         `db:"description" json:"description,omitempty"`
	DiscountType  DiscountType    `db:"discount_type" json:"discountType"`
	DiscountValue decimal.Decimal `db:"discount_value" json:"discountValue"`
	ApplyTo       ApplyTo         `db:"apply_to" json:"applyTo"`
	CategoryIDs   pq.StringArray  `db:"category_ids" json:"categoryIds"`
	ProductIDs    pq.StringArray  `db:"product_ids" json:"productIds"`
	Tags          pq.StringArray  `db:"tags" json:"tags"`
	StartsAt      time.Time       `db:"starts_at" json:"startsAt"`
	EndsAt        time.Time       `db:"ends_at" json:"endsAt"`
	IsActive      bool            `db:"is_active" json:"isActive"`
	ShowCountdown bool            `db:"show_countdown" json:"showCountdown"`
	BannerText    *string         `db:"banner_text" json:"bannerText,omitempty"`
	BannerColor   string          `db:"banner_color" json:"bannerColor"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// Selector returns the product selector described by the sale.
func (s *Sale) Selector() Selector {
	return Selector{
		ApplyTo:     s.ApplyTo,
		CategoryIDs: s.CategoryIDs,
		ProductIDs:  s.ProductIDs,
		Tags:        s.Tags,
	}
}

// SaleMarker is the set of product columns written while a sale is applied.
type SaleMarker struct {
	SaleID     string
	Percentage *decimal.Decimal
	Amount     *decimal.Decimal
	EndsAt     time.Time
}

// Marker derives the product columns for this sale. Percentage sales set
// sale_percentage, fixed sales set sale_amount.
func (s *Sale) Marker() SaleMarker {
	m := SaleMarker{SaleID: s.ID, EndsAt: s.EndsAt}
	v := s.DiscountValue
	if s.DiscountType == DiscountPercentage {
		m.Percentage = &v
	} else {
		m.Amount = &v
	}
	return m
}

// Countdown is the remaining time until a sale ends.
type Countdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Expired bool  `json:"expired"`
}
