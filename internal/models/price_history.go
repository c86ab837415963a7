package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChangeReason records why a ledger row was written.
type ChangeReason string

const (
	ChangeReasonManual      ChangeReason = "manual"
	ChangeReasonPricingRule ChangeReason = "pricing_rule"
	ChangeReasonBulkUpdate  ChangeReason = "bulk_update"
)

// PriceHistory is one append-only ledger row.
type PriceHistory struct {
	ID            string          `db:"id" json:"id"`
	ProductID     string          `db:"product_id" json:"productId"`
	PreviousPrice decimal.Decimal `db:"previous_price" json:"previousPrice"`
	NewPrice      decimal.Decimal `db:"new_price" json:"newPrice"`
	ChangeReason  ChangeReason    `db:"change_reason" json:"changeReason"`
	RuleID        *string         `db:"rule_id" json:"ruleId,omitempty"`
	BulkUpdateID  *string         `db:"bulk_update_id" json:"bulkUpdateId,omitempty"`
	ChangedBy     string          `db:"changed_by" json:"changedBy"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}

// PriceChange is a ledger row joined with a few product columns for the
// recent-changes feed.
type PriceChange struct {
	PriceHistory
	ProductName string `db:"product_name" json:"productName"`
	ProductSKU  string `db:"product_sku" json:"productSku"`
}
