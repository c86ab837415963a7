package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// BulkPriceUpdate describes one batch price change so that it can be
// reverted later. A descriptor can be reverted at most once.
type BulkPriceUpdate struct {
	ID              string          `db:"id" json:"id"`
	AdjustmentType  AdjustmentType  `db:"adjustment_type" json:"adjustmentType"`
	AdjustmentValue decimal.Decimal `db:"adjustment_value" json:"adjustmentValue"`
	ApplyTo         ApplyTo         `db:"apply_to" json:"applyTo"`
	TargetIDs       pq.StringArray  `db:"target_ids" json:"targetIds"`
	AffectedCount   int             `db:"affected_count" json:"affectedCount"`
	CreatedBy       string          `db:"created_by" json:"createdBy"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	IsReverted      bool            `db:"is_reverted" json:"isReverted"`
	RevertedAt      *time.Time      `db:"reverted_at" json:"revertedAt,omitempty"`
	RevertedBy      *string         `db:"reverted_by" json:"revertedBy,omitempty"`
}
