package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_pricing/internal/contracts"
	"github.com/GTDGit/gtd_pricing/internal/metrics"
	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/pkg/clock"
	"github.com/GTDGit/gtd_pricing/internal/pricing"
	"github.com/GTDGit/gtd_pricing/internal/sse"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

// BulkPriceService is the bulk mutation engine: ad hoc bulk updates, rule
// application, custom prices and reverts.
type BulkPriceService struct {
	store    contracts.Store
	clock    clock.Clock
	notifier sse.PricingNotifier
}

// NewBulkPriceService constructs a BulkPriceService.
func NewBulkPriceService(store contracts.Store, clk clock.Clock) *BulkPriceService {
	return &BulkPriceService{store: store, clock: clk, notifier: sse.NopNotifier{}}
}

// SetNotifier sets the SSE notifier for real-time pricing updates.
func (s *BulkPriceService) SetNotifier(notifier sse.PricingNotifier) {
	s.notifier = notifier
}

// BulkUpdateRequest describes an ad hoc bulk adjustment. AdjustmentValue is
// signed: -10 with a percentage lowers prices by 10%. An empty ApplyTo
// targets every active product.
type BulkUpdateRequest struct {
	AdjustmentType  models.AdjustmentType `json:"adjustmentType"`
	AdjustmentValue *decimal.Decimal      `json:"adjustmentValue"`
	ApplyTo         models.ApplyTo        `json:"applyTo"`
	CategoryIDs     []string              `json:"categoryIds"`
	SubcategoryIDs  []string              `json:"subcategoryIds"`
	Conditions      []string              `json:"conditions"`
	Brands          []string              `json:"brands"`
	MinPrice        *decimal.Decimal      `json:"minPrice"`
	MaxPrice        *decimal.Decimal      `json:"maxPrice"`
}

// Selector returns the matcher predicate of the request.
func (r *BulkUpdateRequest) Selector() models.Selector {
	applyTo := r.ApplyTo
	if applyTo == "" {
		applyTo = models.ApplyToAll
	}
	return models.Selector{
		ApplyTo:        applyTo,
		CategoryIDs:    r.CategoryIDs,
		SubcategoryIDs: r.SubcategoryIDs,
		Conditions:     r.Conditions,
		Brands:         r.Brands,
		MinPrice:       r.MinPrice,
		MaxPrice:       r.MaxPrice,
	}
}

func (r *BulkUpdateRequest) validate() error {
	if r.AdjustmentType == "" || r.AdjustmentValue == nil {
		return utils.Invalid("adjustmentType and adjustmentValue are required")
	}
	if r.AdjustmentType != models.AdjustmentPercentage && r.AdjustmentType != models.AdjustmentFixed {
		return utils.Invalid("adjustmentType must be 'percentage' or 'fixed'")
	}
	if r.ApplyTo != "" && !pricing.ValidTarget(r.ApplyTo, pricing.RuleTargets) {
		return utils.Invalid(fmt.Sprintf("applyTo '%s' is not supported", r.ApplyTo))
	}
	if r.MinPrice != nil && r.MaxPrice != nil && r.MinPrice.GreaterThan(*r.MaxPrice) {
		return utils.Invalid("minPrice must not exceed maxPrice")
	}
	return nil
}

// CustomPrice sets one product to an explicit price.
type CustomPrice struct {
	ProductID string          `json:"productId"`
	Price     decimal.Decimal `json:"newPrice"`
}

// UnmarshalJSON never fails on a malformed entry: an unreadable entry,
// productId or newPrice decodes to the zero value, which SetCustomPrices skips.
func (cp *CustomPrice) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID json.RawMessage `json:"productId"`
		NewPrice  json.RawMessage `json:"newPrice"`
	}
	*cp = CustomPrice{}
	if json.Unmarshal(data, &raw) != nil {
		return nil
	}
	if len(raw.ProductID) > 0 {
		_ = json.Unmarshal(raw.ProductID, &cp.ProductID)
	}
	var price decimal.NullDecimal
	if len(raw.NewPrice) > 0 && price.UnmarshalJSON(raw.NewPrice) == nil && price.Valid {
		cp.Price = price.Decimal
	}
	return nil
}

// SkippedProduct reports a product a batch could not update.
type SkippedProduct struct {
	ProductID string `json:"productId"`
	Reason    string `json:"reason"`
}

// BatchResult summarizes a price batch.
type BatchResult struct {
	BulkUpdateID string           `json:"bulkUpdateId,omitempty"`
	UpdatedCount int              `json:"updatedCount"`
	Skipped      []SkippedProduct `json:"skipped,omitempty"`
}

// RevertResult summarizes a revert.
type RevertResult struct {
	BulkUpdateID  string `json:"bulkUpdateId"`
	RevertedCount int    `json:"revertedCount"`
}

// mutation describes how each ledger row of a batch is attributed.
type mutation struct {
	op           string
	reason       models.ChangeReason
	ruleID       *string
	bulkUpdateID *string
	setCompareAt bool
	actorID      string
}

// ApplyAdjustment runs an ad hoc bulk update and records a revertable descriptor.
func (s *BulkPriceService) ApplyAdjustment(ctx context.Context, actor models.Actor, req BulkUpdateRequest) (*BatchResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer metrics.ObserveBatch(metrics.OpBulkUpdate, start)

	sel := req.Selector()
	adj := pricing.BulkAdjustment(req.AdjustmentType, *req.AdjustmentValue)
	bulk := &models.BulkPriceUpdate{
		ID:              newID(),
		AdjustmentType:  req.AdjustmentType,
		AdjustmentValue: *req.AdjustmentValue,
		ApplyTo:         sel.ApplyTo,
		TargetIDs:       sel.TargetIDs(),
		CreatedBy:       actor.ID,
		CreatedAt:       s.clock.Now(),
	}

	var result *BatchResult
	err := s.store.WithTx(ctx, func(tx contracts.Tx) error {
		if err := tx.BulkUpdates().Create(ctx, bulk); err != nil {
			return fmt.Errorf("create bulk update: %w", err)
		}
		products, err := tx.Products().FindMatching(ctx, sel)
		if err != nil {
			return fmt.Errorf("find matching products: %w", err)
		}

		result, err = s.mutate(ctx, tx, products, adj, mutation{
			op:           metrics.OpBulkUpdate,
			reason:       models.ChangeReasonBulkUpdate,
			bulkUpdateID: &bulk.ID,
			actorID:      actor.ID,
		})
		if err != nil {
			return err
		}
		return tx.BulkUpdates().SetAffectedCount(ctx, bulk.ID, result.UpdatedCount)
	})
	if err != nil {
		return nil, err
	}

	result.BulkUpdateID = bulk.ID
	log.Info().
		Str("bulk_update_id", bulk.ID).
		Str("actor", actor.ID).
		Int("updated", result.UpdatedCount).
		Int("skipped", len(result.Skipped)).
		Msg("Bulk price update applied")
	s.notifier.Notify(sse.PricingEvent{
		Event:        sse.EventPricesBulkUpdated,
		BulkUpdateID: bulk.ID,
		Count:        result.UpdatedCount,
		Actor:        actor.ID,
	})
	return result, nil
}

// ApplyRule runs a pricing rule over its matching products. The old price is
// kept in compare_at_price for strike-through display.
func (s *BulkPriceService) ApplyRule(ctx context.Context, actor models.Actor, rule *models.PricingRule) (*BatchResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	start := time.Now()
	defer metrics.ObserveBatch(metrics.OpApplyRule, start)

	adj := pricing.RuleAdjustment(rule)
	var result *BatchResult
	err := s.store.WithTx(ctx, func(tx contracts.Tx) error {
		products, err := tx.Products().FindMatching(ctx, rule.Selector())
		if err != nil {
			return fmt.Errorf("find matching products: %w", err)
		}
		result, err = s.mutate(ctx, tx, products, adj, mutation{
			op:           metrics.OpApplyRule,
			reason:       models.ChangeReasonPricingRule,
			ruleID:       &rule.ID,
			setCompareAt: true,
			actorID:      actor.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("rule_id", rule.ID).
		Str("actor", actor.ID).
		Int("updated", result.UpdatedCount).
		Int("skipped", len(result.Skipped)).
		Msg("Pricing rule applied")
	s.notifier.Notify(sse.PricingEvent{Event: sse.EventRuleApplied, RuleID: rule.ID, Count: result.UpdatedCount, Actor: actor.ID})
	return result, nil
}

// mutate is the per-product loop shared by bulk updates and rule application.
// Each product is written behind its own savepoint so that a failure only
// drops that product from the batch.
func (s *BulkPriceService) mutate(ctx context.Context, tx contracts.Tx, products []models.Product, adj pricing.Adjustment, m mutation) (*BatchResult, error) {
	result := &BatchResult{}
	now := s.clock.Now()

	for i := range products {
		p := products[i]
		newPrice := pricing.ComputeNewPrice(p.Price, adj)
		if newPrice.Equal(p.Price) {
			continue
		}

		err := tx.Savepoint(ctx, func() error {
			return s.writePrice(ctx, tx, p.ID, p.Price, newPrice, m, now)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.skip(result, m.op, p.ID, err)
			continue
		}
		result.UpdatedCount++
	}
	return result, nil
}

// writePrice performs the compare-and-swap update and its ledger row.
func (s *BulkPriceService) writePrice(ctx context.Context, tx contracts.Tx, productID string, oldPrice, newPrice decimal.Decimal, m mutation, now time.Time) error {
	var compareAt *decimal.Decimal
	if m.setCompareAt {
		compareAt = &oldPrice
	}
	if err := tx.Products().UpdatePrice(ctx, productID, oldPrice, newPrice, compareAt); err != nil {
		return err
	}

	entry := &models.PriceHistory{
		ID:            newID(),
		ProductID:     productID,
		PreviousPrice: oldPrice,
		NewPrice:      newPrice,
		ChangeReason:  m.reason,
		RuleID:        m.ruleID,
		BulkUpdateID:  m.bulkUpdateID,
		ChangedBy:     m.actorID,
		CreatedAt:     now,
	}
	if err := tx.History().Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert price history: %w", err)
	}
	metrics.RecordPriceChange(string(m.reason))
	return nil
}

func (s *BulkPriceService) skip(result *BatchResult, op, productID string, err error) {
	log.Warn().Err(err).Str("operation", op).Str("product_id", productID).Msg("Skipping product in price batch")
	metrics.RecordSkipped(op)
	result.Skipped = append(result.Skipped, SkippedProduct{ProductID: productID, Reason: err.Error()})
}

// SetCustomPrices writes explicit prices. Entries without a product id, with
// a non-positive price or naming an unknown product are skipped.
func (s *BulkPriceService) SetCustomPrices(ctx context.Context, actor models.Actor, prices []CustomPrice) (*BatchResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	start := time.Now()
	defer metrics.ObserveBatch(metrics.OpCustomPrices, start)

	m := mutation{op: metrics.OpCustomPrices, reason: models.ChangeReasonManual, actorID: actor.ID}
	result := &BatchResult{}
	err := s.store.WithTx(ctx, func(tx contracts.Tx) error {
		now := s.clock.Now()
		for _, cp := range prices {
			if cp.ProductID == "" || !cp.Price.IsPositive() {
				continue
			}
			newPrice := pricing.Normalize(cp.Price)

			err := tx.Savepoint(ctx, func() error {
				p, err := tx.Products().GetForUpdate(ctx, cp.ProductID)
				if err != nil {
					return err
				}
				if p.Price.Equal(newPrice) {
					return errUnchanged
				}
				return s.writePrice(ctx, tx, p.ID, p.Price, newPrice, m, now)
			})
			switch {
			case err == nil:
				result.UpdatedCount++
			case errors.Is(err, errUnchanged), errors.Is(err, utils.ErrProductNotFound):
			default:
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.skip(result, m.op, cp.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("actor", actor.ID).Int("updated", result.UpdatedCount).Msg("Custom prices applied")
	s.notifier.Notify(sse.PricingEvent{Event: sse.EventPricesCustomSet, Count: result.UpdatedCount, Actor: actor.ID})
	return result, nil
}

var errUnchanged = errors.New("price unchanged")

// Revert restores every price a bulk update changed, in one transaction.
// The descriptor can be reverted only once.
func (s *BulkPriceService) Revert(ctx context.Context, actor models.Actor, bulkUpdateID string) (*RevertResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if bulkUpdateID == "" {
		return nil, utils.Invalid("bulkUpdateId is required")
	}
	start := time.Now()
	defer metrics.ObserveBatch(metrics.OpRevert, start)

	result := &RevertResult{BulkUpdateID: bulkUpdateID}
	err := s.store.WithTx(ctx, func(tx contracts.Tx) error {
		bulk, err := tx.BulkUpdates().GetByID(ctx, bulkUpdateID)
		if err != nil {
			return err
		}
		if bulk.IsReverted {
			return utils.ErrAlreadyReverted
		}

		entries, err := tx.History().ListByBulkUpdate(ctx, bulkUpdateID)
		if err != nil {
			return fmt.Errorf("list bulk update history: %w", err)
		}

		now := s.clock.Now()
		m := mutation{
			op:           metrics.OpRevert,
			reason:       models.ChangeReasonBulkUpdate,
			bulkUpdateID: &bulk.ID,
			actorID:      actor.ID,
		}
		for _, e := range entries {
			p, err := tx.Products().GetForUpdate(ctx, e.ProductID)
			if err != nil {
				return fmt.Errorf("load product %s: %w", e.ProductID, err)
			}
			if p.Price.Equal(e.PreviousPrice) {
				continue
			}
			if err := s.writePrice(ctx, tx, p.ID, p.Price, e.PreviousPrice, m, now); err != nil {
				return fmt.Errorf("revert product %s: %w", e.ProductID, err)
			}
			result.RevertedCount++
		}

		return tx.BulkUpdates().MarkReverted(ctx, bulkUpdateID, actor.ID, now)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordRevert()
	log.Info().
		Str("bulk_update_id", bulkUpdateID).
		Str("actor", actor.ID).
		Int("reverted", result.RevertedCount).
		Msg("Bulk price update reverted")
	s.notifier.Notify(sse.PricingEvent{
		Event:        sse.EventPricesReverted,
		BulkUpdateID: bulkUpdateID,
		Count:        result.RevertedCount,
		Actor:        actor.ID,
	})
	return result, nil
}
