package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_pricing/internal/contracts"
	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/pkg/clock"
	"github.com/GTDGit/gtd_pricing/internal/pricing"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

// PricingRuleService manages pricing rules and runs previews.
type PricingRuleService struct {
	store        contracts.Store
	bulk         *BulkPriceService
	clock        clock.Clock
	previewLimit int
}

// NewPricingRuleService constructs a PricingRuleService.
func NewPricingRuleService(store contracts.Store, bulk *BulkPriceService, clk clock.Clock, previewLimit int) *PricingRuleService {
	if previewLimit <= 0 {
		previewLimit = 50
	}
	return &PricingRuleService{store: store, bulk: bulk, clock: clk, previewLimit: previewLimit}
}

// CreatePricingRuleRequest represents the request to create a pricing rule.
type CreatePricingRuleRequest struct {
	Name            string                `json:"name" binding:"required"`
	Description     *string               `json:"description"`
	RuleType        models.RuleType       `json:"ruleType" binding:"required"`
	AdjustmentType  models.AdjustmentType `json:"adjustmentType" binding:"required"`
	AdjustmentValue decimal.Decimal       `json:"adjustmentValue"`
	ApplyTo         models.ApplyTo        `json:"applyTo"`
	CategoryIDs     []string              `json:"categoryIds"`
	SubcategoryIDs  []string              `json:"subcategoryIds"`
	Conditions      []string              `json:"conditions"`
	Brands          []string              `json:"brands"`
	MinPrice        *decimal.Decimal      `json:"minPrice"`
	MaxPrice        *decimal.Decimal      `json:"maxPrice"`
	Priority        int                   `json:"priority"`
	IsActive        *bool                 `json:"isActive"`
}

// UpdatePricingRuleRequest is a partial update; nil fields are left alone.
type UpdatePricingRuleRequest struct {
	Name            *string                `json:"name"`
	Description     *string                `json:"description"`
	RuleType        *models.RuleType       `json:"ruleType"`
	AdjustmentType  *models.AdjustmentType `json:"adjustmentType"`
	AdjustmentValue *decimal.Decimal       `json:"adjustmentValue"`
	ApplyTo         *models.ApplyTo        `json:"applyTo"`
	CategoryIDs     []string               `json:"categoryIds"`
	SubcategoryIDs  []string               `json:"subcategoryIds"`
	Conditions      []string               `json:"conditions"`
	Brands          []string               `json:"brands"`
	MinPrice        *decimal.Decimal       `json:"minPrice"`
	MaxPrice        *decimal.Decimal       `json:"maxPrice"`
	Priority        *int                   `json:"priority"`
	IsActive        *bool                  `json:"isActive"`
}

var validConditions = map[string]bool{
	string(models.ConditionNewWithTags):    true,
	string(models.ConditionNewWithoutTags): true,
	string(models.ConditionLikeNew):        true,
	string(models.ConditionGood):           true,
	string(models.ConditionFair):           true,
	string(models.ConditionPoor):           true,
}

func validateRule(r *models.PricingRule) error {
	if strings.TrimSpace(r.Name) == "" {
		return utils.Invalid("name is required")
	}
	switch r.RuleType {
	case models.RuleTypeMarkup, models.RuleTypeMarkdown, models.RuleTypeFixedAdjustment,
		models.RuleTypePriceFloor, models.RuleTypePriceCeiling:
	default:
		return utils.Invalid(fmt.Sprintf("ruleType '%s' is not supported", r.RuleType))
	}
	if r.AdjustmentType != models.AdjustmentPercentage && r.AdjustmentType != models.AdjustmentFixed {
		return utils.Invalid("adjustmentType must be 'percentage' or 'fixed'")
	}
	if r.AdjustmentValue.IsNegative() {
		return utils.Invalid("adjustmentValue must not be negative")
	}
	if !pricing.ValidTarget(r.ApplyTo, pricing.RuleTargets) {
		return utils.Invalid(fmt.Sprintf("applyTo '%s' is not supported", r.ApplyTo))
	}
	for _, c := range r.Conditions {
		if !validConditions[c] {
			return utils.Invalid(fmt.Sprintf("condition '%s' is not supported", c))
		}
	}
	if (r.MinPrice != nil && r.MinPrice.IsNegative()) || (r.MaxPrice != nil && r.MaxPrice.IsNegative()) {
		return utils.Invalid("price bounds must not be negative")
	}
	if r.MinPrice != nil && r.MaxPrice != nil && r.MinPrice.GreaterThan(*r.MaxPrice) {
		return utils.Invalid("minPrice must not exceed maxPrice")
	}
	return nil
}

// Create validates and stores a new rule.
func (s *PricingRuleService) Create(ctx context.Context, actor models.Actor, req CreatePricingRuleRequest) (*models.PricingRule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	rule := &models.PricingRule{
		ID:              newID(),
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		RuleType:        req.RuleType,
		AdjustmentType:  req.AdjustmentType,
		AdjustmentValue: req.AdjustmentValue,
		ApplyTo:         req.ApplyTo,
		CategoryIDs:     req.CategoryIDs,
		SubcategoryIDs:  req.SubcategoryIDs,
		Conditions:      req.Conditions,
		Brands:          req.Brands,
		MinPrice:        req.MinPrice,
		MaxPrice:        req.MaxPrice,
		Priority:        req.Priority,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if rule.ApplyTo == "" {
		rule.ApplyTo = models.ApplyToAll
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := validateRule(rule); err != nil {
		return nil, err
	}

	if err := s.store.Rules().Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("create pricing rule: %w", err)
	}
	log.Info().Str("rule_id", rule.ID).Str("actor", actor.ID).Msg("Pricing rule created")
	return rule, nil
}

// Get returns a rule by id.
func (s *PricingRuleService) Get(ctx context.Context, actor models.Actor, id string) (*models.PricingRule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Rules().GetByID(ctx, id)
}

// List returns rules ordered by priority, optionally filtered by isActive.
func (s *PricingRuleService) List(ctx context.Context, actor models.Actor, isActive *bool) ([]models.PricingRule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Rules().List(ctx, isActive)
}

// Update applies a partial update and re-validates the merged rule.
func (s *PricingRuleService) Update(ctx context.Context, actor models.Actor, id string, req UpdatePricingRuleRequest) (*models.PricingRule, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	rule, err := s.store.Rules().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		rule.Description = req.Description
	}
	if req.RuleType != nil {
		rule.RuleType = *req.RuleType
	}
	if req.AdjustmentType != nil {
		rule.AdjustmentType = *req.AdjustmentType
	}
	if req.AdjustmentValue != nil {
		rule.AdjustmentValue = *req.AdjustmentValue
	}
	if req.ApplyTo != nil {
		rule.ApplyTo = *req.ApplyTo
	}
	if req.CategoryIDs != nil {
		rule.CategoryIDs = req.CategoryIDs
	}
	if req.SubcategoryIDs != nil {
		rule.SubcategoryIDs = req.SubcategoryIDs
	}
	if req.Conditions != nil {
		rule.Conditions = req.Conditions
	}
	if req.Brands != nil {
		rule.Brands = req.Brands
	}
	if req.MinPrice != nil {
		rule.MinPrice = req.MinPrice
	}
	if req.MaxPrice != nil {
		rule.MaxPrice = req.MaxPrice
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := validateRule(rule); err != nil {
		return nil, err
	}

	rule.UpdatedAt = s.clock.Now()
	if err := s.store.Rules().Update(ctx, rule); err != nil {
		return nil, err
	}
	log.Info().Str("rule_id", rule.ID).Str("actor", actor.ID).Msg("Pricing rule updated")
	return rule, nil
}

// Delete removes a rule.
func (s *PricingRuleService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.store.Rules().Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("rule_id", id).Str("actor", actor.ID).Msg("Pricing rule deleted")
	return nil
}

// Preview computes what applying the rule would do without writing anything.
func (s *PricingRuleService) Preview(ctx context.Context, actor models.Actor, id string) (*pricing.PreviewResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	rule, err := s.store.Rules().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.store.Products().FindMatching(ctx, rule.Selector())
	if err != nil {
		return nil, fmt.Errorf("find matching products: %w", err)
	}

	res := pricing.Preview(products, pricing.RuleAdjustment(rule), s.previewLimit)
	return &res, nil
}

// Apply runs the rule through the bulk mutation engine.
func (s *PricingRuleService) Apply(ctx context.Context, actor models.Actor, id string) (*BatchResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	rule, err := s.store.Rules().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.bulk.ApplyRule(ctx, actor, rule)
}
