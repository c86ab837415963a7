package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_pricing/internal/contracts"
	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/pkg/clock"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

// PricingConfigService manages the storewide pricing defaults.
type PricingConfigService struct {
	store contracts.Store
	clock clock.Clock
}

// NewPricingConfigService constructs a PricingConfigService.
func NewPricingConfigService(store contracts.Store, clk clock.Clock) *PricingConfigService {
	return &PricingConfigService{store: store, clock: clk}
}

// UpdatePricingConfigRequest is a partial update of the pricing config.
type UpdatePricingConfigRequest struct {
	DefaultMarkupPercent   *decimal.Decimal `json:"defaultMarkupPercent"`
	MinimumMargin          *decimal.Decimal `json:"minimumMargin"`
	RoundingRule           *string          `json:"roundingRule"`
	MinPriceNewWithTags    *decimal.Decimal `json:"minPriceNewWithTags"`
	MinPriceNewWithoutTags *decimal.Decimal `json:"minPriceNewWithoutTags"`
	MinPriceLikeNew        *decimal.Decimal `json:"minPriceLikeNew"`
	MinPriceGood           *decimal.Decimal `json:"minPriceGood"`
	MinPriceFair           *decimal.Decimal `json:"minPriceFair"`
	MinPricePoor           *decimal.Decimal `json:"minPricePoor"`
}

var roundingRules = map[string]bool{
	"none":       true,
	"nearest_99": true,
	"nearest_95": true,
	"nearest_50": true,
	"nearest_00": true,
}

// Get returns the config, creating the default row on first access.
func (s *PricingConfigService) Get(ctx context.Context, actor models.Actor) (*models.PricingConfig, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.load(ctx)
}

func (s *PricingConfigService) load(ctx context.Context) (*models.PricingConfig, error) {
	cfg, err := s.store.Config().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pricing config: %w", err)
	}
	if cfg != nil {
		return cfg, nil
	}

	def := models.DefaultPricingConfig()
	def.UpdatedAt = s.clock.Now()
	if err := s.store.Config().Upsert(ctx, &def); err != nil {
		return nil, fmt.Errorf("create default pricing config: %w", err)
	}
	return &def, nil
}

// Update merges req into the stored config.
func (s *PricingConfigService) Update(ctx context.Context, actor models.Actor, req UpdatePricingConfigRequest) (*models.PricingConfig, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	cfg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	amounts := []struct {
		name string
		src  *decimal.Decimal
		dst  *decimal.Decimal
	}{
		{"defaultMarkupPercent", req.DefaultMarkupPercent, &cfg.DefaultMarkupPercent},
		{"minimumMargin", req.MinimumMargin, &cfg.MinimumMargin},
		{"minPriceNewWithTags", req.MinPriceNewWithTags, &cfg.MinPriceNewWithTags},
		{"minPriceNewWithoutTags", req.MinPriceNewWithoutTags, &cfg.MinPriceNewWithoutTags},
		{"minPriceLikeNew", req.MinPriceLikeNew, &cfg.MinPriceLikeNew},
		{"minPriceGood", req.MinPriceGood, &cfg.MinPriceGood},
		{"minPriceFair", req.MinPriceFair, &cfg.MinPriceFair},
		{"minPricePoor", req.MinPricePoor, &cfg.MinPricePoor},
	}
	for _, a := range amounts {
		if a.src == nil {
			continue
		}
		if a.src.IsNegative() {
			return nil, utils.Invalid(a.name + " must not be negative")
		}
		*a.dst = *a.src
	}
	if req.RoundingRule != nil {
		if !roundingRules[*req.RoundingRule] {
			return nil, utils.Invalid(fmt.Sprintf("roundingRule '%s' is not supported", *req.RoundingRule))
		}
		cfg.RoundingRule = *req.RoundingRule
	}

	cfg.UpdatedBy = strPtr(actor.ID)
	cfg.UpdatedAt = s.clock.Now()
	if err := s.store.Config().Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save pricing config: %w", err)
	}
	log.Info().Str("actor", actor.ID).Msg("Pricing config updated")
	return cfg, nil
}
