package service

import (
	"context"
	"fmt"
	"strings"
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

// ActiveSaleCache caches the storefront's list of running sales.
type ActiveSaleCache interface {
	Get(ctx context.Context) ([]models.Sale, bool)
	Set(ctx context.Context, sales []models.Sale)
	Invalidate(ctx context.Context)
}

// SaleService manages sales and keeps the sale marker on products in step
// with each sale's status.
type SaleService struct {
	store    contracts.Store
	cache    ActiveSaleCache
	clock    clock.Clock
	notifier sse.PricingNotifier
}

// NewSaleService constructs a SaleService.
func NewSaleService(store contracts.Store, cache ActiveSaleCache, clk clock.Clock) *SaleService {
	return &SaleService{store: store, cache: cache, clock: clk, notifier: sse.NopNotifier{}}
}

// SetNotifier sets the SSE notifier for sale transitions.
func (s *SaleService) SetNotifier(notifier sse.PricingNotifier) {
	s.notifier = notifier
}

// CreateSaleRequest represents the request to create a sale.
type CreateSaleRequest struct {
	Name          string              `json:"name" binding:"required"`
	Description   *string             `json:"description"`
	DiscountType  models.DiscountType `json:"discountType" binding:"required"`
	DiscountValue decimal.Decimal     `json:"discountValue"`
	ApplyTo       models.ApplyTo      `json:"applyTo"`
	CategoryIDs   []string            `json:"categoryIds"`
	ProductIDs    []string            `json:"productIds"`
	Tags          []string            `json:"tags"`
	StartsAt      *time.Time          `json:"startsAt"`
	EndsAt        *time.Time          `json:"endsAt"`
	IsActive      *bool               `json:"isActive"`
	ShowCountdown bool                `json:"showCountdown"`
	BannerText    *string             `json:"bannerText"`
	BannerColor   string              `json:"bannerColor"`
}

// UpdateSaleRequest is a partial update; nil fields are left alone.
type UpdateSaleRequest struct {
	Name          *string              `json:"name"`
	Description   *string              `json:"description"`
	DiscountType  *models.DiscountType `json:"discountType"`
	DiscountValue *decimal.Decimal     `json:"discountValue"`
	ApplyTo       *models.ApplyTo      `json:"applyTo"`
	CategoryIDs   []string             `json:"categoryIds"`
	ProductIDs    []string             `json:"productIds"`
	Tags          []string             `json:"tags"`
	StartsAt      *time.Time           `json:"startsAt"`
	EndsAt        *time.Time           `json:"endsAt"`
	IsActive      *bool                `json:"isActive"`
	ShowCountdown *bool                `json:"showCountdown"`
	BannerText    *string              `json:"bannerText"`
	BannerColor   *string              `json:"bannerColor"`
}

// SaleView is a sale with its computed status.
type SaleView struct {
	models.Sale
	Status models.SaleStatus `json:"status"`
}

// ActiveSale is the storefront view of a running sale.
type ActiveSale struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   *string             `json:"description,omitempty"`
	DiscountType  models.DiscountType `json:"discountType"`
	DiscountValue decimal.Decimal     `json:"discountValue"`
	ShowCountdown bool                `json:"showCountdown"`
	BannerText    *string             `json:"bannerText,omitempty"`
	BannerColor   string              `json:"bannerColor"`
	EndsAt        time.Time           `json:"endsAt"`
	Countdown     models.Countdown    `json:"countdown"`
}

// SaleCountdown answers the public countdown endpoint.
type SaleCountdown struct {
	SaleID        string            `json:"saleId"`
	Name          string            `json:"name"`
	IsActive      bool              `json:"isActive"`
	ShowCountdown bool              `json:"showCountdown"`
	BannerText    *string           `json:"bannerText"`
	BannerColor   string            `json:"bannerColor"`
	StartsAt      time.Time         `json:"startsAt"`
	EndsAt        time.Time         `json:"endsAt"`
	Countdown     *models.Countdown `json:"countdown"`
}

// SaleListFilter narrows the admin sale listing.
type SaleListFilter struct {
	Status models.SaleStatus
	Page   int
	Limit  int
}

// ReconcileResult reports what a reconcile pass changed.
type ReconcileResult struct {
	Applied []string `json:"applied"`
	Removed []string `json:"removed"`
}

var hundred = decimal.NewFromInt(100)

func validateSale(s *models.Sale) error {
	if strings.TrimSpace(s.Name) == "" {
		return utils.Invalid("name is required")
	}
	switch s.DiscountType {
	case models.DiscountPercentage:
		if s.DiscountValue.GreaterThan(hundred) {
			return utils.Invalid("a percentage discount cannot exceed 100")
		}
	case models.DiscountFixed:
	default:
		return utils.Invalid("discountType must be 'percentage' or 'fixed'")
	}
	if !s.DiscountValue.IsPositive() {
		return utils.Invalid("discountValue must be greater than zero")
	}
	if !pricing.ValidTarget(s.ApplyTo, pricing.SaleTargets) {
		return utils.Invalid(fmt.Sprintf("applyTo '%s' is not supported", s.ApplyTo))
	}
	if s.StartsAt.IsZero() || s.EndsAt.IsZero() {
		return utils.Invalid("startsAt and endsAt are required")
	}
	if !s.EndsAt.After(s.StartsAt) {
		return utils.Invalid("endsAt must be after startsAt")
	}
	return nil
}

// Create stores a sale and applies it right away when it is already running.
func (s *SaleService) Create(ctx context.Context, actor models.Actor, req CreateSaleRequest) (*SaleView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	sale := &models.Sale{
		ID:            newID(),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ApplyTo:       req.ApplyTo,
		CategoryIDs:   req.CategoryIDs,
		ProductIDs:    req.ProductIDs,
		Tags:          req.Tags,
		IsActive:      true,
		ShowCountdown: req.ShowCountdown,
		BannerText:    req.BannerText,
		BannerColor:   req.BannerColor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if sale.ApplyTo == "" {
		sale.ApplyTo = models.ApplyToAll
	}
	if sale.BannerColor == "" {
		sale.BannerColor = models.DefaultBannerColor
	}
	if req.IsActive != nil {
		sale.IsActive = *req.IsActive
	}
	if req.StartsAt != nil {
		sale.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		sale.EndsAt = *req.EndsAt
	}
	if err := validateSale(sale); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx contracts.Tx) error {
		if err := tx.Sales().Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if pricing.SaleStatus(sale, now) == models.SaleStatusActive {
			return applySale(ctx, tx, sale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	log.Info().Str("sale_id", sale.ID).Str("actor", actor.ID).Msg("Sale created")
	return s.view(sale, now), nil
}

// Get returns one sale with its computed status.
func (s *SaleService) Get(ctx context.Context, actor models.Actor, id string) (*SaleView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	sale, err := s.store.Sales().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(sale, s.clock.Now()), nil
}

// List returns a page of sales and the total number of matches.
func (s *SaleService) List(ctx context.Context, actor models.Actor, f SaleListFilter) ([]SaleView, int, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	switch f.Status {
	case "", models.SaleStatusActive, models.SaleStatusUpcoming, models.SaleStatusExpired, models.SaleStatusInactive:
	default:
		return nil, 0, utils.Invalid(fmt.Sprintf("status '%s' is not supported", f.Status))
	}

	now := s.clock.Now()
	sales, total, err := s.store.Sales().List(ctx, contracts.SaleFilter{
		Status: f.Status,
		Now:    now,
		Page:   f.Page,
		Limit:  f.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	views := make([]SaleView, 0, len(sales))
	for i := range sales {
		views = append(views, *s.view(&sales[i], now))
	}
	return views, total, nil
}

// Update applies a partial update. Products carrying the old definition are
// released and the new definition is applied when the sale is running.
func (s *SaleService) Update(ctx context.Context, actor models.Actor, id string, req UpdateSaleRequest) (*SaleView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var sale *models.Sale
	err := s.store.WithTx(ctx, func(tx contracts.Tx) error {
		var err error
		sale, err = tx.Sales().GetByID(ctx, id)
		if err != nil {
			return err
		}
		mergeSale(sale, req)
		if err := validateSale(sale); err != nil {
			return err
		}
		sale.UpdatedAt = now

		if err := removeSale(ctx, tx, sale.ID); err != nil {
			return err
		}
		if err := tx.Sales().Update(ctx, sale); err != nil {
			return err
		}
		if pricing.SaleStatus(sale, now) == models.SaleStatusActive {
			return applySale(ctx, tx, sale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	log.Info().Str("sale_id", sale.ID).Str("actor", actor.ID).Msg("Sale updated")
	return s.view(sale, now), nil
}

func mergeSale(sale *models.Sale, req UpdateSaleRequest) {
	if req.Name != nil {
		sale.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		sale.Description = req.Description
	}
	if req.DiscountType != nil {
		sale.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		sale.DiscountValue = *req.DiscountValue
	}
	if req.ApplyTo != nil {
		sale.ApplyTo = *req.ApplyTo
	}
	if req.CategoryIDs != nil {
		sale.CategoryIDs = req.CategoryIDs
	}
	if req.ProductIDs != nil {
		sale.ProductIDs = req.ProductIDs
	}
	if req.Tags != nil {
		sale.Tags = req.Tags
	}
	if req.StartsAt != nil {
		sale.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		sale.EndsAt = *req.EndsAt
	}
	if req.IsActive != nil {
		sale.IsActive = *req.IsActive
	}
	if req.ShowCountdown != nil {
		sale.ShowCountdown = *req.ShowCountdown
	}
	if req.BannerText != nil {
		sale.BannerText = req.BannerText
	}
	if req.BannerColor != nil && *req.BannerColor != "" {
		sale.BannerColor = *req.BannerColor
	}
}

// Delete releases the sale's products and removes the sale.
func (s *SaleService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(tx contracts.Tx) error {
		if _, err := tx.Sales().GetByID(ctx, id); err != nil {
			return err
		}
		if err := removeSale(ctx, tx, id); err != nil {
			return err
		}
		return tx.Sales().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	log.Info().Str("sale_id", id).Str("actor", actor.ID).Msg("Sale deleted")
	s.notifier.Notify(sse.PricingEvent{Event: sse.EventSaleRemoved, SaleID: id, Actor: actor.ID})
	return nil
}

// Activate turns the admin toggle on. A sale whose window is open is applied
// immediately; an upcoming one is applied by Reconcile once it starts.
func (s *SaleService) Activate(ctx context.Context, actor models.Actor, id string) (*SaleView, error) {
	return s.setActive(ctx, actor, id, true)
}

// Deactivate turns the admin toggle off and releases the sale's products.
func (s *SaleService) Deactivate(ctx context.Context, actor models.Actor, id string) (*SaleView, error) {
	return s.setActive(ctx, actor, id, false)
}

func (s *SaleService) setActive(ctx context.Context, actor models.Actor, id string, active bool) (*SaleView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var sale *models.Sale
	err := s.store.WithTx(ctx, func(tx contracts.Tx) error {
		var err error
		sale, err = tx.Sales().GetByID(ctx, id)
		if err != nil {
			return err
		}

		sale.IsActive = active
		sale.UpdatedAt = now
		if err := removeSale(ctx, tx, sale.ID); err != nil {
			return err
		}
		if err := tx.Sales().Update(ctx, sale); err != nil {
			return err
		}
		if pricing.SaleStatus(sale, now) == models.SaleStatusActive {
			return applySale(ctx, tx, sale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	log.Info().Str("sale_id", id).Bool("active", active).Str("actor", actor.ID).Msg("Sale toggled")
	view := s.view(sale, now)
	event := sse.EventSaleRemoved
	if view.Status == models.SaleStatusActive {
		event = sse.EventSaleApplied
	}
	s.notifier.Notify(sse.PricingEvent{Event: event, SaleID: id, Actor: actor.ID})
	return view, nil
}

// ActiveSales lists running sales soonest-ending first. It never writes to
// products; status is computed against the current time.
func (s *SaleService) ActiveSales(ctx context.Context) ([]ActiveSale, error) {
	now := s.clock.Now()

	sales, hit := s.cache.Get(ctx)
	metrics.RecordCacheLookup(hit)
	if !hit {
		var err error
		sales, err = s.store.Sales().ListActive(ctx, now)
		if err != nil {
			return nil, fmt.Errorf("list active sales: %w", err)
		}
		s.cache.Set(ctx, sales)
	}

	out := make([]ActiveSale, 0, len(sales))
	for i := range sales {
		sale := sales[i]
		// cached entries may have crossed a boundary since they were stored
		if pricing.SaleStatus(&sale, now) != models.SaleStatusActive {
			continue
		}
		out = append(out, ActiveSale{
			ID:            sale.ID,
			Name:          sale.Name,
			Description:   sale.Description,
			DiscountType:  sale.DiscountType,
			DiscountValue: sale.DiscountValue,
			ShowCountdown: sale.ShowCountdown,
			BannerText:    sale.BannerText,
			BannerColor:   sale.BannerColor,
			EndsAt:        sale.EndsAt,
			Countdown:     pricing.Countdown(sale.EndsAt, now),
		})
	}
	return out, nil
}

// Countdown returns the time left on a sale, or a nil countdown when the
// sale is not running.
func (s *SaleService) Countdown(ctx context.Context, id string) (*SaleCountdown, error) {
	sale, err := s.store.Sales().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := &SaleCountdown{
		SaleID:        sale.ID,
		Name:          sale.Name,
		IsActive:      pricing.SaleStatus(sale, now) == models.SaleStatusActive,
		ShowCountdown: sale.ShowCountdown,
		BannerText:    sale.BannerText,
		BannerColor:   sale.BannerColor,
		StartsAt:      sale.StartsAt,
		EndsAt:        sale.EndsAt,
	}
	if out.IsActive {
		cd := pricing.Countdown(sale.EndsAt, now)
		out.Countdown = &cd
	}
	return out, nil
}

// Reconcile brings product sale markers in line with sale windows. Ended or
// not yet started sales release their products first; running sales then
// claim the matching products that carry no sale. A product owned by another
// running sale is never taken over, so repeated passes settle. The first
// error is returned after every sale has been attempted.
func (s *SaleService) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	now := s.clock.Now()
	sales, err := s.store.Sales().ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list enabled sales: %w", err)
	}

	result := &ReconcileResult{Applied: []string{}, Removed: []string{}}
	var firstErr error
	fail := func(sale *models.Sale, err error) {
		log.Error().Err(err).Str("sale_id", sale.ID).Msg("Sale reconcile failed")
		if firstErr == nil {
			firstErr = err
		}
	}

	for i := range sales {
		sale := &sales[i]
		if pricing.SaleStatus(sale, now) == models.SaleStatusActive {
			continue
		}
		released, err := s.release(ctx, sale)
		if err != nil {
			fail(sale, err)
			continue
		}
		if released {
			result.Removed = append(result.Removed, sale.ID)
			s.notifier.Notify(sse.PricingEvent{Event: sse.EventSaleRemoved, SaleID: sale.ID})
		}
	}

	for i := range sales {
		sale := &sales[i]
		if pricing.SaleStatus(sale, now) != models.SaleStatusActive {
			continue
		}
		var claimed int64
		err := s.store.WithTx(ctx, func(tx contracts.Tx) error {
			n, err := tx.Products().ClaimSale(ctx, sale.Selector(), sale.Marker())
			if err != nil {
				return fmt.Errorf("claim sale %s: %w", sale.ID, err)
			}
			claimed = n
			return nil
		})
		if err != nil {
			fail(sale, err)
			continue
		}
		if claimed > 0 {
			metrics.RecordSaleTransition("apply", claimed)
			result.Applied = append(result.Applied, sale.ID)
			s.notifier.Notify(sse.PricingEvent{Event: sse.EventSaleApplied, SaleID: sale.ID, Count: int(claimed)})
		}
	}

	if len(result.Applied) > 0 || len(result.Removed) > 0 {
		s.cache.Invalidate(ctx)
		log.Info().Int("applied", len(result.Applied)).Int("removed", len(result.Removed)).Msg("Sales reconciled")
	}
	return result, firstErr
}

// release clears the markers of a sale that is not running. It reports
// whether any product carried the sale.
func (s *SaleService) release(ctx context.Context, sale *models.Sale) (bool, error) {
	carried, err := s.store.Products().CountOnSale(ctx, sale.ID)
	if err != nil || carried == 0 {
		return false, err
	}
	err = s.store.WithTx(ctx, func(tx contracts.Tx) error {
		return removeSale(ctx, tx, sale.ID)
	})
	return err == nil, err
}

func (s *SaleService) view(sale *models.Sale, now time.Time) *SaleView {
	return &SaleView{Sale: *sale, Status: pricing.SaleStatus(sale, now)}
}

func applySale(ctx context.Context, tx contracts.Tx, sale *models.Sale) error {
	n, err := tx.Products().ApplySale(ctx, sale.Selector(), sale.Marker())
	if err != nil {
		return fmt.Errorf("apply sale %s: %w", sale.ID, err)
	}
	metrics.RecordSaleTransition("apply", n)
	log.Debug().Str("sale_id", sale.ID).Int64("products", n).Msg("Sale applied to products")
	return nil
}

func removeSale(ctx context.Context, tx contracts.Tx, saleID string) error {
	n, err := tx.Products().RemoveSale(ctx, saleID)
	if err != nil {
		return fmt.Errorf("remove sale %s: %w", saleID, err)
	}
	metrics.RecordSaleTransition("remove", n)
	return nil
}
