package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_pricing/internal/cache"
	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/pkg/clock"
)

var (
	admin    = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
	customer = models.Actor{ID: "user-1", Role: "customer"}
	t0       = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	store  *memStore
	clock  *clock.MockClock
	bulk   *BulkPriceService
	rules  *PricingRuleService
	sales  *SaleService
	config *PricingConfigService
	hist   *PriceHistoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	clk := clock.NewMockClock(t0)
	bulk := NewBulkPriceService(store, clk)
	return &fixture{
		store:  store,
		clock:  clk,
		bulk:   bulk,
		rules:  NewPricingRuleService(store, bulk, clk, 50),
		sales:  NewSaleService(store, cache.NoopSaleCache{}, clk),
		config: NewPricingConfigService(store, clk),
		hist:   NewPriceHistoryService(store, HistoryLimits{}),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// seedProduct stores an ACTIVE product in category c1.
func (f *fixture) seedProduct(id, price string, opts ...func(*models.Product)) {
	p := models.Product{
		ID:         id,
		SKU:        "SKU-" + id,
		Name:       "Product " + id,
		Price:      dec(price),
		Status:     models.ProductStatusActive,
		CategoryID: "c1",
		Tags:       []string{},
		CreatedAt:  t0,
		UpdatedAt:  t0,
	}
	for _, o := range opts {
		o(&p)
	}
	f.store.putProduct(p)
}

func inCategory(id string) func(*models.Product) {
	return func(p *models.Product) { p.CategoryID = id }
}

func withStatus(s models.ProductStatus) func(*models.Product) {
	return func(p *models.Product) { p.Status = s }
}

func (f *fixture) price(id string) string {
	return f.store.product(id).Price.StringFixed(2)
}
