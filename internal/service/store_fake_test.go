package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_pricing/internal/contracts"
	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/pricing"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

// memData is the state behind memStore. Values are stored by value so a
// shallow map copy is a complete snapshot.
type memData struct {
	products map[string]models.Product
	rules    map[string]models.PricingRule
	sales    map[string]models.Sale
	bulk     map[string]models.BulkPriceUpdate
	history  []models.PriceHistory
	config   *models.PricingConfig
}

func (d *memData) clone() *memData {
	c := &memData{
		products: make(map[string]models.Product, len(d.products)),
		rules:    make(map[string]models.PricingRule, len(d.rules)),
		sales:    make(map[string]models.Sale, len(d.sales)),
		bulk:     make(map[string]models.BulkPriceUpdate, len(d.bulk)),
		history:  append([]models.PriceHistory(nil), d.history...),
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.rules {
		c.rules[k] = v
	}
	for k, v := range d.sales {
		c.sales[k] = v
	}
	for k, v := range d.bulk {
		c.bulk[k] = v
	}
	if d.config != nil {
		cfg := *d.config
		c.config = &cfg
	}
	return c
}

// memStore is an in-memory contracts.Store with transaction and savepoint
// rollback by snapshot, plus failure injection for product writes.
type memStore struct {
	mu   sync.Mutex
	data *memData

	failUpdate    map[string]error
	productWrites int
}

func newMemStore() *memStore {
	return &memStore{
		data: &memData{
			products: map[string]models.Product{},
			rules:    map[string]models.PricingRule{},
			sales:    map[string]models.Sale{},
			bulk:     map[string]models.BulkPriceUpdate{},
		},
		failUpdate: map[string]error{},
	}
}

func (s *memStore) Products() contracts.ProductStore       { return memProducts{s} }
func (s *memStore) History() contracts.PriceHistoryStore   { return memHistory{s} }
func (s *memStore) BulkUpdates() contracts.BulkUpdateStore { return memBulk{s} }
func (s *memStore) Rules() contracts.PricingRuleStore      { return memRules{s} }
func (s *memStore) Sales() contracts.SaleStore             { return memSales{s} }
func (s *memStore) Config() contracts.PricingConfigStore   { return memConfig{s} }

func (s *memStore) snapshot() (*memData, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.clone(), s.productWrites
}

func (s *memStore) restore(d *memData, writes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = d
	s.productWrites = writes
}

func (s *memStore) WithTx(_ context.Context, fn func(tx contracts.Tx) error) error {
	snap, writes := s.snapshot()
	if err := fn(memTx{s}); err != nil {
		s.restore(snap, writes)
		return err
	}
	return nil
}

type memTx struct{ *memStore }

func (t memTx) Savepoint(_ context.Context, fn func() error) error {
	snap, writes := t.snapshot()
	if err := fn(); err != nil {
		t.restore(snap, writes)
		return err
	}
	return nil
}

// seed helpers

func (s *memStore) putProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = p
}

func (s *memStore) product(id string) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.products[id]
}

func (s *memStore) ledger() []models.PriceHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PriceHistory(nil), s.data.history...)
}

func (s *memStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productWrites
}

// products

type memProducts struct{ s *memStore }

func (r memProducts) FindMatching(_ context.Context, sel models.Selector) ([]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Product{}
	for _, p := range r.s.data.products {
		if pricing.Matches(&p, sel) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memProducts) GetForUpdate(_ context.Context, id string) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, utils.ErrProductNotFound
	}
	return &p, nil
}

func (r memProducts) UpdatePrice(_ context.Context, id string, expected, newPrice decimal.Decimal, compareAt *decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failUpdate[id]; err != nil {
		return err
	}
	p, ok := r.s.data.products[id]
	if !ok || !p.Price.Equal(expected) {
		return utils.ErrPriceConflict
	}
	p.Price = newPrice
	if compareAt != nil {
		c := *compareAt
		p.CompareAtPrice = &c
	}
	p.Version++
	r.s.data.products[id] = p
	r.s.productWrites++
	return nil
}

func (r memProducts) ApplySale(_ context.Context, sel models.Selector, m models.SaleMarker) (int64, error) {
	return r.markSale(sel, m, false), nil
}

func (r memProducts) ClaimSale(_ context.Context, sel models.Selector, m models.SaleMarker) (int64, error) {
	return r.markSale(sel, m, true), nil
}

func (r memProducts) markSale(sel models.Selector, m models.SaleMarker, unmarkedOnly bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.data.products {
		if !pricing.Matches(&p, sel) || (unmarkedOnly && p.ActiveSaleID != nil) {
			continue
		}
		saleID := m.SaleID
		endsAt := m.EndsAt
		p.IsOnSale = true
		p.ActiveSaleID = &saleID
		p.SalePercentage = m.Percentage
		p.SaleAmount = m.Amount
		p.SaleEndsAt = &endsAt
		r.s.data.products[id] = p
		n++
	}
	r.s.productWrites += int(n)
	return n
}

func (r memProducts) RemoveSale(_ context.Context, saleID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.data.products {
		if p.ActiveSaleID == nil || *p.ActiveSaleID != saleID {
			continue
		}
		p.IsOnSale = false
		p.ActiveSaleID = nil
		p.SalePercentage = nil
		p.SaleAmount = nil
		p.SaleEndsAt = nil
		r.s.data.products[id] = p
		n++
	}
	r.s.productWrites += int(n)
	return n, nil
}

func (r memProducts) CountOnSale(_ context.Context, saleID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, p := range r.s.data.products {
		if p.ActiveSaleID != nil && *p.ActiveSaleID == saleID {
			n++
		}
	}
	return n, nil
}

// history

type memHistory struct{ s *memStore }

func (r memHistory) Insert(_ context.Context, h *models.PriceHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	r.s.data.history = append(r.s.data.history, *h)
	return nil
}

// newestFirst returns history rows newest first; later inserts win ties.
func (r memHistory) newestFirst() []models.PriceHistory {
	out := make([]models.PriceHistory, 0, len(r.s.data.history))
	for i := len(r.s.data.history) - 1; i >= 0; i-- {
		out = append(out, r.s.data.history[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memHistory) ListByProduct(_ context.Context, productID string, limit int) ([]models.PriceHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.PriceHistory{}
	for _, h := range r.newestFirst() {
		if h.ProductID == productID && len(out) < limit {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r memHistory) ListRecent(_ context.Context, limit int) ([]models.PriceChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.PriceChange{}
	for _, h := range r.newestFirst() {
		if len(out) == limit {
			break
		}
		p, ok := r.s.data.products[h.ProductID]
		if !ok {
			continue
		}
		out = append(out, models.PriceChange{PriceHistory: h, ProductName: p.Name, ProductSKU: p.SKU})
	}
	return out, nil
}

func (r memHistory) ListByBulkUpdate(_ context.Context, bulkUpdateID string) ([]models.PriceHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.PriceHistory{}
	for _, h := range r.s.data.history {
		if h.BulkUpdateID != nil && *h.BulkUpdateID == bulkUpdateID {
			out = append(out, h)
		}
	}
	return out, nil
}

// bulk updates

type memBulk struct{ s *memStore }

func (r memBulk) Create(_ context.Context, b *models.BulkPriceUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.bulk[b.ID] = *b
	return nil
}

func (r memBulk) GetByID(_ context.Context, id string) (*models.BulkPriceUpdate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.data.bulk[id]
	if !ok {
		return nil, utils.ErrBulkUpdateNotFound
	}
	return &b, nil
}

func (r memBulk) SetAffectedCount(_ context.Context, id string, n int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b := r.s.data.bulk[id]
	b.AffectedCount = n
	r.s.data.bulk[id] = b
	return nil
}

func (r memBulk) MarkReverted(_ context.Context, id, actorID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.data.bulk[id]
	if !ok || b.IsReverted {
		return utils.ErrAlreadyReverted
	}
	b.IsReverted = true
	b.RevertedAt = &at
	b.RevertedBy = &actorID
	r.s.data.bulk[id] = b
	return nil
}

func (r memBulk) ListRecent(_ context.Context, limit int) ([]models.BulkPriceUpdate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.BulkPriceUpdate{}
	for _, b := range r.s.data.bulk {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// rules

type memRules struct{ s *memStore }

func (r memRules) Create(_ context.Context, rule *models.PricingRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.rules[rule.ID] = *rule
	return nil
}

func (r memRules) GetByID(_ context.Context, id string) (*models.PricingRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rule, ok := r.s.data.rules[id]
	if !ok {
		return nil, utils.ErrRuleNotFound
	}
	return &rule, nil
}

func (r memRules) Update(_ context.Context, rule *models.PricingRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.rules[rule.ID]; !ok {
		return utils.ErrRuleNotFound
	}
	r.s.data.rules[rule.ID] = *rule
	return nil
}

func (r memRules) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.rules[id]; !ok {
		return utils.ErrRuleNotFound
	}
	delete(r.s.data.rules, id)
	return nil
}

func (r memRules) List(_ context.Context, isActive *bool) ([]models.PricingRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.PricingRule{}
	for _, rule := range r.s.data.rules {
		if isActive != nil && rule.IsActive != *isActive {
			continue
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// sales

type memSales struct{ s *memStore }

func (r memSales) Create(_ context.Context, sale *models.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.sales[sale.ID] = *sale
	return nil
}

func (r memSales) GetByID(_ context.Context, id string) (*models.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.data.sales[id]
	if !ok {
		return nil, utils.ErrSaleNotFound
	}
	return &sale, nil
}

func (r memSales) Update(_ context.Context, sale *models.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.sales[sale.ID]; !ok {
		return utils.ErrSaleNotFound
	}
	r.s.data.sales[sale.ID] = *sale
	return nil
}

func (r memSales) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.sales[id]; !ok {
		return utils.ErrSaleNotFound
	}
	delete(r.s.data.sales, id)
	return nil
}

func (r memSales) List(_ context.Context, f contracts.SaleFilter) ([]models.Sale, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := []models.Sale{}
	for _, sale := range r.s.data.sales {
		if f.Status != "" && pricing.SaleStatus(&sale, f.Now) != f.Status {
			continue
		}
		all = append(all, sale)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	limit, page := f.Limit, f.Page
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (r memSales) ListActive(_ context.Context, now time.Time) ([]models.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Sale{}
	for _, sale := range r.s.data.sales {
		if pricing.SaleStatus(&sale, now) == models.SaleStatusActive {
			out = append(out, sale)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndsAt.Before(out[j].EndsAt) })
	return out, nil
}

func (r memSales) ListEnabled(_ context.Context) ([]models.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Sale{}
	for _, sale := range r.s.data.sales {
		if sale.IsActive {
			out = append(out, sale)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// config

type memConfig struct{ s *memStore }

func (r memConfig) Get(_ context.Context) (*models.PricingConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.data.config == nil {
		return nil, nil
	}
	c := *r.s.data.config
	return &c, nil
}

func (r memConfig) Upsert(_ context.Context, c *models.PricingConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.data.config = &cp
	return nil
}

var _ contracts.Store = (*memStore)(nil)
