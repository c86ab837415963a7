package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/pricing"
	"github.com/GTDGit/gtd_pricing/internal/service"
)

type mockRules struct{ mock.Mock }

func (m *mockRules) Create(ctx context.Context, actor models.Actor, req service.CreatePricingRuleRequest) (*models.PricingRule, error) {
	args := m.Called(ctx, actor, req)
	rule, _ := args.Get(0).(*models.PricingRule)
	return rule, args.Error(1)
}

func (m *mockRules) Get(ctx context.Context, actor models.Actor, id string) (*models.PricingRule, error) {
	args := m.Called(ctx, actor, id)
	rule, _ := args.Get(0).(*models.PricingRule)
	return rule, args.Error(1)
}

func (m *mockRules) List(ctx context.Context, actor models.Actor, isActive *bool) ([]models.PricingRule, error) {
	args := m.Called(ctx, actor, isActive)
	rules, _ := args.Get(0).([]models.PricingRule)
	return rules, args.Error(1)
}

func (m *mockRules) Update(ctx context.Context, actor models.Actor, id string, req service.UpdatePricingRuleRequest) (*models.PricingRule, error) {
	args := m.Called(ctx, actor, id, req)
	rule, _ := args.Get(0).(*models.PricingRule)
	return rule, args.Error(1)
}

func (m *mockRules) Delete(ctx context.Context, actor models.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockRules) Preview(ctx context.Context, actor models.Actor, id string) (*pricing.PreviewResult, error) {
	args := m.Called(ctx, actor, id)
	res, _ := args.Get(0).(*pricing.PreviewResult)
	return res, args.Error(1)
}

func (m *mockRules) Apply(ctx context.Context, actor models.Actor, id string) (*service.BatchResult, error) {
	args := m.Called(ctx, actor, id)
	res, _ := args.Get(0).(*service.BatchResult)
	return res, args.Error(1)
}

type mockBulk struct{ mock.Mock }

func (m *mockBulk) ApplyAdjustment(ctx context.Context, actor models.Actor, req service.BulkUpdateRequest) (*service.BatchResult, error) {
	args := m.Called(ctx, actor, req)
	res, _ := args.Get(0).(*service.BatchResult)
	return res, args.Error(1)
}

func (m *mockBulk) SetCustomPrices(ctx context.Context, actor models.Actor, prices []service.CustomPrice) (*service.BatchResult, error) {
	args := m.Called(ctx, actor, prices)
	res, _ := args.Get(0).(*service.BatchResult)
	return res, args.Error(1)
}

func (m *mockBulk) Revert(ctx context.Context, actor models.Actor, bulkUpdateID string) (*service.RevertResult, error) {
	args := m.Called(ctx, actor, bulkUpdateID)
	res, _ := args.Get(0).(*service.RevertResult)
	return res, args.Error(1)
}

type mockHistory struct{ mock.Mock }

func (m *mockHistory) ProductHistory(ctx context.Context, actor models.Actor, productID string) ([]models.PriceHistory, error) {
	args := m.Called(ctx, actor, productID)
	rows, _ := args.Get(0).([]models.PriceHistory)
	return rows, args.Error(1)
}

func (m *mockHistory) Recent(ctx context.Context, actor models.Actor, limit int) (*service.RecentChanges, error) {
	args := m.Called(ctx, actor, limit)
	res, _ := args.Get(0).(*service.RecentChanges)
	return res, args.Error(1)
}

func (m *mockHistory) Export(ctx context.Context, actor models.Actor, limit int) ([]byte, error) {
	args := m.Called(ctx, actor, limit)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type mockConfig struct{ mock.Mock }

func (m *mockConfig) Get(ctx context.Context, actor models.Actor) (*models.PricingConfig, error) {
	args := m.Called(ctx, actor)
	cfg, _ := args.Get(0).(*models.PricingConfig)
	return cfg, args.Error(1)
}

func (m *mockConfig) Update(ctx context.Context, actor models.Actor, req service.UpdatePricingConfigRequest) (*models.PricingConfig, error) {
	args := m.Called(ctx, actor, req)
	cfg, _ := args.Get(0).(*models.PricingConfig)
	return cfg, args.Error(1)
}

type mockSales struct{ mock.Mock }

func (m *mockSales) Create(ctx context.Context, actor models.Actor, req service.CreateSaleRequest) (*service.SaleView, error) {
	args := m.Called(ctx, actor, req)
	v, _ := args.Get(0).(*service.SaleView)
	return v, args.Error(1)
}

func (m *mockSales) Get(ctx context.Context, actor models.Actor, id string) (*service.SaleView, error) {
	args := m.Called(ctx, actor, id)
	v, _ := args.Get(0).(*service.SaleView)
	return v, args.Error(1)
}

func (m *mockSales) List(ctx context.Context, actor models.Actor, f service.SaleListFilter) ([]service.SaleView, int, error) {
	args := m.Called(ctx, actor, f)
	v, _ := args.Get(0).([]service.SaleView)
	return v, args.Int(1), args.Error(2)
}

func (m *mockSales) Update(ctx context.Context, actor models.Actor, id string, req service.UpdateSaleRequest) (*service.SaleView, error) {
	args := m.Called(ctx, actor, id, req)
	v, _ := args.Get(0).(*service.SaleView)
	return v, args.Error(1)
}

func (m *mockSales) Delete(ctx context.Context, actor models.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockSales) Activate(ctx context.Context, actor models.Actor, id string) (*service.SaleView, error) {
	args := m.Called(ctx, actor, id)
	v, _ := args.Get(0).(*service.SaleView)
	return v, args.Error(1)
}

func (m *mockSales) Deactivate(ctx context.Context, actor models.Actor, id string) (*service.SaleView, error) {
	args := m.Called(ctx, actor, id)
	v, _ := args.Get(0).(*service.SaleView)
	return v, args.Error(1)
}

func (m *mockSales) ActiveSales(ctx context.Context) ([]service.ActiveSale, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]service.ActiveSale)
	return v, args.Error(1)
}

func (m *mockSales) Countdown(ctx context.Context, id string) (*service.SaleCountdown, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*service.SaleCountdown)
	return v, args.Error(1)
}
