package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

func validRuleRequest() CreatePricingRuleRequest {
	return CreatePricingRuleRequest{
		Name:            "Markup",
		RuleType:        models.RuleTypeMarkup,
		AdjustmentType:  models.AdjustmentPercentage,
		AdjustmentValue: dec("10"),
	}
}

func TestCreatePricingRuleDefaults(t *testing.T) {
	f := newFixture(t)

	rule, err := f.rules.Create(context.Background(), admin, validRuleRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, models.ApplyToAll, rule.ApplyTo)
	assert.True(t, rule.IsActive)
	assert.Equal(t, t0, rule.CreatedAt)

	stored, err := f.rules.Get(context.Background(), admin, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.Name, stored.Name)
}

func TestCreatePricingRuleValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreatePricingRuleRequest)
	}{
		{"blank name", func(r *CreatePricingRuleRequest) { r.Name = "  " }},
		{"unknown rule type", func(r *CreatePricingRuleRequest) { r.RuleType = "discount" }},
		{"unknown adjustment type", func(r *CreatePricingRuleRequest) { r.AdjustmentType = "ratio" }},
		{"negative value", func(r *CreatePricingRuleRequest) { r.AdjustmentValue = dec("-1") }},
		{"sale-only target", func(r *CreatePricingRuleRequest) { r.ApplyTo = models.ApplyToTags }},
		{"unknown condition", func(r *CreatePricingRuleRequest) {
			r.ApplyTo = models.ApplyToCondition
			r.Conditions = []string{"MINT"}
		}},
		{"inverted range", func(r *CreatePricingRuleRequest) {
			r.ApplyTo = models.ApplyToPriceRange
			r.MinPrice = decPtr("100")
			r.MaxPrice = decPtr("10")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := validRuleRequest()
			tt.mutate(&req)

			_, err := f.rules.Create(context.Background(), admin, req)
			assert.ErrorIs(t, err, utils.ErrValidation)
			rules, err := f.rules.List(context.Background(), admin, nil)
			require.NoError(t, err)
			assert.Empty(t, rules)
		})
	}
}

func TestCreatePricingRuleAcceptsPercentageEdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreatePricingRuleRequest)
	}{
		{"percentage floor", func(r *CreatePricingRuleRequest) { r.RuleType = models.RuleTypePriceFloor }},
		{"percentage ceiling", func(r *CreatePricingRuleRequest) { r.RuleType = models.RuleTypePriceCeiling }},
		{"percentage fixed adjustment", func(r *CreatePricingRuleRequest) { r.RuleType = models.RuleTypeFixedAdjustment }},
		{"markdown over 100", func(r *CreatePricingRuleRequest) {
			r.RuleType = models.RuleTypeMarkdown
			r.AdjustmentValue = dec("120")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := validRuleRequest()
			tt.mutate(&req)

			rule, err := f.rules.Create(context.Background(), admin, req)
			require.NoError(t, err)
			assert.Equal(t, req.RuleType, rule.RuleType)
		})
	}
}

func TestApplyPercentageFloorRuleIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProduct("p1", "30.00")
	f.seedProduct("p2", "70.00")

	req := validRuleRequest()
	req.RuleType = models.RuleTypePriceFloor
	req.AdjustmentValue = dec("50")
	rule, err := f.rules.Create(ctx, admin, req)
	require.NoError(t, err)

	res, err := f.rules.Apply(ctx, admin, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.UpdatedCount)
	assert.Equal(t, "30.00", f.price("p1"))
	assert.Equal(t, "70.00", f.price("p2"))
	assert.Empty(t, f.store.ledger())
}

func TestApplyMarkdownOverHundredClampsToMinimum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProduct("p1", "100.00")

	req := validRuleRequest()
	req.RuleType = models.RuleTypeMarkdown
	req.AdjustmentValue = dec("150")
	rule, err := f.rules.Create(ctx, admin, req)
	require.NoError(t, err)

	res, err := f.rules.Apply(ctx, admin, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.UpdatedCount)
	assert.Equal(t, "0.01", f.price("p1"))
}

func TestPricingRuleAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rules.Create(ctx, customer, validRuleRequest())
	assert.ErrorIs(t, err, utils.ErrForbidden)
	_, err = f.rules.List(ctx, models.Actor{}, nil)
	assert.ErrorIs(t, err, utils.ErrForbidden)
	_, err = f.rules.Preview(ctx, customer, "r1")
	assert.ErrorIs(t, err, utils.ErrForbidden)
	_, err = f.rules.Apply(ctx, customer, "r1")
	assert.ErrorIs(t, err, utils.ErrForbidden)
	assert.ErrorIs(t, f.rules.Delete(ctx, customer, "r1"), utils.ErrForbidden)
}

func TestUpdatePricingRulePartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rule, err := f.rules.Create(ctx, admin, validRuleRequest())
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	priority := 7
	inactive := false
	updated, err := f.rules.Update(ctx, admin, rule.ID, UpdatePricingRuleRequest{Priority: &priority, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Priority)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Markup", updated.Name)
	assert.True(t, dec("10").Equal(updated.AdjustmentValue))
	assert.Equal(t, t0.Add(time.Minute), updated.UpdatedAt)

	badValue := dec("-3")
	_, err = f.rules.Update(ctx, admin, rule.ID, UpdatePricingRuleRequest{AdjustmentValue: &badValue})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = f.rules.Update(ctx, admin, "missing", UpdatePricingRuleRequest{Priority: &priority})
	assert.ErrorIs(t, err, utils.ErrRuleNotFound)
}

func TestDeletePricingRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rule, err := f.rules.Create(ctx, admin, validRuleRequest())
	require.NoError(t, err)

	require.NoError(t, f.rules.Delete(ctx, admin, rule.ID))
	_, err = f.rules.Get(ctx, admin, rule.ID)
	assert.ErrorIs(t, err, utils.ErrRuleNotFound)
	assert.ErrorIs(t, f.rules.Delete(ctx, admin, rule.ID), utils.ErrRuleNotFound)
}

func TestListPricingRulesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	create := func(name string, priority int, active bool) {
		req := validRuleRequest()
		req.Name = name
		req.Priority = priority
		req.IsActive = &active
		_, err := f.rules.Create(ctx, admin, req)
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}
	create("low-old", 1, true)
	create("high", 5, true)
	create("low-new", 1, true)
	create("disabled", 9, false)

	all, err := f.rules.List(ctx, admin, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, r := range all {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"disabled", "high", "low-new", "low-old"}, names)

	active := true
	onlyActive, err := f.rules.List(ctx, admin, &active)
	require.NoError(t, err)
	assert.Len(t, onlyActive, 3)
}

func TestPreviewPricingRuleDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProduct("p1", "100.00")
	f.seedProduct("p2", "50.00")
	f.seedProduct("p3", "10.00", inCategory("c2"))

	req := validRuleRequest()
	req.RuleType = models.RuleTypeMarkdown
	req.AdjustmentValue = dec("20")
	req.ApplyTo = models.ApplyToCategory
	req.CategoryIDs = []string{"c1"}
	rule, err := f.rules.Create(ctx, admin, req)
	require.NoError(t, err)

	res, err := f.rules.Preview(ctx, admin, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.AffectedProducts)
	assert.Equal(t, "150.00", res.TotalCurrentValue.StringFixed(2))
	assert.Equal(t, "120.00", res.TotalNewValue.StringFixed(2))
	assert.Equal(t, "-20.00", res.AverageChange.StringFixed(2))
	assert.Len(t, res.Products, 2)

	assert.Equal(t, "100.00", f.price("p1"))
	assert.Zero(t, f.store.writes())
	assert.Empty(t, f.store.ledger())

	_, err = f.rules.Preview(ctx, admin, "missing")
	assert.ErrorIs(t, err, utils.ErrRuleNotFound)
}

func TestApplyPricingRuleNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.rules.Apply(context.Background(), admin, "missing")
	assert.ErrorIs(t, err, utils.ErrRuleNotFound)
}
