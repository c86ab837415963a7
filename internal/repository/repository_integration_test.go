//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/GTDGit/gtd_pricing/internal/contracts"
	"github.com/GTDGit/gtd_pricing/internal/database"
	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/pricing"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pricing"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.ConnectDSN(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db.DB, "file://../../migrations"))
	return db
}

type productRow struct {
	id, category, brand, status string
	price                       string
	tags                        []string
}

func insertProducts(t *testing.T, db *sqlx.DB, rows ...productRow) {
	t.Helper()
	for _, r := range rows {
		status := r.status
		if status == "" {
			status = "ACTIVE"
		}
		tags := r.tags
		if tags == nil {
			tags = []string{}
		}
		_, err := db.Exec(`
            INSERT INTO products (id, sku, name, price, status, category_id, brand, tags)
            VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)`,
			r.id, "SKU-"+r.id, "Product "+r.id, r.price, status, r.category, r.brand, pq.Array(tags))
		require.NoError(t, err)
	}
}

func TestFindMatchingAgreesWithMatcher(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	insertProducts(t, db,
		productRow{id: "p1", category: "c1", brand: "Nike", price: "20.00", tags: []string{"summer"}},
		productRow{id: "p2", category: "c2", brand: "adidas", price: "60.00"},
		productRow{id: "p3", category: "c1", price: "35.00", status: "DRAFT"},
		productRow{id: "p4", category: "c2", brand: "NIKE", price: "45.00", tags: []string{"winter", "summer"}},
	)
	repo := NewProductRepository(db)

	all, err := repo.FindMatching(ctx, models.Selector{ApplyTo: models.ApplyToAll})
	require.NoError(t, err)

	minPrice := decimal.NewFromInt(30)
	selectors := []models.Selector{
		{ApplyTo: models.ApplyToAll},
		{ApplyTo: models.ApplyToCategory, CategoryIDs: []string{"c1"}},
		{ApplyTo: models.ApplyToBrand, Brands: []string{"nike"}},
		{ApplyTo: models.ApplyToTags, Tags: []string{"summer"}},
		{ApplyTo: models.ApplyToPriceRange, MinPrice: &minPrice},
		{ApplyTo: models.ApplyToProducts, ProductIDs: []string{"p2", "p3"}},
		{ApplyTo: models.ApplyToCategory},
	}
	for _, sel := range selectors {
		got, err := repo.FindMatching(ctx, sel)
		require.NoError(t, err)

		var want []string
		for i := range all {
			if pricing.Matches(&all[i], sel) {
				want = append(want, all[i].ID)
			}
		}
		var ids []string
		for _, p := range got {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, want, ids, "selector %s", sel.ApplyTo)
	}
	assert.Len(t, all, 3)
}

func TestUpdatePriceCompareAndSwap(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	insertProducts(t, db, productRow{id: "p1", category: "c1", price: "100.00"})
	repo := NewProductRepository(db)

	compareAt := decimal.RequireFromString("100.00")
	err := repo.UpdatePrice(ctx, "p1", decimal.RequireFromString("100.00"), decimal.RequireFromString("80.00"), &compareAt)
	require.NoError(t, err)

	err = repo.UpdatePrice(ctx, "p1", decimal.RequireFromString("100.00"), decimal.RequireFromString("70.00"), nil)
	assert.ErrorIs(t, err, utils.ErrPriceConflict)

	store := NewStore(db)
	require.NoError(t, store.WithTx(ctx, func(tx contracts.Tx) error {
		p, err := tx.Products().GetForUpdate(ctx, "p1")
		require.NoError(t, err)
		assert.True(t, p.Price.Equal(decimal.RequireFromString("80.00")))
		require.NotNil(t, p.CompareAtPrice)
		assert.True(t, p.CompareAtPrice.Equal(compareAt))
		assert.Equal(t, int64(1), p.Version)
		return nil
	}))

	_, err = repo.GetForUpdate(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrProductNotFound)
}

func TestSavepointRollsBackOnlyFailedWork(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	insertProducts(t, db,
		productRow{id: "p1", category: "c1", price: "10.00"},
		productRow{id: "p2", category: "c1", price: "10.00"},
	)
	store := NewStore(db)

	err := store.WithTx(ctx, func(tx contracts.Tx) error {
		require.NoError(t, tx.Savepoint(ctx, func() error {
			return tx.Products().UpdatePrice(ctx, "p1", decimal.NewFromInt(10), decimal.NewFromInt(12), nil)
		}))
		err := tx.Savepoint(ctx, func() error {
			if err := tx.Products().UpdatePrice(ctx, "p2", decimal.NewFromInt(10), decimal.NewFromInt(12), nil); err != nil {
				return err
			}
			return utils.ErrPriceConflict
		})
		assert.ErrorIs(t, err, utils.ErrPriceConflict)
		return nil
	})
	require.NoError(t, err)

	var prices []decimal.Decimal
	require.NoError(t, db.Select(&prices, `SELECT price FROM products ORDER BY id`))
	assert.True(t, prices[0].Equal(decimal.NewFromInt(12)))
	assert.True(t, prices[1].Equal(decimal.NewFromInt(10)))
}

func TestBulkUpdateLedgerAndRevertFlag(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	insertProducts(t, db, productRow{id: "p1", category: "c1", price: "10.00"})
	bulk := NewBulkUpdateRepository(db)
	history := NewPriceHistoryRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	b := &models.BulkPriceUpdate{
		ID:              "b1",
		AdjustmentType:  models.AdjustmentPercentage,
		AdjustmentValue: decimal.NewFromInt(10),
		ApplyTo:         models.ApplyToCategory,
		TargetIDs:       []string{"c1"},
		CreatedBy:       "admin-1",
		CreatedAt:       now,
	}
	require.NoError(t, bulk.Create(ctx, b))
	bulkID := b.ID
	require.NoError(t, history.Insert(ctx, &models.PriceHistory{
		ID:            "h1",
		ProductID:     "p1",
		PreviousPrice: decimal.NewFromInt(10),
		NewPrice:      decimal.NewFromInt(11),
		ChangeReason:  models.ChangeReasonBulkUpdate,
		BulkUpdateID:  &bulkID,
		ChangedBy:     "admin-1",
	}))
	require.NoError(t, bulk.SetAffectedCount(ctx, "b1", 1))

	rows, err := history.ListByBulkUpdate(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].CreatedAt.IsZero())

	recent, err := history.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Product p1", recent[0].ProductName)

	require.NoError(t, bulk.MarkReverted(ctx, "b1", "admin-2", now))
	assert.ErrorIs(t, bulk.MarkReverted(ctx, "b1", "admin-2", now), utils.ErrAlreadyReverted)

	got, err := bulk.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, got.IsReverted)
	assert.Equal(t, 1, got.AffectedCount)
	require.NotNil(t, got.RevertedBy)
	assert.Equal(t, "admin-2", *got.RevertedBy)

	_, err = bulk.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, utils.ErrBulkUpdateNotFound)
}

func TestApplyAndRemoveSale(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	insertProducts(t, db,
		productRow{id: "p1", category: "c1", price: "10.00"},
		productRow{id: "p2", category: "c1", price: "10.00"},
		productRow{id: "p3", category: "c2", price: "10.00"},
	)
	repo := NewProductRepository(db)
	pct := decimal.NewFromInt(20)
	ends := time.Now().Add(24 * time.Hour).UTC()

	n, err := repo.ApplySale(ctx,
		models.Selector{ApplyTo: models.ApplyToCategory, CategoryIDs: []string{"c1"}},
		models.SaleMarker{SaleID: "s1", Percentage: &pct, EndsAt: ends})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// s2 claims p2; removing s1 must leave it alone.
	_, err = repo.ApplySale(ctx,
		models.Selector{ApplyTo: models.ApplyToProducts, ProductIDs: []string{"p2"}},
		models.SaleMarker{SaleID: "s2", Percentage: &pct, EndsAt: ends})
	require.NoError(t, err)

	count, err := repo.CountOnSale(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	n, err = repo.RemoveSale(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var onSale []string
	require.NoError(t, db.Select(&onSale, `SELECT id FROM products WHERE is_on_sale ORDER BY id`))
	assert.Equal(t, []string{"p2"}, onSale)
}

func TestClaimSaleSkipsOwnedProducts(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	insertProducts(t, db,
		productRow{id: "p1", category: "c1", price: "10.00"},
		productRow{id: "p2", category: "c1", price: "10.00"},
	)
	repo := NewProductRepository(db)
	pct := decimal.NewFromInt(10)
	ends := time.Now().Add(24 * time.Hour).UTC()
	all := models.Selector{ApplyTo: models.ApplyToCategory, CategoryIDs: []string{"c1"}}

	_, err := repo.ApplySale(ctx,
		models.Selector{ApplyTo: models.ApplyToProducts, ProductIDs: []string{"p1"}},
		models.SaleMarker{SaleID: "s1", Percentage: &pct, EndsAt: ends})
	require.NoError(t, err)

	n, err := repo.ClaimSale(ctx, all, models.SaleMarker{SaleID: "s2", Percentage: &pct, EndsAt: ends})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.ClaimSale(ctx, all, models.SaleMarker{SaleID: "s2", Percentage: &pct, EndsAt: ends})
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := repo.CountOnSale(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPricingConfigUpsert(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewPricingConfigRepository(db)

	cfg := models.DefaultPricingConfig()
	cfg.RoundingRule = "nearest_95"
	cfg.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, &cfg))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "nearest_95", got.RoundingRule)
	assert.True(t, got.DefaultMarkupPercent.Equal(decimal.NewFromInt(30)))
}
