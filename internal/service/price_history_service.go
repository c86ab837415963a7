package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/gtd_pricing/internal/contracts"
	"github.com/GTDGit/gtd_pricing/internal/export"
	"github.com/GTDGit/gtd_pricing/internal/models"
	"github.com/GTDGit/gtd_pricing/internal/utils"
)

// HistoryLimits bounds ledger reads. Recent is the default size of the
// recent feed and MaxRecent the largest limit a caller may ask for.
type HistoryLimits struct {
	PerProduct int
	Recent     int
	MaxRecent  int
	RecentBulk int
}

// PriceHistoryService reads the price ledger.
type PriceHistoryService struct {
	store  contracts.Store
	limits HistoryLimits
}

// NewPriceHistoryService constructs a PriceHistoryService.
func NewPriceHistoryService(store contracts.Store, limits HistoryLimits) *PriceHistoryService {
	if limits.PerProduct <= 0 {
		limits.PerProduct = 50
	}
	if limits.Recent <= 0 {
		limits.Recent = 50
	}
	if limits.MaxRecent <= 0 {
		limits.MaxRecent = 1000
	}
	if limits.MaxRecent < limits.Recent {
		limits.MaxRecent = limits.Recent
	}
	if limits.RecentBulk <= 0 {
		limits.RecentBulk = 10
	}
	return &PriceHistoryService{store: store, limits: limits}
}

// RecentChanges is the admin feed of recent ledger rows and bulk updates.
type RecentChanges struct {
	Changes     []models.PriceChange     `json:"changes"`
	BulkUpdates []models.BulkPriceUpdate `json:"bulkUpdates"`
}

// ProductHistory returns the newest ledger rows of one product.
func (s *PriceHistoryService) ProductHistory(ctx context.Context, actor models.Actor, productID string) ([]models.PriceHistory, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, utils.Invalid("productId is required")
	}
	return s.store.History().ListByProduct(ctx, productID, s.limits.PerProduct)
}

// Recent loads the recent ledger rows and bulk descriptors concurrently.
// A non-positive limit uses the configured default; larger limits are
// honored up to MaxRecent.
func (s *PriceHistoryService) Recent(ctx context.Context, actor models.Actor, limit int) (*RecentChanges, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = s.limits.Recent
	case limit > s.limits.MaxRecent:
		limit = s.limits.MaxRecent
	}

	out := &RecentChanges{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		changes, err := s.store.History().ListRecent(gctx, limit)
		if err != nil {
			return fmt.Errorf("list recent price changes: %w", err)
		}
		out.Changes = changes
		return nil
	})
	g.Go(func() error {
		bulk, err := s.store.BulkUpdates().ListRecent(gctx, s.limits.RecentBulk)
		if err != nil {
			return fmt.Errorf("list recent bulk updates: %w", err)
		}
		out.BulkUpdates = bulk
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Export renders the recent feed as an XLSX workbook.
func (s *PriceHistoryService) Export(ctx context.Context, actor models.Actor, limit int) ([]byte, error) {
	recent, err := s.Recent(ctx, actor, limit)
	if err != nil {
		return nil, err
	}
	return export.PriceHistoryXLSX(recent.Changes, recent.BulkUpdates)
}
