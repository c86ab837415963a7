package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pricing/internal/service"
)

// SaleReconciler brings product sale markers in line with sale windows.
type SaleReconciler interface {
	Reconcile(ctx context.Context) (*service.ReconcileResult, error)
}

// SaleSyncWorker periodically applies sales whose window opened and
// releases products of sales whose window closed.
type SaleSyncWorker struct {
	sales    SaleReconciler
	interval time.Duration
}

// NewSaleSyncWorker constructs a SaleSyncWorker.
func NewSaleSyncWorker(sales SaleReconciler, interval time.Duration) *SaleSyncWorker {
	return &SaleSyncWorker{
		sales:    sales,
		interval: interval,
	}
}

// Start begins the reconcile loop and returns when ctx is canceled. A zero
// interval disables the worker.
func (w *SaleSyncWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		log.Info().Msg("Sale sync worker disabled")
		return
	}
	log.Info().Dur("interval", w.interval).Msg("Starting sale sync worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Sale sync worker stopped")
			return
		}
	}
}

func (w *SaleSyncWorker) run(ctx context.Context) {
	start := time.Now()
	result, err := w.sales.Reconcile(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to reconcile sales")
		return
	}
	if len(result.Applied) == 0 && len(result.Removed) == 0 {
		return
	}

	log.Info().
		Strs("applied", result.Applied).
		Strs("removed", result.Removed).
		Dur("duration", time.Since(start)).
		Msg("Sale sync completed")
}
