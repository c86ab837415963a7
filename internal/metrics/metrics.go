// Package metrics exposes Prometheus instruments for the pricing engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// priceChanges counts ledger rows written, by change reason.
	priceChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_price_changes_total",
		Help: "Total number of product price changes by reason",
	}, []string{"reason"})

	// skippedProducts counts products a batch skipped after a per-product failure.
	skippedProducts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_batch_skipped_products_total",
		Help: "Total number of products skipped inside price batches by operation",
	}, []string{"operation"})

	// batchDuration tracks how long price batches take.
	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_batch_duration_seconds",
		Help:    "Time taken by price batches by operation",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"operation"})

	// reverts counts successful bulk update reverts.
	reverts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_bulk_reverts_total",
		Help: "Total number of reverted bulk price updates",
	})

	// saleTransitions counts products marked or unmarked by sales.
	saleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_sale_product_transitions_total",
		Help: "Total number of products marked or unmarked by sales",
	}, []string{"action"}) // action: apply, remove

	// activeSalesCache tracks storefront cache lookups.
	activeSalesCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_active_sales_cache_lookups_total",
		Help: "Active sales cache lookups by result",
	}, []string{"result"}) // result: hit, miss
)

// Batch operation labels.
const (
	OpBulkUpdate   = "bulk_update"
	OpApplyRule    = "apply_rule"
	OpCustomPrices = "custom_prices"
	OpRevert       = "revert"
)

// RecordPriceChange counts one ledger row.
func RecordPriceChange(reason string) {
	priceChanges.WithLabelValues(reason).Inc()
}

// RecordSkipped counts a skipped product.
func RecordSkipped(op string) {
	skippedProducts.WithLabelValues(op).Inc()
}

// ObserveBatch records a batch duration since start.
func ObserveBatch(op string, start time.Time) {
	batchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// RecordRevert counts a revert.
func RecordRevert() {
	reverts.Inc()
}

// RecordSaleTransition counts products marked (apply) or unmarked (remove).
func RecordSaleTransition(action string, n int64) {
	if n <= 0 {
		return
	}
	saleTransitions.WithLabelValues(action).Add(float64(n))
}

// RecordCacheLookup counts an active-sales cache lookup.
func RecordCacheLookup(hit bool) {
	if hit {
		activeSalesCache.WithLabelValues("hit").Inc()
		return
	}
	activeSalesCache.WithLabelValues("miss").Inc()
}
