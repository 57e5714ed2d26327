// Package metrics defines and registers all custom Prometheus metrics for the
// commerce API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry at package init via
// promauto, so importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "commerce"

// ── Purchase metrics ──────────────────────────────────────────────────────────

// PurchasesTotal counts purchase attempts by terminal result.
// Label:
//   - result: "committed", "insufficient_inventory", "insufficient_deposit",
//     "user_not_found", "product_not_found", "invalid_quantity", "error"
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Total number of purchase attempts, labelled by terminal result.",
	},
	[]string{"result"},
)

// PurchaseRetriesTotal counts commit retries caused by concurrent
// modifications detected at commit time.
var PurchaseRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchase_retries_total",
		Help:      "Total number of purchase commit retries after a concurrency conflict.",
	},
)

// PurchaseDuration measures how long a purchase takes end-to-end, including
// any retries.
var PurchaseDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "purchase_duration_seconds",
		Help:      "Duration of purchase processing from validation to commit.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CatalogCacheTotal counts catalog cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var CatalogCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_total",
		Help:      "Total number of catalog cache lookups, labelled by result (hit/miss/error).",
	},
	[]string{"result"},
)
