package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Order lifecycle
	// ============================================
	OrdersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "twap_orders_submitted_total",
		Help: "Total number of orders submitted on-chain",
	})

	OrdersCanceled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "twap_orders_canceled_total",
		Help: "Total number of orders canceled on-chain",
	})

	OpenOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "twap_open_orders",
		Help: "Number of open orders seen in the last poll",
	})

	// ============================================
	// Route lookups
	// ============================================
	RouteLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twap_route_lookups_total",
			Help: "Total number of aggregator route lookups",
		},
		[]string{"exchange", "status"},
	)

	RouteLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "twap_route_lookup_duration_seconds",
			Help:    "Aggregator route lookup duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"exchange"},
	)

	// ============================================
	// Bid rounds
	// ============================================
	BidRounds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twap_bid_rounds_total",
			Help: "Total number of bid-round pricings by outcome",
		},
		[]string{"status"},
	)
)
