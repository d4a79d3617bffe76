package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuotesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quotes_created_total",
		Help: "Total number of quotes created",
	})

	QuotesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quotes_deleted_total",
		Help: "Total number of quotes deleted",
	})

	QuotesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_failed_total",
		Help: "Total number of failed quote operations",
	}, []string{"reason"})

	SupplierChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_supplier_changes_total",
		Help: "Total number of quote supplier swaps",
	})

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Total number of order status transitions",
	}, []string{"to_status"})

	InsufficientStockTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "insufficient_stock_total",
		Help: "Total number of reservations rejected for lack of stock",
	})

	StockReleaseSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_release_skipped_total",
		Help: "Total number of stock releases skipped because the offer was gone",
	})

	PartSearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "part_searches_total",
		Help: "Total number of part searches",
	})

	ComparisonsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "part_comparisons_total",
		Help: "Total number of supplier comparisons served",
	}, []string{"sort"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
