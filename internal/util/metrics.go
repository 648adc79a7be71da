package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"op"})

	CheckoutInitiatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_initiated_total",
		Help: "Total number of checkouts handed to the gateway",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of checkout initiations that failed before redirect",
	}, []string{"reason"})

	GatewayRequestsSignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_requests_signed_total",
		Help: "Total number of signed gateway requests produced",
	})

	RedirectOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redirect_outcomes_total",
		Help: "Total number of payment return resolutions",
	}, []string{"outcome"})

	OrdersCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Total number of orders confirmed by the gateway",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed orders",
	}, []string{"reason"})

	NotificationsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_processed_total",
		Help: "Total number of notification events handled",
	}, []string{"event_type"})

	CheckoutInitiateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_initiate_latency_seconds",
		Help:    "Latency of checkout assembly and signing",
		Buckets: prometheus.DefBuckets,
	})

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
