package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PurchasesInitiated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "etix_purchases_initiated_total",
		Help: "Number of purchase sessions opened with the payment gateway",
	})

	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etix_reconciliations_total",
		Help: "Payment reconciliation attempts by outcome",
	}, []string{"outcome"})

	RefundsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "etix_refunds_processed_total",
		Help: "Number of refunds credited to user balances",
	})

	Admissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etix_admissions_total",
		Help: "Venue admission verifications by outcome",
	}, []string{"outcome"})

	GatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "etix_gateway_request_duration_seconds",
		Help:    "Latency of outbound payment gateway calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)
