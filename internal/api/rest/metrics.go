package rest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coverledger_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coverledger_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	applicationsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coverledger_applications_total",
		Help: "Insurance applications by outcome.",
	}, []string{"outcome"})

	claimsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coverledger_claims_submitted_total",
		Help: "Claim submissions by outcome.",
	}, []string{"outcome"})
)
