// Package metrics defines the Prometheus collectors for consent, payment and SCA
// lifecycle events. Collectors are package-level so every module can record
// without threading a registry through constructors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConsentStatusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_consent_status_transitions_total",
		Help: "Consent status changes by source and target status",
	}, []string{"from", "to"})

	PaymentStatusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_payment_status_transitions_total",
		Help: "Payment transaction status changes by source and target status",
	}, []string{"from", "to"})

	ChecksumConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_checksum_conflicts_total",
		Help: "Writes aborted because the stored checksum did not verify",
	}, []string{"operation"})

	ExpiryRewrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_expiry_rewrites_total",
		Help: "Entities whose status was rewritten on read by an expiry check",
	}, []string{"entity", "kind"})

	ScaTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_sca_transitions_total",
		Help: "SCA status changes produced by the authorisation chain",
	}, []string{"approach", "from", "to"})

	UsageIncrements = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cms_consent_usage_increments_total",
		Help: "Recorded consent access usages",
	})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_http_requests_total",
		Help: "HTTP requests handled by route and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cms_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		ConsentStatusTransitions,
		PaymentStatusTransitions,
		ChecksumConflicts,
		ExpiryRewrites,
		ScaTransitions,
		UsageIncrements,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	}
}

// Register registers all collectors on reg (the default registerer when nil).
// Collectors already registered are ignored.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// Handler returns the exposition handler for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
