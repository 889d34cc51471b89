// Package metrics exposes the prometheus collectors tracking decode
// errors, detected opportunities, and cleanup deletions — the metrics
// surface SPEC_FULL.md adds alongside the spec's core components.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DecodeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mevwatch",
		Name:      "decode_errors_total",
		Help:      "Calldata decode failures by router family.",
	}, []string{"family"})

	TransactionsDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mevwatch",
		Name:      "transactions_decoded_total",
		Help:      "Pending transactions successfully decoded into a DecodedSwap, by family.",
	}, []string{"family"})

	OpportunitiesDetected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mevwatch",
		Name:      "opportunities_detected_total",
		Help:      "Opportunities persisted (status detected or expired), by router family.",
	}, []string{"family"})

	CleanupDeletions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mevwatch",
		Name:      "cleanup_deletions_total",
		Help:      "Rows deleted per cleanup pass, by pass name.",
	}, []string{"pass"})

	BusPublishErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mevwatch",
		Name:      "bus_publish_errors_total",
		Help:      "Failed publishes to the transactions topic.",
	})
)

func init() {
	prometheus.MustRegister(DecodeErrors, TransactionsDecoded, OpportunitiesDetected, CleanupDeletions, BusPublishErrors)
}
