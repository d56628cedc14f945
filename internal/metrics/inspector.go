package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	inspectTransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "inspector",
		Name:      "transactions_total",
		Help:      "Count of inspected transactions.",
	}, []string{"network", "status"})

	inspectTransactionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "inspector",
		Name:      "transaction_duration_seconds",
		Help:      "Duration of decoding and inspecting a transaction.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
	}, []string{"network", "status"})

	inspectFlagsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "inspector",
		Name:      "flags_total",
		Help:      "Count of inspected transactions by consensus flag.",
	}, []string{"network", "flag"})
)

// Inspector tracks metrics for transaction inspection.
type Inspector struct {
	network string
}

// NewInspector constructs an Inspector with defaults.
func NewInspector(network string) *Inspector {
	if network == "" {
		network = "unknown"
	}
	return &Inspector{network: network}
}

// ObserveTransaction records one inspection and the flags raised on it.
func (m Inspector) ObserveTransaction(err error, flags []string, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	inspectTransactionsTotal.WithLabelValues(m.network, status).Inc()
	inspectTransactionDuration.WithLabelValues(m.network, status).Observe(time.Since(started).Seconds())
	for _, flag := range flags {
		inspectFlagsTotal.WithLabelValues(m.network, flag).Inc()
	}
}
