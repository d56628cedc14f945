package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	followerFetchTipTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "follower",
		Name:      "fetch_tip_total",
		Help:      "Count of attempts to fetch the chain tip.",
	}, []string{"network", "status"})

	followerProcessBlockTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "follower",
		Name:      "process_block_total",
		Help:      "Count of blocks processed by the follower.",
	}, []string{"network", "status"})

	followerProcessBlockDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "follower",
		Name:      "process_block_duration_seconds",
		Help:      "Duration of fetching and inspecting a block.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	followerBlockTransactions = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "follower",
		Name:      "block_transactions",
		Help:      "Number of transactions per processed block.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
	}, []string{"network"})

	followerHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blockinsight7000",
		Subsystem: "follower",
		Name:      "height",
		Help:      "Height of the last block processed by the follower.",
	}, []string{"network"})
)

// Follower tracks metrics for the block follower.
type Follower struct {
	network string
}

// NewFollower constructs a Follower with defaults.
func NewFollower(network string) *Follower {
	if network == "" {
		network = "unknown"
	}
	return &Follower{network: network}
}

// ObserveFetchTip records a tip lookup outcome.
func (m Follower) ObserveFetchTip(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	followerFetchTipTotal.WithLabelValues(m.network, status).Inc()
}

// ObserveBlock records processing of one block. The height gauge only moves
// on success.
func (m Follower) ObserveBlock(err error, height uint64, txs int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	followerProcessBlockTotal.WithLabelValues(m.network, status).Inc()
	followerProcessBlockDuration.WithLabelValues(m.network, status).Observe(time.Since(started).Seconds())
	if err != nil {
		return
	}
	followerBlockTransactions.WithLabelValues(m.network).Observe(float64(txs))
	followerHeight.WithLabelValues(m.network).Set(float64(height))
}
