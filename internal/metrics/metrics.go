// Package metrics exposes Prometheus counters and gauges for the
// server's packet/snapshot/client-state activity, following the teacher
// pack's promauto-and-/metrics-mux pattern.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PacketsRx = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arenacore_packets_received_total",
		Help: "Total UDP packets received from clients.",
	})
	PacketsTx = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arenacore_packets_sent_total",
		Help: "Total UDP packets sent to clients.",
	})
	BytesRx = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arenacore_bytes_received_total",
		Help: "Total bytes received from clients.",
	})
	BytesTx = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arenacore_bytes_sent_total",
		Help: "Total bytes sent to clients.",
	})
	SnapshotBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arenacore_snapshot_build_seconds",
		Help:    "Time spent building one tick's snapshot frame for all clients.",
		Buckets: prometheus.DefBuckets,
	})
	ReliableOverflows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arenacore_reliable_overflow_total",
		Help: "Total clients dropped for reliable command queue overflow.",
	})
	ClientsByState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arenacore_clients_by_state",
		Help: "Current number of clients in each lifecycle state.",
	}, []string{"state"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arenacore_errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})
)

// Error label constants bound the cardinality of the Errors vector.
const (
	ErrBitstream = "bitstream"
	ErrDelta     = "delta"
	ErrConfigstr = "configstring"
	ErrReliable  = "reliable"
	ErrTransport = "transport"
)

// Handler returns an http.Handler serving the /metrics endpoint. This
// package starts no listener itself, matching how cmd/coreserver wires
// every long-running listener through its own supervised goroutine.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
