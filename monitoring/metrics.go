package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	scanResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_resolutions_total",
			Help: "Resolutions by verdict",
		},
		[]string{"verdict"},
	)

	resolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scan_resolution_duration_seconds",
			Help:    "Duration of one full resolution pipeline",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	backendFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_fetch_failures_total",
			Help: "Billing backend calls that failed, per endpoint",
		},
		[]string{"endpoint"},
	)

	statusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_status_updates_total",
			Help: "Status transitions by target status and result",
		},
		[]string{"status", "result"},
	)

	activeGates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scan_gates_active_total",
			Help: "Devices currently holding a scan gate",
		},
	)
)

// TrackResolution records one finished resolution.
func TrackResolution(verdict string, duration time.Duration) {
	scanResolutions.WithLabelValues(verdict).Inc()
	resolutionDuration.Observe(duration.Seconds())
}

// TrackBackendFailure records a failed read or write against the
// billing backend.
func TrackBackendFailure(endpoint string) {
	backendFetchFailures.WithLabelValues(endpoint).Inc()
}

// TrackStatusUpdate records the outcome of one approve/reject attempt.
func TrackStatusUpdate(status, result string) {
	statusUpdates.WithLabelValues(status, result).Inc()
}

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.collectGateMetrics(context.Background())
	}
}

func (m *Monitor) collectGateMetrics(ctx context.Context) {
	keys, err := m.redis.Keys(ctx, "gate:scan:*").Result()
	if err != nil {
		return
	}
	activeGates.Set(float64(len(keys)))
}
