package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/shaderctl/internal/protocol/session"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shaderctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shaderctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	commandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shaderctl",
			Subsystem: "session",
			Name:      "commands_total",
			Help:      "Worker commands by outcome.",
		},
		[]string{"session", "command", "success"},
	)
	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shaderctl",
			Subsystem: "session",
			Name:      "command_duration_seconds",
			Help:      "Worker command duration in seconds.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"session", "command"},
	)
	recordTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shaderctl",
			Subsystem: "session",
			Name:      "records_total",
			Help:      "Reply records seen, by tag.",
		},
		[]string{"session", "command", "tag"},
	)
	droppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shaderctl",
			Subsystem: "session",
			Name:      "dropped_records_total",
			Help:      "Binding records dropped for unknown enumerants.",
		},
		[]string{"session", "command"},
	)
	channelBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shaderctl",
			Subsystem: "channel",
			Name:      "bytes_total",
			Help:      "Bytes carried on worker channels, including terminators.",
		},
		[]string{"session", "direction"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, commandTotal, commandDuration, recordTotal, droppedTotal, channelBytes)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordCommand(info session.CommandInfo, stats *session.CommandStats, duration time.Duration, err error) {
	RegisterMetrics()
	commandTotal.WithLabelValues(info.SessionID, info.Command, strconv.FormatBool(err == nil)).Inc()
	commandDuration.WithLabelValues(info.SessionID, info.Command).Observe(duration.Seconds())
	if stats == nil {
		return
	}
	for tag, n := range stats.Records {
		recordTotal.WithLabelValues(info.SessionID, info.Command, tag).Add(float64(n))
	}
	if stats.Dropped > 0 {
		droppedTotal.WithLabelValues(info.SessionID, info.Command).Add(float64(stats.Dropped))
	}
	channelBytes.WithLabelValues(info.SessionID, "out").Add(float64(stats.BytesWritten))
	channelBytes.WithLabelValues(info.SessionID, "in").Add(float64(stats.BytesRead))
}

// MetricsHook records every session command into the Prometheus collectors.
type MetricsHook struct{}

var _ session.Hook = MetricsHook{}

func (MetricsHook) OnCommandStart(ctx context.Context, _ session.CommandInfo) (context.Context, session.HookToken) {
	return ctx, time.Now()
}

func (MetricsHook) OnCommandEnd(_ context.Context, token session.HookToken, info session.CommandInfo, stats *session.CommandStats, err error) {
	start, ok := token.(time.Time)
	if !ok {
		return
	}
	RecordCommand(info, stats, time.Since(start), err)
}
