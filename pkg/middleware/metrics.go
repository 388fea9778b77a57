package middleware

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/uniroute/internal/errors"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "uniroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "uniroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the navigation and bridge collectors for one registry.
type Metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	bridgeConnected    prometheus.Gauge
	bridgeFrames       *prometheus.CounterVec
	wsErrors           *prometheus.CounterVec
}

// NewMetrics registers the collectors with the configured registry.
// Collectors already registered under the same name are reused, so calling
// NewMetrics twice against one registry is safe.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	if len(config.Buckets) == 0 {
		config.Buckets = prometheus.DefBuckets
	}
	reg := config.Registry

	return &Metrics{
		navigationsTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by method and status",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "status"})),

		navigationDuration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method"})),

		navigationErrors: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Total number of failed navigations by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "code"})),

		bridgeConnected: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bridge_connected",
			Help:        "1 while a runtime is connected to the bridge",
			ConstLabels: config.ConstLabels,
		})),

		bridgeFrames: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bridge_frames_total",
			Help:        "Total bridge frames by direction and type",
			ConstLabels: config.ConstLabels,
		}, []string{"direction", "type"})),

		wsErrors: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bridge_websocket_errors_total",
			Help:        "Total bridge WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"})),
	}
}

// register adds c to reg, returning the existing collector when one with
// the same description is already there.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Prometheus creates a Decorator that counts and times every navigation.
//
// Example:
//
//	h := middleware.WrapHost(host, middleware.Prometheus(
//	    middleware.WithNamespace("shop"),
//	))
func Prometheus(opts ...MetricsOption) Decorator {
	return NewMetrics(opts...).Decorator()
}

// Decorator returns a Decorator recording into m.
func (m *Metrics) Decorator() Decorator {
	return Intercept(func(ctx context.Context, call Call, invoke func(context.Context) error) error {
		start := time.Now()
		err := invoke(ctx)
		m.navigationDuration.WithLabelValues(call.Method).Observe(time.Since(start).Seconds())

		status := "success"
		if err != nil {
			status = "error"
			m.navigationErrors.WithLabelValues(call.Method, errorCode(err)).Inc()
		}
		m.navigationsTotal.WithLabelValues(call.Method, status).Inc()
		return err
	})
}

// errorCode returns a low-cardinality label for err.
func errorCode(err error) string {
	if code := errors.CodeOf(err); code != "" {
		return code
	}
	switch {
	case stderrors.Is(err, context.Canceled):
		return "canceled"
	case stderrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}

// RecordConnect marks a runtime as connected.
func (m *Metrics) RecordConnect() {
	if m != nil {
		m.bridgeConnected.Set(1)
	}
}

// RecordDisconnect marks the runtime as gone.
func (m *Metrics) RecordDisconnect() {
	if m != nil {
		m.bridgeConnected.Set(0)
	}
}

// RecordFrame counts one bridge frame. direction is "in" or "out".
func (m *Metrics) RecordFrame(direction, frameType string) {
	if m != nil {
		m.bridgeFrames.WithLabelValues(direction, frameType).Inc()
	}
}

// RecordWebSocketError counts a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	if m != nil {
		m.wsErrors.WithLabelValues(errorType).Inc()
	}
}
