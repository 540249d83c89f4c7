package api

import (
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "photoshare",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests by outcome.",
			},
			[]string{"method", "endpoint", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "photoshare",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"method", "endpoint"},
		),
	}

	var err error
	m.requests, err = register(reg, m.requests)
	if err != nil {
		return nil, err
	}
	m.duration, err = register(reg, m.duration)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// register reuses an identical collector when several clients share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) observe(method, endpoint string, kind Kind, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if kind != "" {
		outcome = string(kind)
	}
	m.requests.WithLabelValues(method, endpoint, outcome).Inc()
	m.duration.WithLabelValues(method, endpoint).Observe(d.Seconds())
}

var staticSegments = map[string]bool{
	"session": true,
	"login":   true,
	"logout":  true,
	"list":    true,
	"new":     true,
}

// canonicalEndpoint turns a request path into a low-cardinality label:
// "/photosOfUser/57231f1a30e4351f4e9f4bd7" becomes "/photosOfUser/:id".
func canonicalEndpoint(path string) string {
	path, _, _ = strings.Cut(path, "?")
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) == 1 {
		return "/" + parts[0]
	}
	second := ":id"
	if staticSegments[parts[1]] {
		second = parts[1]
	}
	return "/" + parts[0] + "/" + second
}
