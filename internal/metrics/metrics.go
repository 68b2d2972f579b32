// Package metrics expõe contadores Prometheus das decisões do guard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ReasonAPIRateLimit   = "api_rate_limit"
	ReasonLoginRateLimit = "login_rate_limit"
	ReasonCSRF           = "csrf"
	ReasonLimiterError   = "limiter_error"
)

type GuardMetrics struct {
	registry    *prometheus.Registry
	rejections  *prometheus.CounterVec
	trackedKeys prometheus.Gauge
}

func New() *GuardMetrics {
	m := &GuardMetrics{
		registry: prometheus.NewRegistry(),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "guard",
			Name:      "rejections_total",
			Help:      "Requests rejected by the request guard, by reason.",
		}, []string{"reason"}),
		trackedKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "ratelimit",
			Name:      "tracked_keys",
			Help:      "Identity keys currently held by the in-memory attempt store.",
		}),
	}
	m.registry.MustRegister(m.rejections, m.trackedKeys)
	return m
}

// Reject é seguro para receiver nil, assim os middlewares funcionam sem métricas.
func (m *GuardMetrics) Reject(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *GuardMetrics) SetTrackedKeys(n int) {
	if m == nil {
		return
	}
	m.trackedKeys.Set(float64(n))
}

func (m *GuardMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
