package host

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	queries  *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imagecdn_queries_total",
			Help: "GraphQL queries executed, by result (ok or error).",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "imagecdn_query_duration_seconds",
			Help:    "Time taken to execute a GraphQL query.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	m.queries = register(reg, m.queries)
	m.duration = register(reg, m.duration)
	return m
}

// register returns the collector already registered under the same name if there is one, so
// that more than one host can share a registry
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// observe records one query.  It does nothing if metrics are not enabled.
func (m *metrics) observe(start time.Time, failed bool) {
	if m == nil {
		return
	}
	result := "ok"
	if failed {
		result = "error"
	}
	m.queries.WithLabelValues(result).Inc()
	m.duration.Observe(time.Since(start).Seconds())
}
