package host_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/andrewwphillips/imagecdn/internal/host"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newPostHost(t, host.Metrics(reg))
	post(h, `{"query": "{ post(id: 1) { title } }"}`)
	post(h, `{"query": "{ post(id: 1) { nothing } }"}`)

	// A second host using the same registry shares the collectors
	h2 := newPostHost(t, host.Metrics(reg))
	post(h2, `{"query": "{ allPost { id } }"}`)

	const expected = `
# HELP imagecdn_queries_total GraphQL queries executed, by result (ok or error).
# TYPE imagecdn_queries_total counter
imagecdn_queries_total{result="error"} 1
imagecdn_queries_total{result="ok"} 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "imagecdn_queries_total")
	Assertf(t, err == nil, "query counts: %v", err)

	count, err := testutil.GatherAndCount(reg, "imagecdn_query_duration_seconds")
	Assertf(t, err == nil && count == 1, "expected one duration histogram, got %d (error %v)", count, err)
}
