package query

import (
	"time"

	"docsearch/internal/index"

	"github.com/prometheus/client_golang/prometheus"
)

var _ Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter prometheus.Counter
	empty   prometheus.Counter
	latency prometheus.Histogram
	service Service
}

// MetricsMiddleware instruments searches with a request counter, a counter of
// searches without hits and a latency histogram, registered on reg.
func MetricsMiddleware(service Service, reg prometheus.Registerer) (Service, error) {
	mm := &metricsMiddleware{
		counter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docsearch",
			Subsystem: "query",
			Name:      "searches_total",
			Help:      "Number of search requests.",
		}),
		empty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docsearch",
			Subsystem: "query",
			Name:      "empty_searches_total",
			Help:      "Number of search requests that returned no entries.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docsearch",
			Subsystem: "query",
			Name:      "search_duration_seconds",
			Help:      "Search latency.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		service: service,
	}
	for _, c := range []prometheus.Collector{mm.counter, mm.empty, mm.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return mm, nil
}

func (mm *metricsMiddleware) Search(text string) []index.Entry {
	defer func(begin time.Time) {
		mm.counter.Inc()
		mm.latency.Observe(time.Since(begin).Seconds())
	}(time.Now())

	hits := mm.service.Search(text)
	if len(hits) == 0 {
		mm.empty.Inc()
	}
	return hits
}
