package executor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK             = "ok"
	outcomeTransportError = "transport_error"
	outcomeReadError      = "read_error"
	outcomeDatabaseError  = "database_error"
)

var (
	queryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "clickbot_query_duration_seconds",
		Help:    "Wall-clock duration of ClickHouse HTTP queries",
		Buckets: prometheus.DefBuckets,
	})
	queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clickbot_queries_total",
		Help: "Total queries sent to ClickHouse, by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(queryDuration)
	prometheus.MustRegister(queriesTotal)
}

func observeQuery(outcome string, elapsed time.Duration) {
	queriesTotal.WithLabelValues(outcome).Inc()
	queryDuration.Observe(elapsed.Seconds())
}
