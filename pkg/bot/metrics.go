package bot

import (
	"github.com/prometheus/client_golang/prometheus"
)

var rejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "clickbot_rejections_total",
	Help: "Queries rejected by the rewriter, by rejection kind",
}, []string{"kind"})

func init() {
	prometheus.MustRegister(rejectionsTotal)
}
