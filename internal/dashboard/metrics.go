package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var statsCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "attendance_stats_cache_lookups_total",
	Help: "Dashboard stats lookups by cache result (hit, miss).",
}, []string{"result"})
