package timerecord

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_time_records_total",
		Help: "Time records appended, by record type and ingestion source",
	}, []string{"record_type", "source"})

	transitionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_transitions_rejected_total",
		Help: "Record attempts refused by the status transition table",
	}, []string{"record_type", "source"})
)
