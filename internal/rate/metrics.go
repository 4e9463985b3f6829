package rate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exrates_query_total",
		Help: "Total number of answered rate queries by source",
	}, []string{"source"})

	ingestedRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exrates_ingested_records_total",
		Help: "Total number of rate records written to the store",
	})
)
