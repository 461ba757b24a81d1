package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeMatched     = "matched"
	outcomePassthrough = "passthrough"

	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeFailed  = "failed"
)

var (
	// Labels: role, outcome (matched, passthrough)
	inflectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petrovich",
		Subsystem: "pipeline",
		Name:      "inflections_total",
		Help:      "Inflected name parts by role and whether a rule served every word",
	}, []string{"role", "outcome"})

	// Labels: outcome (ok, invalid, failed)
	entriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petrovich",
		Subsystem: "pipeline",
		Name:      "entries_total",
		Help:      "Processed entries by outcome",
	}, []string{"outcome"})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "petrovich",
		Subsystem: "pipeline",
		Name:      "batch_duration_seconds",
		Help:      "Time to inflect a whole batch",
		Buckets:   prometheus.DefBuckets,
	})
)
