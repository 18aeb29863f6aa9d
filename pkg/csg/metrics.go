package csg

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	phaseLabel  = "phase"
	reasonLabel = "reason"

	phaseFaceCache = "face_cache"
	phaseFragments = "fragments"

	reasonMissingEdge = "missing_edge"
	reasonDegenerate  = "degenerate_intersection"
)

var (
	csgRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csg_rebuilds_total",
		Help: "The number of tree rebuilds that had dirty brushes.",
	})

	csgBrushesRebuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csg_brushes_rebuilt_total",
		Help: "The number of brushes rebuilt, by rebuild phase.",
	}, []string{
		phaseLabel,
	})

	csgFragments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "csg_fragments",
		Help: "The number of fragments held by the last rebuilt tree.",
	})

	csgSplitFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csg_split_fallbacks_total",
		Help: "The number of split edges that kept the vertex unsplit.",
	}, []string{
		reasonLabel,
	})

	csgRebuildLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "csg_rebuild_latency",
		Help: "The time to rebuild the dirty brushes of a tree.",
	})
)

func instrumentRebuild(start time.Time, faceCaches, fragments, totalFragments int) {
	csgRebuilds.Inc()
	csgBrushesRebuilt.
		With(prometheus.Labels{phaseLabel: phaseFaceCache}).
		Add(float64(faceCaches))
	csgBrushesRebuilt.
		With(prometheus.Labels{phaseLabel: phaseFragments}).
		Add(float64(fragments))
	csgFragments.Set(float64(totalFragments))
	csgRebuildLatency.Observe(time.Since(start).Seconds())
}

func instrumentSplitFallback(reason string) {
	csgSplitFallbacks.
		With(prometheus.Labels{reasonLabel: reason}).
		Inc()
}
