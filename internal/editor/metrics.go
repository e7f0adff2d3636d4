package editor

import "github.com/prometheus/client_golang/prometheus"

var (
	snapshotsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "editor_snapshots_published_total",
		Help: "Canvas snapshots handed to snapshot sinks",
	})
	snapshotSinkFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "editor_snapshot_sink_failures_total",
		Help: "Snapshot deliveries that failed and were dropped",
	})
	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "editor_sessions_active",
		Help: "Editing sessions currently held in memory",
	})
	templateSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editor_template_saves_total",
			Help: "Template save attempts by outcome",
		},
		[]string{"result"},
	)
)

// RegisterMetrics registers the editor collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(snapshotsPublished, snapshotSinkFailures, activeSessions, templateSaves)
}
