// Package metrics provides Prometheus-based metrics for document operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the document.SaveObserver interface using Prometheus.
type Recorder struct {
	savesTotal    *prometheus.CounterVec
	saveDuration  prometheus.Histogram
	backupsTotal  prometheus.Counter
	restoresTotal prometheus.Counter
}

// NewRecorder creates a new Prometheus-based metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		savesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsync_saves_total",
				Help: "Total number of document save attempts by outcome",
			},
			[]string{"outcome"},
		),
		saveDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docsync_save_duration_seconds",
				Help:    "Duration of document save operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		backupsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "docsync_backups_total",
				Help: "Total number of backup snapshots written",
			},
		),
		restoresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "docsync_restores_total",
				Help: "Total number of backup restores",
			},
		),
	}
}

// ObserveSave records one save attempt.
func (r *Recorder) ObserveSave(outcome string, elapsed time.Duration) {
	r.savesTotal.WithLabelValues(outcome).Inc()
	r.saveDuration.Observe(elapsed.Seconds())
}

// ObserveBackup records one snapshot.
func (r *Recorder) ObserveBackup() {
	r.backupsTotal.Inc()
}

// ObserveRestore records one restore.
func (r *Recorder) ObserveRestore() {
	r.restoresTotal.Inc()
}
