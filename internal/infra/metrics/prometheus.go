package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FilesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framecounter_files_processed_total",
		Help: "Total number of video files processed, by status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "framecounter_stage_duration_seconds",
		Help:    "Duration of per-file pipeline stages",
		Buckets: []float64{0.05, 0.25, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	FramesCountedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framecounter_frames_counted_total",
		Help: "Total number of frames counted across all files",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "framecounter_active_workers",
		Help: "Number of workers currently counting a file",
	})

	MetadataFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framecounter_metadata_fallback_total",
		Help: "Files where metadata counting was abandoned for a full decode, by reason",
	}, []string{"reason"})
)
