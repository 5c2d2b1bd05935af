package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage names used as the "stage" label.
const (
	StageInsert     = "insert"
	StageArchive    = "archive"
	StageTranscribe = "transcribe"
	StageEnhance    = "enhance"
	StageFinalize   = "finalize"
)

// Outcome labels for the submissions counter.
const (
	OutcomeRejected  = "rejected"
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeError     = "error"
)

// Metrics records pipeline outcomes and per-stage latency.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	submissions   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	fallbacks     prometheus.Counter
}

// NewMetrics creates the pipeline collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicenote",
			Name:      "submissions_total",
			Help:      "Audio submissions by final outcome.",
		}, []string{"status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voicenote",
			Name:      "stage_duration_seconds",
			Help:      "Latency of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voicenote",
			Name:      "enhancement_fallbacks_total",
			Help:      "Enhancements that fell back to the original text.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.submissions, m.stageDuration, m.fallbacks)
	}
	return m
}

func (m *Metrics) recordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) recordFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}
