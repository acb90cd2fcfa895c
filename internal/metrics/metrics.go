// Package metrics exposes the responder's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder counts replies and candidate questions. It satisfies the
// service package's ReplyRecorder and CandidateRecorder.
type Recorder struct {
	replies         *prometheus.CounterVec
	unmatched       prometheus.Counter
	replyDuration   *prometheus.HistogramVec
	candidatesSaved *prometheus.CounterVec
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		replies: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supportdesk_replies_total",
				Help: "Total number of composed replies",
			},
			[]string{"source", "emotion"},
		),
		unmatched: f.NewCounter(
			prometheus.CounterOpts{
				Name: "supportdesk_unmatched_replies_total",
				Help: "Total number of replies produced by the fallback engine",
			},
		),
		replyDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "supportdesk_reply_duration_seconds",
				Help:    "Time to load knowledge and compose a reply",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"source"},
		),
		candidatesSaved: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supportdesk_candidate_questions_saved_total",
				Help: "Total number of candidate question upserts by the log miner",
			},
			[]string{"category"},
		),
	}
}

func (r *Recorder) ObserveReply(source, emotion string, unmatched bool, elapsed time.Duration) {
	r.replies.WithLabelValues(source, emotion).Inc()
	if unmatched {
		r.unmatched.Inc()
	}
	r.replyDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (r *Recorder) CandidateSaved(category string) {
	r.candidatesSaved.WithLabelValues(category).Inc()
}
