package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_ObserveReply(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveReply("kb", "rushed", false, 5*time.Millisecond)
	r.ObserveReply("fallback", "normal", true, 2*time.Millisecond)
	r.ObserveReply("fallback", "normal", true, 2*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.replies.WithLabelValues("kb", "rushed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.replies.WithLabelValues("fallback", "normal")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.unmatched))
	assert.Equal(t, 2, testutil.CollectAndCount(r.replyDuration))
}

func TestRecorder_CandidateSaved(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.CandidateSaved("sales")
	r.CandidateSaved("sales")
	r.CandidateSaved("general")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.candidatesSaved.WithLabelValues("sales")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.candidatesSaved.WithLabelValues("general")))
}

func TestNewRecorder_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewRecorder(prometheus.NewRegistry())
		NewRecorder(prometheus.NewRegistry())
	})
}
