package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the data-layer collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	bookmarkToggles  *prometheus.CounterVec
	repositoryErrors *prometheus.CounterVec
	uploadDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookmarkToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aora",
			Name:      "bookmark_toggles_total",
			Help:      "Bookmark toggles by resulting status.",
		}, []string{"status"}),
		repositoryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aora",
			Name:      "repository_errors_total",
			Help:      "Failed repository operations.",
		}, []string{"op"}),
		uploadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aora",
			Name:      "upload_duration_seconds",
			Help:      "Storage gateway upload latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"result"}),
	}
	reg.MustRegister(m.bookmarkToggles, m.repositoryErrors, m.uploadDuration)
	return m
}

func (m *Metrics) BookmarkToggled(status string) {
	if m == nil {
		return
	}
	m.bookmarkToggles.WithLabelValues(status).Inc()
}

func (m *Metrics) RepositoryError(op string) {
	if m == nil {
		return
	}
	m.repositoryErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) UploadObserved(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.uploadDuration.WithLabelValues(result).Observe(d.Seconds())
}
