package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.BookmarkToggled("added")
	m.BookmarkToggled("added")
	m.BookmarkToggled("removed")
	m.RepositoryError("create_post")
	m.UploadObserved(120*time.Millisecond, nil)
	m.UploadObserved(time.Second, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookmarkToggles.WithLabelValues("added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookmarkToggles.WithLabelValues("removed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.repositoryErrors.WithLabelValues("create_post")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.uploadDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BookmarkToggled("added")
		m.RepositoryError("op")
		m.UploadObserved(time.Second, nil)
	})
}
