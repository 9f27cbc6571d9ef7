package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ProfileViewed()
	m.ProfileViewed()
	m.LinkClicked("youtube")
	m.CacheResult(true)
	m.CacheResult(false)
	m.CacheResult(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProfileViewsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinkClicksTotal.WithLabelValues("youtube")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheResultsTotal.WithLabelValues("miss")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ProfileViewed()
		m.LinkClicked("website")
		m.CacheResult(true)
		m.RequestServed("/health", "GET", 200, time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ProfileViewed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "linkpage_profile_views_total 1")
}
