package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodGet, "/videos/{id}", http.StatusOK, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/videos/{id}", http.StatusOK, 7*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/videos/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestMetrics_ObserveEngagement(t *testing.T) {
	m := New()

	m.ObserveEngagement(KindView)
	m.ObserveEngagement(KindImpression)
	m.ObserveEngagement(KindImpression)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EngagementTotal.WithLabelValues(KindView)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EngagementTotal.WithLabelValues(KindImpression)))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveEngagement(KindView)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `videocatalog_engagement_events_total{kind="view"} 1`)
}
