package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordWebhook(t *testing.T) {
	c := New()
	c.RecordWebhook("leave_precheck", "ok", 20*time.Millisecond)
	c.RecordWebhook("leave_precheck", "rejected", 30*time.Millisecond)
	c.RecordWebhook("leave_precheck", "ok", 10*time.Millisecond)

	require.Equal(t, float64(2), testutil.ToFloat64(c.webhookCalls.WithLabelValues("leave_precheck", "ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.webhookCalls.WithLabelValues("leave_precheck", "rejected")))
}

func TestHandlerExposesPortalSeries(t *testing.T) {
	c := New()
	c.Record(http.MethodGet, http.StatusTooManyRequests, time.Millisecond)
	c.SetActiveWorkspaces(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `portal_http_requests_total{method="GET",status="4xx"} 1`)
	require.Contains(t, body, "portal_active_workspaces 3")
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.Record(http.MethodGet, http.StatusOK, time.Millisecond)
	c.RecordWebhook("login", "ok", time.Millisecond)
	c.SetActiveWorkspaces(1)
}
