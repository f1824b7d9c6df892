package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservers(t *testing.T) {
	m := New()
	m.ObserveLinkEvent("created")
	m.ObserveLinkEvent("created")
	m.ObserveLinkEvent("removed")
	m.ObserveJob("completed", 20*time.Millisecond)
	m.ObserveRequest("GET", 200)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LinkEvents.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinkEvents.WithLabelValues("removed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Jobs.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.JobDuration))
}

func TestGaugeFunc(t *testing.T) {
	m := New()
	require.NoError(t, m.GaugeFunc("sessions_active", "Open sessions.", func() float64 { return 3 }))
	assert.Error(t, m.GaugeFunc("sessions_active", "Open sessions.", func() float64 { return 3 }),
		"duplicate registration")
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveLinkEvent("changed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `doclink_link_events_total{kind="changed"} 1`)
	assert.Contains(t, string(body), "doclink_boot_time")
}
