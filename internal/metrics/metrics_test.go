package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/trustscan/internal/model"
)

func TestObserveReport(t *testing.T) {
	m := New()

	m.ObserveReport(&model.Report{
		Citations: []model.CitationResult{
			{Status: model.StatusVerified},
			{Status: model.StatusBroken},
			{Status: model.StatusVerified},
		},
		Claims:     []model.ClaimResult{{RiskLevel: model.RiskHigh}},
		TrustScore: 0.42,
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.citations.WithLabelValues("verified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.citations.WithLabelValues("broken")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.claims.WithLabelValues("HIGH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verifications.WithLabelValues("ok")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveReport(&model.Report{})
		m.ObserveFailure("cancelled")
		m.ObserveLinkCheck(true, time.Second)
		m.ObserveSemanticCall("judge", false)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveLinkCheck(false, 20*time.Millisecond)
	m.ObserveSemanticCall("judge", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "trustscan_link_check_duration_seconds")
	assert.Contains(t, rec.Body.String(), `trustscan_semantic_calls_total{capability="judge",outcome="ok"} 1`)
}
