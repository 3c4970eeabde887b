package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ClaimCreated("rules")
	m.ClaimCreated("rules")
	m.ClaimCreated("oracle")
	m.OracleRequest(StageExtract, OutcomeError)
	m.FinanceReconciled()
	m.ObserveDraft(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.claimsCreated.WithLabelValues("rules")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.claimsCreated.WithLabelValues("oracle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.oracleRequests.WithLabelValues(StageExtract, OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconciliations))
	assert.Equal(t, 1, testutil.CollectAndCount(m.draftDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ClaimCreated("rules")
		m.OracleRequest(StageClassify, OutcomeSuccess)
		m.FinanceReconciled()
		m.ObserveDraft(time.Second)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile("ignored.prom"))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.ClaimCreated("rules")

	path := filepath.Join(t.TempDir(), "marincop.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `marincop_claims_created_total{source="rules"} 1`)
}
