package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCounters(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.RecordPR("single-rep-max")
	m.RecordPR("rep-max")
	m.RecordPR("rep-max")
	m.HistoryLookup(true)
	m.HistoryLookup(false)
	m.HistoryLookup(false)
	m.RecordsFailed()
	m.SetsImported(12)
	m.SetsImported(0)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRecords.WithLabelValues("single-rep-max")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterRecords.WithLabelValues("rep-max")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterHistoryLookup.WithLabelValues("hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterHistoryLookup.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRecordErrors))
	assert.Equal(t, float64(12), testutil.ToFloat64(m.CounterSetsImported))

	count, err := testutil.GatherAndCount(reg, "ironlog_test_personal_records_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestObserveRequest(t *testing.T) {
	m := NewTestManager()

	m.ObserveRequest("GET", "/api/v1/strength", 200, 0.02)
	m.ObserveRequest("GET", "/api/v1/strength", 204, 0.01)
	m.ObserveRequest("POST", "/api/v1/sessions", 400, 0.01)
	m.ObserveRequest("POST", "/api/v1/sessions", 503, 0.01)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "/api/v1/strength", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRequests.WithLabelValues("POST", "/api/v1/sessions", "4xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRequests.WithLabelValues("POST", "/api/v1/sessions", "5xx")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HistRequestDuration))
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, 0.1)
		m.RecordPR("rep-max")
		m.HistoryLookup(true)
		m.RecordsFailed()
		m.ObserveRecords(0.1)
		m.SetsImported(3)
	})
}
