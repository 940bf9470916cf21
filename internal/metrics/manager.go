package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds the application's Prometheus collectors. A nil *Manager is
// valid and records nothing.
type Manager struct {
	// counters
	CounterRequests      *prometheus.CounterVec
	CounterRecords       *prometheus.CounterVec
	CounterHistoryLookup *prometheus.CounterVec
	CounterRecordErrors  prometheus.Counter
	CounterSetsImported  prometheus.Counter

	// histograms
	HistRequestDuration *prometheus.HistogramVec
	HistRecordsDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("ironlog", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("ironlog", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "The total number of HTTP requests",
	}, []string{"method", "route", "status"})
	counterRecords := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "personal_records_total",
		Help:      "Personal records detected, by kind",
	}, []string{"kind"})
	counterHistoryLookup := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "history_cache_lookups_total",
		Help:      "History cache lookups, by result",
	}, []string{"result"})
	counterRecordErrors := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "record_computation_errors_total",
		Help:      "PR computations that failed after a session was saved",
	})
	counterSetsImported := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sets_imported_total",
		Help:      "Sets stored by file imports",
	})

	histRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"route"})
	histRecordsDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_compute_duration_seconds",
		Help:      "Duration of a session PR computation in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
	})

	return &Manager{
		CounterRequests:      counterRequests,
		CounterRecords:       counterRecords,
		CounterHistoryLookup: counterHistoryLookup,
		CounterRecordErrors:  counterRecordErrors,
		CounterSetsImported:  counterSetsImported,
		HistRequestDuration:  histRequestDuration,
		HistRecordsDuration:  histRecordsDuration,
	}
}

// ObserveRequest records one served HTTP request.
func (m *Manager) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.CounterRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.HistRequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordPR counts one detected personal record of the given kind.
func (m *Manager) RecordPR(kind string) {
	if m == nil {
		return
	}
	m.CounterRecords.WithLabelValues(kind).Inc()
}

// HistoryLookup counts a history cache hit or miss. Its signature matches
// records.WithLookupObserver.
func (m *Manager) HistoryLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CounterHistoryLookup.WithLabelValues(result).Inc()
}

// RecordsFailed counts a PR computation that failed.
func (m *Manager) RecordsFailed() {
	if m == nil {
		return
	}
	m.CounterRecordErrors.Inc()
}

// ObserveRecords records how long a PR computation took.
func (m *Manager) ObserveRecords(seconds float64) {
	if m == nil {
		return
	}
	m.HistRecordsDuration.Observe(seconds)
}

// SetsImported adds n imported sets.
func (m *Manager) SetsImported(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.CounterSetsImported.Add(float64(n))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
