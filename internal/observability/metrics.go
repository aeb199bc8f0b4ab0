package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu              sync.Mutex
	requestCount    map[string]int64
	errorCount      map[string]int64
	transitionCount map[string]int64
	snapshotLoads   int64
	snapshotErrors  int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:    make(map[string]int64),
		errorCount:      make(map[string]int64),
		transitionCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordTransition counts applied status transitions by kind.
func (m *Metrics) RecordTransition(transition string, succeeded bool) {
	if m == nil {
		return
	}
	key := transition + "|" + strconv.FormatBool(succeeded)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitionCount[key]++
}

// RecordSnapshotLoad counts full aggregation passes.
func (m *Metrics) RecordSnapshotLoad(succeeded bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if succeeded {
		m.snapshotLoads++
	} else {
		m.snapshotErrors++
	}
}

// SnapshotLoads returns successful and failed load counts.
func (m *Metrics) SnapshotLoads() (int64, int64) {
	if m == nil {
		return 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLoads, m.snapshotErrors
}
