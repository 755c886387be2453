package observability

import (
	"path"
	"strconv"
	"strings"
	"sync"
	"time"
)

// UnmatchedRoute labels requests whose path is not a tracked route.
const UnmatchedRoute = "unmatched"

// Metrics provides basic in-memory counters. Paths are labelled by the tracked route
// they belong to so arbitrary URLs cannot grow the maps.
type Metrics struct {
	mu            sync.Mutex
	routes        map[string]string
	requestCount  map[string]int64
	errorCount    map[string]int64
	totalDuration map[string]time.Duration
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Requests map[string]int64
	Errors   map[string]int64
	Latency  map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		errorCount:    make(map[string]int64),
		totalDuration: make(map[string]time.Duration),
		routes:        make(map[string]string),
	}
}

// TrackRoutes registers the route templates that get their own counters.
func (m *Metrics) TrackRoutes(routes ...string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range routes {
		m.routes[normalizeRoute(r)] = r
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(requestPath, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pathKey(m.label(requestPath), method, strconv.Itoa(status))
	m.requestCount[key]++
	m.totalDuration[key] += duration
}

// RecordError increments error counters keyed by error code.
func (m *Metrics) RecordError(requestPath, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[pathKey(m.label(requestPath), method, code)]++
}

// Snapshot copies the current counters. Latency holds the mean per key.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Requests: map[string]int64{},
		Errors:   map[string]int64{},
		Latency:  map[string]time.Duration{},
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		snap.Requests[k] = v
		snap.Latency[k] = m.totalDuration[k] / time.Duration(v)
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	return snap
}

// label must be called with mu held.
func (m *Metrics) label(requestPath string) string {
	if route, ok := m.routes[normalizeRoute(requestPath)]; ok {
		return route
	}
	return UnmatchedRoute
}

func normalizeRoute(p string) string {
	return strings.ToLower(path.Clean("/" + p))
}

func pathKey(route, method, suffix string) string {
	return route + "|" + method + "|" + suffix
}
