package metrics

import (
	"sort"
	"sync"
	"time"
)

const maxSamples = 1000

// Metrics is the in-process store behind the JSON snapshot endpoint.
type Metrics struct {
	mutex         sync.RWMutex
	requests      map[string]int64
	fallbacks     map[string]map[string]int64
	responseTimes map[string][]time.Duration
	statusCodes   map[string]map[int]int64
	selections    map[string]map[string]int64
	healthStatus  map[string]map[string]bool
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                     `json:"total_requests"`
	Uptime        time.Duration             `json:"uptime"`
	Algorithm     string                    `json:"algorithm"`
	Services      map[string]ServiceMetrics `json:"services"`
}

type ServiceMetrics struct {
	Requests    int64                     `json:"requests"`
	Fallbacks   map[string]int64          `json:"fallbacks,omitempty"`
	AvgResponse time.Duration             `json:"avg_response"`
	P50Response time.Duration             `json:"p50_response"`
	P95Response time.Duration             `json:"p95_response"`
	P99Response time.Duration             `json:"p99_response"`
	StatusCodes map[int]int64             `json:"status_codes,omitempty"`
	Backends    map[string]BackendMetrics `json:"backends"`
}

type BackendMetrics struct {
	Selections int64 `json:"selections"`
	Healthy    bool  `json:"healthy"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[string]int64),
		fallbacks:     make(map[string]map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		statusCodes:   make(map[string]map[int]int64),
		selections:    make(map[string]map[string]int64),
		healthStatus:  make(map[string]map[string]bool),
		startTime:     time.Now(),
	}
}

func (m *Metrics) IncrementRequests(service string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests[service]++
}

func (m *Metrics) RecordBackendSelection(service, backend string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.selections[service] == nil {
		m.selections[service] = make(map[string]int64)
	}
	m.selections[service][backend]++
}

// RecordResponse keeps the latest maxSamples durations per service.
func (m *Metrics) RecordResponse(service string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	samples := append(m.responseTimes[service], duration)
	if len(samples) > maxSamples {
		samples = samples[len(samples)-maxSamples:]
	}
	m.responseTimes[service] = samples

	if m.statusCodes[service] == nil {
		m.statusCodes[service] = make(map[int]int64)
	}
	m.statusCodes[service][statusCode]++
}

func (m *Metrics) RecordFallback(service, source string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.fallbacks[service] == nil {
		m.fallbacks[service] = make(map[string]int64)
	}
	m.fallbacks[service][source]++
}

func (m *Metrics) UpdateHealthStatus(service, backend string, healthy bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.healthStatus[service] == nil {
		m.healthStatus[service] = make(map[string]bool)
	}
	m.healthStatus[service][backend] = healthy
}

func (m *Metrics) Snapshot(algorithm string) Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:    time.Since(m.startTime),
		Algorithm: algorithm,
		Services:  make(map[string]ServiceMetrics),
	}

	for _, service := range m.serviceNames() {
		snap.TotalRequests += m.requests[service]

		sm := ServiceMetrics{
			Requests:    m.requests[service],
			Fallbacks:   copyCounts(m.fallbacks[service]),
			StatusCodes: copyStatus(m.statusCodes[service]),
			Backends:    make(map[string]BackendMetrics),
		}

		for backend, n := range m.selections[service] {
			bm := sm.Backends[backend]
			bm.Selections = n
			sm.Backends[backend] = bm
		}
		for backend, healthy := range m.healthStatus[service] {
			bm := sm.Backends[backend]
			bm.Healthy = healthy
			sm.Backends[backend] = bm
		}

		if durations := m.responseTimes[service]; len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

			sm.AvgResponse = average(sorted)
			sm.P50Response = percentile(sorted, 0.50)
			sm.P95Response = percentile(sorted, 0.95)
			sm.P99Response = percentile(sorted, 0.99)
		}

		snap.Services[service] = sm
	}

	return snap
}

func (m *Metrics) serviceNames() []string {
	all := make(map[string]struct{})
	for s := range m.requests {
		all[s] = struct{}{}
	}
	for s := range m.fallbacks {
		all[s] = struct{}{}
	}
	for s := range m.responseTimes {
		all[s] = struct{}{}
	}
	for s := range m.selections {
		all[s] = struct{}{}
	}
	for s := range m.healthStatus {
		all[s] = struct{}{}
	}

	names := make([]string, 0, len(all))
	for s := range all {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

func copyCounts(in map[string]int64) map[string]int64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyStatus(in map[int]int64) map[int]int64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[int]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
