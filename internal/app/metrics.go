package app

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/runebridge/internal/bridge"
)

// Metrics counts boundary traffic and engine connections. It sits in front
// of the journal as the bridge's Recorder.
type Metrics struct {
	mu   sync.RWMutex
	next bridge.Recorder

	inbound  atomic.Uint64
	outbound atomic.Uint64
	attaches atomic.Uint64
	detaches atomic.Uint64
	panics   atomic.Uint64

	lastCall atomic.Int64

	startTime time.Time
}

var _ bridge.Recorder = (*Metrics)(nil)

// NewMetrics creates a metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// SetNext sets the recorder calls are forwarded to.
func (m *Metrics) SetNext(r bridge.Recorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next = r
}

// Record counts a boundary call and forwards it.
func (m *Metrics) Record(dir bridge.Direction, name string, args []byte) {
	if dir == bridge.Outbound {
		m.outbound.Add(1)
	} else {
		m.inbound.Add(1)
	}
	m.lastCall.Store(time.Now().UnixNano())

	m.mu.RLock()
	next := m.next
	m.mu.RUnlock()
	if next != nil {
		next.Record(dir, name, args)
	}
}

// RecordAttach counts an engine connection.
func (m *Metrics) RecordAttach() {
	m.attaches.Add(1)
}

// RecordDetach counts an engine disconnection.
func (m *Metrics) RecordDetach() {
	m.detaches.Add(1)
}

// RecordPanic counts a recovered loop task panic.
func (m *Metrics) RecordPanic() {
	m.panics.Add(1)
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Inbound  uint64    `json:"inbound"`
	Outbound uint64    `json:"outbound"`
	Attaches uint64    `json:"attaches"`
	Detaches uint64    `json:"detaches"`
	Panics   uint64    `json:"panics"`
	LastCall time.Time `json:"last_call,omitempty"`
	Uptime   string    `json:"uptime"`
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Inbound:  m.inbound.Load(),
		Outbound: m.outbound.Load(),
		Attaches: m.attaches.Load(),
		Detaches: m.detaches.Load(),
		Panics:   m.panics.Load(),
		Uptime:   time.Since(m.startTime).Round(time.Second).String(),
	}
	if ns := m.lastCall.Load(); ns != 0 {
		s.LastCall = time.Unix(0, ns)
	}
	return s
}

// ServeHTTP writes the snapshot as JSON.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m.Snapshot())
}
