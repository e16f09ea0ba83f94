package botmonitor

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// OnIncrement is an optional hook for forwarding counters to an external collector.
var OnIncrement func(key string)

const (
	StageInbound  = "inbound"  // command received from a chat
	StageCommand  = "command"  // handler finished
	StageOutbound = "outbound" // message delivered to the chat
	StageCycle    = "cycle"    // monitoring cycle finished

	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	ChatID     string            `json:"chat_id,omitempty"`
	Command    string            `json:"command,omitempty"`
	Stage      string            `json:"stage"`
	Kind       string            `json:"kind"`   // text | photo | document | cycle
	Status     string            `json:"status"` // ok | error | skipped
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	DurationMs int64             `json:"duration_ms,omitempty"`
}

type Stats struct {
	TotalInbound  int64   `json:"total_inbound"`
	TotalCommands int64   `json:"total_commands"`
	TotalOutbound int64   `json:"total_outbound"`
	TotalCycles   int64   `json:"total_cycles"`
	TotalErrors   int64   `json:"total_errors"`
	RecentEvents  []Event `json:"recent_events"`
}

// Monitor keeps counters plus a fixed-size ring of the most recent events.
type Monitor struct {
	eventsMu sync.Mutex
	events   []Event
	idx      int
	count    int
	ttl      time.Duration

	totalInbound  int64
	totalCommands int64
	totalOutbound int64
	totalCycles   int64
	totalErrors   int64
}

func New(size int, ttl time.Duration) *Monitor {
	if size <= 0 {
		size = 200
	}
	return &Monitor{events: make([]Event, size), ttl: ttl}
}

func (m *Monitor) Record(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	switch e.Stage {
	case StageInbound:
		atomic.AddInt64(&m.totalInbound, 1)
	case StageCommand:
		if e.Status == StatusOK {
			atomic.AddInt64(&m.totalCommands, 1)
		}
	case StageOutbound:
		if e.Status == StatusOK {
			atomic.AddInt64(&m.totalOutbound, 1)
		}
	case StageCycle:
		if e.Status == StatusOK {
			atomic.AddInt64(&m.totalCycles, 1)
		}
	}
	if e.Status == StatusError {
		atomic.AddInt64(&m.totalErrors, 1)
	}
	if OnIncrement != nil {
		OnIncrement(e.Stage + ":" + e.Status)
	}

	m.eventsMu.Lock()
	m.events[m.idx] = e
	m.idx = (m.idx + 1) % len(m.events)
	if m.count < len(m.events) {
		m.count++
	}
	m.eventsMu.Unlock()
}

// GetStats returns the counters and the retained events, oldest first.
func (m *Monitor) GetStats() Stats {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()

	var cutoff time.Time
	if m.ttl > 0 {
		cutoff = time.Now().UTC().Add(-m.ttl)
	}

	res := make([]Event, 0, m.count)
	start := (m.idx - m.count + len(m.events)) % len(m.events)
	for i := 0; i < m.count; i++ {
		e := m.events[(start+i)%len(m.events)]
		if !cutoff.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		res = append(res, e)
	}

	return Stats{
		TotalInbound:  atomic.LoadInt64(&m.totalInbound),
		TotalCommands: atomic.LoadInt64(&m.totalCommands),
		TotalOutbound: atomic.LoadInt64(&m.totalOutbound),
		TotalCycles:   atomic.LoadInt64(&m.totalCycles),
		TotalErrors:   atomic.LoadInt64(&m.totalErrors),
		RecentEvents:  res,
	}
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	sec, err := strconv.Atoi(v)
	if err != nil || sec <= 0 {
		return def
	}
	return time.Duration(sec) * time.Second
}

var defaultMonitor = New(envInt("BOT_MONITOR_BUFFER", 200), envDuration("BOT_MONITOR_TTL", 0))

func Record(e Event) {
	defaultMonitor.Record(e)
}

func GetStats() Stats {
	return defaultMonitor.GetStats()
}
