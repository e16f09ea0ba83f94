package botmonitor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorCountsByStage(t *testing.T) {
	m := New(10, 0)

	m.Record(Event{Stage: StageInbound, Command: "status", Status: StatusOK})
	m.Record(Event{Stage: StageCommand, Command: "status", Status: StatusOK})
	m.Record(Event{Stage: StageOutbound, Kind: "text", Status: StatusOK})
	m.Record(Event{Stage: StageOutbound, Kind: "photo", Status: StatusError, Error: "chat not found"})
	m.Record(Event{Stage: StageCycle, Kind: "cycle", Status: StatusOK})

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats.TotalInbound)
	assert.Equal(t, int64(1), stats.TotalCommands)
	assert.Equal(t, int64(1), stats.TotalOutbound)
	assert.Equal(t, int64(1), stats.TotalCycles)
	assert.Equal(t, int64(1), stats.TotalErrors)
	assert.Len(t, stats.RecentEvents, 5)
}

func TestMonitorRingKeepsNewestInOrder(t *testing.T) {
	m := New(3, 0)
	for i := 0; i < 5; i++ {
		m.Record(Event{Stage: StageInbound, Command: fmt.Sprintf("c%d", i), Status: StatusOK})
	}

	events := m.GetStats().RecentEvents
	require.Len(t, events, 3)
	assert.Equal(t, "c2", events[0].Command)
	assert.Equal(t, "c4", events[2].Command)
}

func TestMonitorTTLHidesOldEvents(t *testing.T) {
	m := New(5, time.Minute)
	m.Record(Event{Stage: StageInbound, Command: "old", Status: StatusOK, Timestamp: time.Now().UTC().Add(-time.Hour)})
	m.Record(Event{Stage: StageInbound, Command: "new", Status: StatusOK})

	events := m.GetStats().RecentEvents
	require.Len(t, events, 1)
	assert.Equal(t, "new", events[0].Command)
}

func TestOnIncrementHook(t *testing.T) {
	var keys []string
	OnIncrement = func(key string) { keys = append(keys, key) }
	defer func() { OnIncrement = nil }()

	New(2, 0).Record(Event{Stage: StageOutbound, Status: StatusError})
	assert.Equal(t, []string{"outbound:error"}, keys)
}
