package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AzielCF/az-plant/domains/plant"
	"github.com/AzielCF/az-plant/domains/telemetry"
)

// MemoryStateStore keeps plant.State in process memory.
type MemoryStateStore struct {
	mu    sync.RWMutex
	state plant.State
	now   func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{state: plant.NewState(), now: time.Now}
}

func (m *MemoryStateStore) Get(ctx context.Context) (plant.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, nil
}

func (m *MemoryStateStore) SetSnapshot(ctx context.Context, record telemetry.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Snapshot = record
	m.state.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStateStore) SetPump(ctx context.Context, pump plant.Switch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Pump = pump
	m.state.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStateStore) ToggleUV(ctx context.Context) (plant.Switch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.UVLight = m.state.UVLight.Toggle()
	m.state.UpdatedAt = m.now()
	return m.state.UVLight, nil
}
