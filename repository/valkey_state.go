package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AzielCF/az-plant/domains/plant"
	"github.com/AzielCF/az-plant/domains/telemetry"
	"github.com/AzielCF/az-plant/infrastructure/valkey"
	valkeylib "github.com/valkey-io/valkey-go"
)

const (
	fieldSnapshot  = "snapshot"
	fieldPump      = "pump"
	fieldUVLight   = "uv_light"
	fieldUpdatedAt = "updated_at"
)

var toggleUVScript = valkeylib.NewLuaScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
local nxt = 'ON'
if cur == 'ON' then nxt = 'OFF' end
redis.call('HSET', KEYS[1], ARGV[1], nxt, ARGV[2], ARGV[3])
return nxt
`)

// ValkeyStateStore keeps plant.State in a single Valkey hash so the monitor
// and the bot can run as separate processes.
type ValkeyStateStore struct {
	client *valkey.Client
	key    string
	now    func() time.Time
}

func NewValkeyStateStore(client *valkey.Client) *ValkeyStateStore {
	return &ValkeyStateStore{
		client: client,
		key:    client.Key("state"),
		now:    time.Now,
	}
}

func (s *ValkeyStateStore) Get(ctx context.Context) (plant.State, error) {
	fields, err := s.client.GetHash(ctx, s.key)
	if err != nil {
		return plant.State{}, fmt.Errorf("failed to get state from valkey: %w", err)
	}

	return decodeState(fields)
}

// decodeState builds a State from the stored hash. Times are stored in UTC and
// returned in local time.
func decodeState(fields map[string]string) (plant.State, error) {
	state := plant.NewState()
	if raw := fields[fieldSnapshot]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &state.Snapshot); err != nil {
			return plant.State{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		if !state.Snapshot.ReadAt.IsZero() {
			state.Snapshot.ReadAt = state.Snapshot.ReadAt.Local()
		}
	}
	if v := fields[fieldPump]; v == string(plant.SwitchOn) {
		state.Pump = plant.SwitchOn
	}
	if v := fields[fieldUVLight]; v == string(plant.SwitchOn) {
		state.UVLight = plant.SwitchOn
	}
	if v := fields[fieldUpdatedAt]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			state.UpdatedAt = t.Local()
		}
	}
	return state, nil
}

func (s *ValkeyStateStore) SetSnapshot(ctx context.Context, record telemetry.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return s.set(ctx, fieldSnapshot, string(data))
}

func (s *ValkeyStateStore) SetPump(ctx context.Context, pump plant.Switch) error {
	return s.set(ctx, fieldPump, string(pump))
}

func (s *ValkeyStateStore) ToggleUV(ctx context.Context) (plant.Switch, error) {
	res, err := toggleUVScript.Exec(ctx, s.client.Inner(),
		[]string{s.key},
		[]string{fieldUVLight, fieldUpdatedAt, s.stamp()},
	).ToString()
	if err != nil {
		return "", fmt.Errorf("failed to toggle uv in valkey: %w", err)
	}
	return plant.Switch(res), nil
}

func (s *ValkeyStateStore) set(ctx context.Context, field, value string) error {
	err := s.client.SetHash(ctx, s.key, map[string]string{
		field:          value,
		fieldUpdatedAt: s.stamp(),
	})
	if err != nil {
		return fmt.Errorf("failed to save %s to valkey: %w", field, err)
	}
	return nil
}

func (s *ValkeyStateStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
