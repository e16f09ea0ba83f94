package plant

import (
	"context"
	"time"

	"github.com/AzielCF/az-plant/domains/telemetry"
)

type Switch string

const (
	SwitchOn  Switch = "ON"
	SwitchOff Switch = "OFF"
)

// Toggle returns the opposite state. Anything that is not ON counts as OFF.
func (s Switch) Toggle() Switch {
	if s == SwitchOn {
		return SwitchOff
	}
	return SwitchOn
}

// State is the runtime view shared by the monitor loop and the command bot.
// The monitor writes Snapshot; commands write Pump and UVLight.
type State struct {
	Snapshot  telemetry.Record `json:"snapshot"`
	Pump      Switch           `json:"pump"`
	UVLight   Switch           `json:"uv_light"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// IStateStore must be safe for concurrent use.
type IStateStore interface {
	Get(ctx context.Context) (State, error)
	SetSnapshot(ctx context.Context, record telemetry.Record) error
	SetPump(ctx context.Context, pump Switch) error
	// ToggleUV flips the UV flag atomically and returns the new value.
	ToggleUV(ctx context.Context) (Switch, error)
}

// NewState is the initial state: both switches OFF, no snapshot.
func NewState() State {
	return State{Pump: SwitchOff, UVLight: SwitchOff}
}
