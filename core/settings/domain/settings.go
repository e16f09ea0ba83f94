package domain

import "context"

// Setting is a runtime override stored in the database.
type Setting struct {
	Key   string
	Value string
}

type ISettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error

	// InitSchema creates the necessary tables
	InitSchema(ctx context.Context) error
}

// Keys of the runtime-tunable settings. Values are whole seconds.
const (
	KeyMonitorIntervalSeconds = "monitor_interval_seconds"
	KeyWaterDurationSeconds   = "water_duration_seconds"
	KeyDetectDelaySeconds     = "detect_delay_seconds"
)
