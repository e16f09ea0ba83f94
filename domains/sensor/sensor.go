package sensor

import (
	"context"
	"time"

	"github.com/AzielCF/az-plant/domains/telemetry"
)

// IReader collects serial telemetry for a fixed window.
type IReader interface {
	Read(ctx context.Context, window time.Duration) (telemetry.Record, error)
	Close() error
}
