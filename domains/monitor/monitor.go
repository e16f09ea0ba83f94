package monitor

import (
	"context"
	"time"

	"github.com/AzielCF/az-plant/domains/camera"
	"github.com/AzielCF/az-plant/domains/classifier"
	"github.com/AzielCF/az-plant/domains/telemetry"
)

type CycleResult struct {
	Record   telemetry.Record     `json:"record"`
	Image    camera.CapturedImage `json:"image"`
	Result   *classifier.Result   `json:"classification,omitempty"`
	Duration time.Duration        `json:"duration"`
}

type IMonitorUsecase interface {
	// RunCycle reads sensors, captures, classifies and notifies once.
	RunCycle(ctx context.Context) (CycleResult, error)
	// Run repeats RunCycle every interval until ctx is cancelled.
	Run(ctx context.Context) error
	// OnCycle registers a callback invoked after every successful cycle.
	OnCycle(fn func(CycleResult))
	SetInterval(d time.Duration)
	Interval() time.Duration
}
