package camera

import (
	"context"
	"time"
)

// FileTimeLayout names captures plant_YYYYMMDD_HHMMSS.jpg.
const FileTimeLayout = "20060102_150405"

type CapturedImage struct {
	Path       string    `json:"path"`
	CapturedAt time.Time `json:"captured_at"`
}

type ICapturer interface {
	Capture(ctx context.Context) (CapturedImage, error)
}
