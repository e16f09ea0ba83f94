package notifier

import (
	"context"

	"github.com/AzielCF/az-plant/domains/camera"
	"github.com/AzielCF/az-plant/domains/classifier"
	"github.com/AzielCF/az-plant/domains/telemetry"
)

type INotifier interface {
	// SendUpdate posts the formatted update followed by the image. Delivery
	// failures are logged, never returned.
	SendUpdate(ctx context.Context, record telemetry.Record, image camera.CapturedImage, result *classifier.Result)
	// SendReportBundle pushes every report artifact that exists on disk.
	SendReportBundle(ctx context.Context) int
}
