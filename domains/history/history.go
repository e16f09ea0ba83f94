package history

import (
	"context"
	"time"
)

// Reading is one completed monitoring cycle as persisted.
type Reading struct {
	ID           string    `json:"id"`
	Temperature  string    `json:"temperature"`
	Humidity     string    `json:"humidity"`
	SoilMoisture string    `json:"soil_moisture"`
	LightLevel   string    `json:"light_level"`
	Pump         string    `json:"pump"`
	Lights       string    `json:"lights"`
	ImagePath    string    `json:"image_path"`
	Label        string    `json:"label,omitempty"`
	Confidence   float64   `json:"confidence,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type IHistoryRepository interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, reading Reading) error
	// Recent lists readings newest first.
	Recent(ctx context.Context, limit int) ([]Reading, error)
}
