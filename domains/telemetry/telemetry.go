package telemetry

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Placeholder is rendered for any field the Arduino did not report.
const Placeholder = "N/A"

// Record is one window of sensor output. Values keep the exact text that was
// parsed from the serial line; an empty string means the field was not seen.
type Record struct {
	Temperature  string    `json:"temperature,omitempty"`
	Humidity     string    `json:"humidity,omitempty"`
	SoilMoisture string    `json:"soil_moisture,omitempty"`
	LightLevel   string    `json:"light_level,omitempty"`
	Pump         string    `json:"pump,omitempty"`
	Lights       string    `json:"lights,omitempty"`
	ReadAt       time.Time `json:"read_at"`
}

// Display returns v or the placeholder when v is empty.
func Display(v string) string {
	if v == "" {
		return Placeholder
	}
	return v
}

// IsEmpty reports whether no field at all was parsed.
func (r Record) IsEmpty() bool {
	return r.Temperature == "" && r.Humidity == "" && r.SoilMoisture == "" &&
		r.LightLevel == "" && r.Pump == "" && r.Lights == ""
}

// ITelemetryPublisher forwards records to an external sink (MQTT).
type ITelemetryPublisher interface {
	Publish(ctx context.Context, record Record) error
	Close()
}

const (
	SoilDryThreshold = 500

	ColdBelow = 15.0
	HotAbove  = 30.0

	HumidityLowBelow  = 40.0
	HumidityHighAbove = 70.0
)

type SoilLevel string

const (
	SoilDry     SoilLevel = "dry"
	SoilWet     SoilLevel = "wet"
	SoilUnknown SoilLevel = "unknown"
)

type TemperatureLevel string

const (
	TemperatureCold    TemperatureLevel = "Cold"
	TemperatureNormal  TemperatureLevel = "Normal"
	TemperatureHot     TemperatureLevel = "Hot"
	TemperatureUnknown TemperatureLevel = "Unknown"
)

type HumidityLevel string

const (
	HumidityLow     HumidityLevel = "Low"
	HumidityNormal  HumidityLevel = "Normal"
	HumidityHigh    HumidityLevel = "High"
	HumidityUnknown HumidityLevel = "Unknown"
)

// ClassifySoil treats the reading as an integer ADC value; larger is drier.
func ClassifySoil(soil string) SoilLevel {
	n, err := strconv.Atoi(strings.TrimSpace(soil))
	if err != nil {
		return SoilUnknown
	}
	if n > SoilDryThreshold {
		return SoilDry
	}
	return SoilWet
}

// ClassifyTemperature expects degrees Celsius. 15 and 30 are Normal.
func ClassifyTemperature(temp string) TemperatureLevel {
	t, err := strconv.ParseFloat(strings.TrimSpace(temp), 64)
	if err != nil {
		return TemperatureUnknown
	}
	switch {
	case t < ColdBelow:
		return TemperatureCold
	case t > HotAbove:
		return TemperatureHot
	default:
		return TemperatureNormal
	}
}

// ClassifyHumidity expects relative humidity in percent. 40 and 70 are Normal.
func ClassifyHumidity(humidity string) HumidityLevel {
	h, err := strconv.ParseFloat(strings.TrimSpace(humidity), 64)
	if err != nil {
		return HumidityUnknown
	}
	switch {
	case h < HumidityLowBelow:
		return HumidityLow
	case h > HumidityHighAbove:
		return HumidityHigh
	default:
		return HumidityNormal
	}
}

// WateringAdvice is the one-line recommendation in the periodic update.
func WateringAdvice(soil string) string {
	switch ClassifySoil(soil) {
	case SoilDry:
		return "Soil is dry. Please water the plant."
	case SoilWet:
		return "Soil is wet. No watering needed."
	default:
		return "Soil moisture data unavailable."
	}
}
