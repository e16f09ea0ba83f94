package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTemperatureBoundaries(t *testing.T) {
	cases := map[string]TemperatureLevel{
		"12":      TemperatureCold,
		"14.99":   TemperatureCold,
		"15":      TemperatureNormal,
		"22.5":    TemperatureNormal,
		"30":      TemperatureNormal,
		"30.1":    TemperatureHot,
		"-4":      TemperatureCold,
		" 31 ":    TemperatureHot,
		"":        TemperatureUnknown,
		"N/A":     TemperatureUnknown,
		"25.0 °C": TemperatureUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ClassifyTemperature(in), "temperature %q", in)
	}
}

func TestClassifyHumidityBoundaries(t *testing.T) {
	cases := map[string]HumidityLevel{
		"39.9": HumidityLow,
		"40":   HumidityNormal,
		"55":   HumidityNormal,
		"70":   HumidityNormal,
		"70.5": HumidityHigh,
		"85":   HumidityHigh,
		"":     HumidityUnknown,
		"wet":  HumidityUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ClassifyHumidity(in), "humidity %q", in)
	}
}

func TestClassifySoil(t *testing.T) {
	cases := map[string]SoilLevel{
		"600":   SoilDry,
		"501":   SoilDry,
		"500":   SoilWet,
		"0":     SoilWet,
		"-12":   SoilWet,
		"":      SoilUnknown,
		"512.4": SoilUnknown,
		"dry":   SoilUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ClassifySoil(in), "soil %q", in)
	}
}

func TestWateringAdvice(t *testing.T) {
	assert.Equal(t, "Soil is dry. Please water the plant.", WateringAdvice("600"))
	assert.Equal(t, "Soil is wet. No watering needed.", WateringAdvice("500"))
	assert.Equal(t, "Soil moisture data unavailable.", WateringAdvice(""))
	assert.Equal(t, "Soil moisture data unavailable.", WateringAdvice("sensor error"))
}

func TestDisplayAndIsEmpty(t *testing.T) {
	assert.Equal(t, "N/A", Display(""))
	assert.Equal(t, "21", Display("21"))
	assert.True(t, Record{}.IsEmpty())
	assert.False(t, Record{Pump: "OFF"}.IsEmpty())
}
