package serial

import (
	"testing"

	"github.com/AzielCF/az-plant/domains/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestParseLinesFullBlock(t *testing.T) {
	lines := []string{
		"Temperature: 24.5 *C\r\n",
		"Humidity: 61.0 %\r\n",
		"Soil Moisture: 612\r\n",
		"LDR Value: 340\r\n",
		"Soil is dry -> Pump ON\r\n",
		"Lights OFF\r\n",
	}

	rec := ParseLines(lines)
	assert.Equal(t, telemetry.Record{
		Temperature:  "24.5",
		Humidity:     "61.0",
		SoilMoisture: "612",
		LightLevel:   "340",
		Pump:         "ON",
		Lights:       "OFF",
	}, rec)
}

func TestParseLinesLaterOverwritesEarlier(t *testing.T) {
	rec := ParseLines([]string{
		"Temperature: 20",
		"Pump ON",
		"Temperature: 21",
		"Pump OFF",
	})
	assert.Equal(t, "21", rec.Temperature)
	assert.Equal(t, "OFF", rec.Pump)
}

func TestParseLinesIgnoresNoiseAndPartialData(t *testing.T) {
	rec := ParseLines([]string{
		"",
		"   ",
		"booting sensors...",
		"DHT read failed",
		"Temperature:",
		"Humidity:   ",
		"\xff\xfeLDR Value: 88",
		"Soil Moisture:   701  ",
	})
	assert.Empty(t, rec.Temperature)
	assert.Empty(t, rec.Humidity)
	assert.Equal(t, "88", rec.LightLevel)
	assert.Equal(t, "701", rec.SoilMoisture)
	assert.Empty(t, rec.Pump)
}

func TestParseLinesPrefixWinsOverSwitchText(t *testing.T) {
	// a prefixed line is never read as a pump/lights line
	rec := ParseLines([]string{"LDR Value: 12 (Lights ON)"})
	assert.Equal(t, "12 (Lights ON)", rec.LightLevel)
	assert.Empty(t, rec.Lights)
}
