package serial

import (
	"strings"

	"github.com/AzielCF/az-plant/domains/telemetry"
)

const (
	prefixTemperature = "Temperature:"
	prefixHumidity    = "Humidity:"
	prefixSoil        = "Soil Moisture:"
	prefixLDR         = "LDR Value:"
)

// ParseLines turns raw Arduino output into a record. Unknown lines are ignored
// and a later line for the same field overwrites an earlier one.
func ParseLines(lines []string) telemetry.Record {
	var rec telemetry.Record
	for _, raw := range lines {
		line := strings.TrimSpace(strings.ToValidUTF8(raw, ""))
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, prefixTemperature):
			if v := firstToken(line[len(prefixTemperature):]); v != "" {
				rec.Temperature = v
			}
		case strings.HasPrefix(line, prefixHumidity):
			if v := firstToken(line[len(prefixHumidity):]); v != "" {
				rec.Humidity = v
			}
		case strings.HasPrefix(line, prefixSoil):
			rec.SoilMoisture = strings.TrimSpace(line[len(prefixSoil):])
		case strings.HasPrefix(line, prefixLDR):
			rec.LightLevel = strings.TrimSpace(line[len(prefixLDR):])
		case strings.Contains(line, "Pump ON"):
			rec.Pump = "ON"
		case strings.Contains(line, "Pump OFF"):
			rec.Pump = "OFF"
		case strings.Contains(line, "Lights ON"):
			rec.Lights = "ON"
		case strings.Contains(line, "Lights OFF"):
			rec.Lights = "OFF"
		}
	}
	return rec
}

// firstToken returns the first whitespace separated token ("24.5" from " 24.5 *C").
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
