package classifier

import (
	"testing"

	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	"github.com/stretchr/testify/assert"
)

func TestNewResultExtraction(t *testing.T) {
	cases := []struct {
		name  string
		raw   map[string]any
		label string
		conf  float64
	}{
		{"flat", map[string]any{"label": "healthy", "confidence": 0.8}, "healthy", 0.8},
		{"percent string", map[string]any{"disease": "rose_rust", "score": "87.5%"}, "rose_rust", 0.875},
		{"nested object", map[string]any{"result": map[string]any{"class": "rose_sawfly_slug", "probability": 0.66}}, "rose_sawfly_slug", 0.66},
		{"predictions array", map[string]any{"predictions": []any{map[string]any{"label": "healthy", "score": 93.0}}}, "healthy", 0.93},
		{"top level confidence wins", map[string]any{"confidence": 0.5, "prediction": map[string]any{"label": "rose_rust", "confidence": 0.9}}, "rose_rust", 0.5},
		{"unknown shape", map[string]any{"status": "ok"}, "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := newResult(domainClassifier.ProviderHTTP, tc.raw)
			assert.Equal(t, tc.label, res.Label)
			assert.InDelta(t, tc.conf, res.Confidence, 1e-9)
			assert.Equal(t, tc.raw, res.Raw)
		})
	}
}
