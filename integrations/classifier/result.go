package classifier

import (
	"strconv"
	"strings"

	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
)

var (
	labelKeys      = []string{"label", "class", "prediction", "predicted_class", "disease"}
	confidenceKeys = []string{"confidence", "score", "probability", "prob"}
	nestedKeys     = []string{"result", "prediction", "predictions", "data"}
)

// newResult wraps an arbitrary JSON body (object or array) and pulls label and
// confidence out of the usual places. Confidence is normalized to [0,1]; values above 1 are read
// as percentages.
func newResult(provider domainClassifier.Provider, raw any) *domainClassifier.Result {
	res := &domainClassifier.Result{Provider: provider, Raw: raw}
	res.Label, res.Confidence = extract(asMap(raw), 0)
	return res
}

func extract(m map[string]any, depth int) (string, float64) {
	if m == nil || depth > 2 {
		return "", 0
	}

	var label string
	for _, k := range labelKeys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			label = strings.TrimSpace(s)
			break
		}
	}
	conf, _ := firstNumber(m, confidenceKeys)

	if label == "" {
		for _, k := range nestedKeys {
			if l, c := extract(asMap(m[k]), depth+1); l != "" {
				label = l
				if conf == 0 {
					conf = c
				}
				break
			}
		}
	}

	if conf > 1 && conf <= 100 {
		conf /= 100
	}
	return label, conf
}

// asMap accepts an object or the first element of an array of objects.
func asMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		if len(t) > 0 {
			m, _ := t[0].(map[string]any)
			return m
		}
	}
	return nil
}

func firstNumber(m map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "%"), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
