package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
)

var visionPrompt = fmt.Sprintf(`You are a plant pathology classifier for rose leaves.
Look at the photo and answer with exactly one label from: %s.
- healthy: green leaves without lesions.
- rose_rust: orange or rust coloured pustules, usually on the underside of leaves.
- rose_sawfly_slug: skeletonized or window-paned leaves, small green larvae.
Return JSON with "label" and "confidence" (0 to 1).`, strings.Join(domainClassifier.Labels, ", "))

type visionAnswer struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// parseVisionAnswer validates the model's JSON against the trained label set.
func parseVisionAnswer(provider domainClassifier.Provider, text string) (*domainClassifier.Result, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("classifier: %s returned invalid JSON: %w", provider, err)
	}
	var ans visionAnswer
	_ = json.Unmarshal([]byte(text), &ans)

	label := strings.ToLower(strings.TrimSpace(ans.Label))
	known := false
	for _, l := range domainClassifier.Labels {
		if l == label {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("classifier: %s returned unknown label %q", provider, ans.Label)
	}

	conf := ans.Confidence
	if conf > 1 && conf <= 100 {
		conf /= 100
	}
	return &domainClassifier.Result{Label: label, Confidence: conf, Raw: raw, Provider: provider}, nil
}

func labelEnum() []string {
	out := make([]string, len(domainClassifier.Labels))
	copy(out, domainClassifier.Labels)
	return out
}
