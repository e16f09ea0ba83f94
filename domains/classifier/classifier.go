package classifier

import "context"

type Provider string

const (
	ProviderHTTP   Provider = "http"
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Labels the leaf classifier was trained on.
var Labels = []string{"healthy", "rose_rust", "rose_sawfly_slug"}

// Result is the classifier output. Raw keeps the whole response body; Label and
// Confidence are extracted on a best-effort basis and may be zero.
type Result struct {
	Label      string   `json:"label,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Raw        any      `json:"raw,omitempty"`
	Provider   Provider `json:"provider"`
}

type IClassifier interface {
	Classify(ctx context.Context, imagePath string) (*Result, error)
	Provider() Provider
}
