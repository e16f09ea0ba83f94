package classifier

import (
	"fmt"

	"github.com/AzielCF/az-plant/core/config"
	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	"github.com/AzielCF/az-plant/pkg/metrics"
)

// New builds the configured backend. It returns nil, nil when classification
// is disabled (no provider, or http without a URL).
func New(cfg config.ClassifierConfig, keys config.APIKeysConfig) (domainClassifier.IClassifier, error) {
	resizeTo := 0
	if cfg.Resize {
		resizeTo = cfg.InputSize
	}

	var c domainClassifier.IClassifier
	switch domainClassifier.Provider(cfg.Provider) {
	case "":
		return nil, nil
	case domainClassifier.ProviderHTTP:
		if cfg.URL == "" {
			return nil, nil
		}
		c = NewHTTPClassifier(cfg.URL, cfg.Timeout, resizeTo, cfg.ModelName, cfg.ModelVersion)
	case domainClassifier.ProviderGemini:
		c = NewGeminiClassifier(keys.Gemini, cfg.VisionModel, resizeTo)
	case domainClassifier.ProviderOpenAI:
		c = NewOpenAIClassifier(keys.OpenAI, cfg.VisionModel, resizeTo)
	default:
		return nil, fmt.Errorf("classifier: unknown provider %q", cfg.Provider)
	}
	return &instrumented{IClassifier: c, metrics: metrics.Default()}, nil
}
