package classifier

import (
	"context"
	"fmt"

	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash-lite"

// GeminiClassifier asks a Gemini vision model for one of the trained labels.
type GeminiClassifier struct {
	apiKey   string
	model    string
	resizeTo int
}

func NewGeminiClassifier(apiKey, model string, resizeTo int) *GeminiClassifier {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClassifier{apiKey: apiKey, model: model, resizeTo: resizeTo}
}

func (c *GeminiClassifier) Provider() domainClassifier.Provider {
	return domainClassifier.ProviderGemini
}

// geminiGenerate returns the model's text answer. Tests replace it.
var geminiGenerate = func(ctx context.Context, apiKey, model string, image []byte, mimeType string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: visionPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseJsonSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"label": {
					Type:        "string",
					Enum:        labelEnum(),
					Description: "Predicted leaf condition.",
				},
				"confidence": {
					Type:        "number",
					Description: "Confidence between 0 and 1.",
				},
			},
			Required: []string{"label", "confidence"},
		},
	}

	result, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

func (c *GeminiClassifier) Classify(ctx context.Context, imagePath string) (*domainClassifier.Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("classifier: gemini requires GEMINI_API_KEY")
	}
	data, mimeType, err := loadImage(imagePath, c.resizeTo)
	if err != nil {
		return nil, err
	}

	text, err := geminiGenerate(ctx, c.apiKey, c.model, data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("classifier: gemini %s: %w", c.model, err)
	}
	res, err := parseVisionAnswer(domainClassifier.ProviderGemini, text)
	if err != nil {
		return nil, err
	}
	logrus.Infof("[CLASSIFIER] gemini %s -> %s (%.2f)", c.model, res.Label, res.Confidence)
	return res, nil
}
