package classifier

import (
	"context"
	"encoding/base64"
	"fmt"

	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIClassifier asks an OpenAI vision model for one of the trained labels.
type OpenAIClassifier struct {
	apiKey   string
	model    string
	resizeTo int
}

func NewOpenAIClassifier(apiKey, model string, resizeTo int) *OpenAIClassifier {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClassifier{apiKey: apiKey, model: model, resizeTo: resizeTo}
}

func (c *OpenAIClassifier) Provider() domainClassifier.Provider {
	return domainClassifier.ProviderOpenAI
}

// openaiComplete returns the model's JSON answer. Tests replace it.
var openaiComplete = func(ctx context.Context, apiKey, model string, image []byte, mimeType string) (string, error) {
	client := openai.NewClient(option.WithAPIKey(apiKey))

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(visionPrompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label":      map[string]any{"type": "string", "enum": labelEnum()},
			"confidence": map[string]any{"type": "number"},
		},
		"required":             []string{"label", "confidence"},
		"additionalProperties": false,
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "leaf_classification",
					Schema: any(schema),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *OpenAIClassifier) Classify(ctx context.Context, imagePath string) (*domainClassifier.Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("classifier: openai requires OPENAI_API_KEY")
	}
	data, mimeType, err := loadImage(imagePath, c.resizeTo)
	if err != nil {
		return nil, err
	}

	text, err := openaiComplete(ctx, c.apiKey, c.model, data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("classifier: openai %s: %w", c.model, err)
	}
	res, err := parseVisionAnswer(domainClassifier.ProviderOpenAI, text)
	if err != nil {
		return nil, err
	}
	logrus.Infof("[CLASSIFIER] openai %s -> %s (%.2f)", c.model, res.Label, res.Confidence)
	return res, nil
}
