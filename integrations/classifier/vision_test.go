package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/AzielCF/az-plant/core/config"
	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisionAnswer(t *testing.T) {
	res, err := parseVisionAnswer(domainClassifier.ProviderGemini, "```json\n{\"label\":\"Rose_Rust\",\"confidence\":0.72}\n```")
	require.NoError(t, err)
	assert.Equal(t, "rose_rust", res.Label)
	assert.Equal(t, 0.72, res.Confidence)

	_, err = parseVisionAnswer(domainClassifier.ProviderOpenAI, `{"label":"black_spot","confidence":0.9}`)
	assert.ErrorContains(t, err, "unknown label")

	_, err = parseVisionAnswer(domainClassifier.ProviderOpenAI, `label: healthy`)
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestGeminiClassifierUsesGenerator(t *testing.T) {
	path := writeTestJPEG(t, 300, 300)
	orig := geminiGenerate
	defer func() { geminiGenerate = orig }()

	var gotModel, gotMime string
	var gotLen int
	geminiGenerate = func(ctx context.Context, apiKey, model string, image []byte, mimeType string) (string, error) {
		gotModel, gotMime, gotLen = model, mimeType, len(image)
		return `{"label":"healthy","confidence":0.97}`, nil
	}

	res, err := NewGeminiClassifier("key", "", 224).Classify(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, gotModel)
	assert.Equal(t, "image/jpeg", gotMime)
	assert.Greater(t, gotLen, 0)
	assert.Equal(t, domainClassifier.ProviderGemini, res.Provider)
	assert.Equal(t, "healthy", res.Label)
}

func TestOpenAIClassifierErrors(t *testing.T) {
	path := writeTestJPEG(t, 64, 64)
	_, err := NewOpenAIClassifier("", "", 0).Classify(context.Background(), path)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	orig := openaiComplete
	defer func() { openaiComplete = orig }()
	openaiComplete = func(ctx context.Context, apiKey, model string, image []byte, mimeType string) (string, error) {
		return "", errors.New("429 rate limited")
	}
	_, err = NewOpenAIClassifier("key", "gpt-4o", 0).Classify(context.Background(), path)
	assert.ErrorContains(t, err, "rate limited")
}

func TestFactory(t *testing.T) {
	c, err := New(config.ClassifierConfig{}, config.APIKeysConfig{})
	require.NoError(t, err)
	assert.Nil(t, c, "no provider disables classification")

	c, err = New(config.ClassifierConfig{Provider: "http"}, config.APIKeysConfig{})
	require.NoError(t, err)
	assert.Nil(t, c, "http without URL disables classification")

	c, err = New(config.ClassifierConfig{Provider: "http", URL: "http://cnn.local/upload"}, config.APIKeysConfig{})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, domainClassifier.ProviderHTTP, c.Provider())

	c, err = New(config.ClassifierConfig{Provider: "gemini"}, config.APIKeysConfig{Gemini: "k"})
	require.NoError(t, err)
	assert.Equal(t, domainClassifier.ProviderGemini, c.Provider())

	_, err = New(config.ClassifierConfig{Provider: "yolo"}, config.APIKeysConfig{})
	assert.Error(t, err)
}
