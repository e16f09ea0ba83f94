package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"time"

	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	"github.com/sirupsen/logrus"
)

const defaultHTTPTimeout = 10 * time.Second

// httpClient is package level so tests can swap the transport.
var httpClient = &http.Client{}

// HTTPClassifier uploads the capture to a remote model server as multipart
// field "file" and reads back a JSON object of unspecified shape.
type HTTPClassifier struct {
	url          string
	timeout      time.Duration
	resizeTo     int
	modelName    string
	modelVersion string
}

func NewHTTPClassifier(url string, timeout time.Duration, resizeTo int, modelName, modelVersion string) *HTTPClassifier {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPClassifier{
		url:          url,
		timeout:      timeout,
		resizeTo:     resizeTo,
		modelName:    modelName,
		modelVersion: modelVersion,
	}
}

func (c *HTTPClassifier) Provider() domainClassifier.Provider {
	return domainClassifier.ProviderHTTP
}

func (c *HTTPClassifier) Classify(ctx context.Context, imagePath string) (*domainClassifier.Result, error) {
	data, mimeType, err := loadImage(imagePath, c.resizeTo)
	if err != nil {
		return nil, err
	}

	body, contentType, err := c.buildForm(filepath.Base(imagePath), mimeType, data)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("classifier: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier: post %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("classifier: status %d: %s", resp.StatusCode, string(respBody))
	}

	var raw any
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("classifier: decode response: %w", err)
	}

	res := newResult(domainClassifier.ProviderHTTP, raw)
	logrus.WithFields(logrus.Fields{
		"label":      res.Label,
		"confidence": res.Confidence,
		"elapsed":    time.Since(start).Round(time.Millisecond).String(),
	}).Info("[CLASSIFIER] http result")
	return res, nil
}

func (c *HTTPClassifier) buildForm(fileName, mimeType string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("classifier: create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("classifier: write file part: %w", err)
	}

	if c.modelName != "" {
		if err := w.WriteField("model", c.modelName); err != nil {
			return nil, "", fmt.Errorf("classifier: write model field: %w", err)
		}
	}
	if c.modelVersion != "" {
		if err := w.WriteField("model_version", c.modelVersion); err != nil {
			return nil, "", fmt.Errorf("classifier: write model_version field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("classifier: close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
