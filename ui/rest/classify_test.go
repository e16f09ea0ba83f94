package rest

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	seenPath string
	existed  bool
	err      error
}

func (f *fakeClassifier) Classify(ctx context.Context, path string) (*domainClassifier.Result, error) {
	f.seenPath = path
	_, statErr := os.Stat(path)
	f.existed = statErr == nil
	if f.err != nil {
		return nil, f.err
	}
	return &domainClassifier.Result{Label: "rose_rust", Confidence: 0.8, Provider: domainClassifier.ProviderHTTP}, nil
}

func (f *fakeClassifier) Provider() domainClassifier.Provider { return domainClassifier.ProviderHTTP }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := imaging.New(8, 8, color.NRGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func multipartBody(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="leaf"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func newClassifyApp(t *testing.T, c domainClassifier.IClassifier) *fiber.App {
	app := fiber.New()
	InitRestClassify(app.Group("/api"), Classify{Classifier: c, UploadDir: t.TempDir()})
	return app
}

func TestClassify_PNG(t *testing.T) {
	fc := &fakeClassifier{}
	app := newClassifyApp(t, fc)

	body, ct := multipartBody(t, "image/png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/api/classify", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, fc.existed)
	_, statErr := os.Stat(fc.seenPath)
	assert.True(t, os.IsNotExist(statErr), "upload should be removed after classification")
}

func TestClassify_RejectsType(t *testing.T) {
	app := newClassifyApp(t, &fakeClassifier{})
	body, ct := multipartBody(t, "application/pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/api/classify", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClassify_UndecodableImage(t *testing.T) {
	app := newClassifyApp(t, &fakeClassifier{})
	body, ct := multipartBody(t, "image/webp", []byte("RIFFxxxxWEBPgarbage"))
	req := httptest.NewRequest(http.MethodPost, "/api/classify", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClassify_UpstreamError(t *testing.T) {
	app := newClassifyApp(t, &fakeClassifier{err: errors.New("connection refused")})
	body, ct := multipartBody(t, "image/png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/api/classify", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestClassify_Disabled(t *testing.T) {
	app := newClassifyApp(t, nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/classify", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
