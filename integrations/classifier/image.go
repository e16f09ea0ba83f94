package classifier

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// loadImage returns the file bytes and MIME type. With size > 0 the image is
// resized to size x size and re-encoded as JPEG, matching the classifier's
// training input.
func loadImage(path string, size int) ([]byte, string, error) {
	if size <= 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read image: %w", err)
		}
		return data, detectMIME(path, data), nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	img = imaging.Resize(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

func detectMIME(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	}
	return http.DetectContentType(data)
}
