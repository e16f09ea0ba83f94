package camera

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgError "github.com/AzielCF/az-plant/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRun(t *testing.T, fn func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	t.Helper()
	orig := runCommand
	runCommand = fn
	t.Cleanup(func() { runCommand = orig })
}

func TestCaptureNamesFileByTimestamp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	var gotName string
	var gotArgs []string
	stubRun(t, func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, os.WriteFile(args[len(args)-1], []byte("jpeg"), 0o644)
	})

	c, err := NewCapturer(dir, "rpicam-still -n -t 1 -o {output}")
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2025, 3, 9, 7, 5, 2, 0, time.UTC) }

	img, err := c.Capture(context.Background())
	require.NoError(t, err)

	want := filepath.Join(dir, "plant_20250309_070502.jpg")
	assert.Equal(t, want, img.Path)
	assert.Equal(t, "rpicam-still", gotName)
	assert.Equal(t, []string{"-n", "-t", "1", "-o", want}, gotArgs)
	assert.FileExists(t, want)
}

func TestCaptureCommandFailureIsDeviceError(t *testing.T) {
	stubRun(t, func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("ERROR: no cameras available"), errors.New("exit status 255")
	})

	c, err := NewCapturer(t.TempDir(), "rpicam-still -o {output}")
	require.NoError(t, err)

	_, err = c.Capture(context.Background())
	require.Error(t, err)
	var devErr pkgError.DeviceError
	assert.ErrorAs(t, err, &devErr)
	assert.Contains(t, err.Error(), "no cameras available")
}

func TestCaptureMissingOutputFile(t *testing.T) {
	stubRun(t, func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	})

	c, err := NewCapturer(t.TempDir(), "fswebcam --no-banner {output}")
	require.NoError(t, err)

	_, err = c.Capture(context.Background())
	assert.ErrorContains(t, err, "no image written")
}

func TestNewCapturerRejectsBadCommand(t *testing.T) {
	_, err := NewCapturer(t.TempDir(), "  ")
	assert.Error(t, err)

	_, err = NewCapturer(t.TempDir(), "rpicam-still -o /tmp/x.jpg")
	assert.ErrorContains(t, err, "{output}")
}
