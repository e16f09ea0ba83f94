package camera

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	domainCamera "github.com/AzielCF/az-plant/domains/camera"
	pkgError "github.com/AzielCF/az-plant/pkg/error"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

const outputPlaceholder = "{output}"

// runCommand executes the still-capture program. Tests replace it.
var runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Capturer takes one still per call through an external program such as
// rpicam-still or fswebcam.
type Capturer struct {
	dir     string
	command []string
	now     func() time.Time
}

// NewCapturer splits commandLine on whitespace; every "{output}" argument is
// replaced by the target path.
func NewCapturer(dir, commandLine string) (*Capturer, error) {
	parts := strings.Fields(commandLine)
	if len(parts) == 0 {
		return nil, fmt.Errorf("camera: empty capture command")
	}
	if !strings.Contains(commandLine, outputPlaceholder) {
		return nil, fmt.Errorf("camera: capture command must contain %s", outputPlaceholder)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("camera: create image folder: %w", err)
	}
	return &Capturer{dir: dir, command: parts, now: time.Now}, nil
}

func (c *Capturer) Capture(ctx context.Context) (domainCamera.CapturedImage, error) {
	at := c.now()
	path := filepath.Join(c.dir, "plant_"+at.Format(domainCamera.FileTimeLayout)+".jpg")

	args := make([]string, 0, len(c.command)-1)
	for _, a := range c.command[1:] {
		args = append(args, strings.ReplaceAll(a, outputPlaceholder, path))
	}

	start := time.Now()
	out, err := runCommand(ctx, c.command[0], args...)
	if err != nil {
		return domainCamera.CapturedImage{}, pkgError.DeviceError(fmt.Sprintf("camera: %s failed: %v: %s",
			c.command[0], err, strings.TrimSpace(string(out))))
	}

	info, err := os.Stat(path)
	if err != nil {
		return domainCamera.CapturedImage{}, pkgError.DeviceError(fmt.Sprintf("camera: no image written to %s", path))
	}

	logrus.Infof("[CAMERA] captured %s (%s) in %s", filepath.Base(path), humanize.Bytes(uint64(info.Size())), time.Since(start).Round(time.Millisecond))
	return domainCamera.CapturedImage{Path: path, CapturedAt: at}, nil
}
