package reportwatch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesTriggerWrites(t *testing.T) {
	dir := t.TempDir()
	var fired int32
	w := New(dir, 150*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&fired, 1)
	}, "disease_report.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond) // let the watch register

	report := filepath.Join(dir, "disease_report.pdf")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(report, []byte("pdf chunk"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&fired) == 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired), "burst of writes must fire once")

	cancel()
	assert.NoError(t, <-errCh)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var fired int32
	w := New(dir, 50*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&fired, 1)
	}, "disease_report.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "detection_chart.png"), []byte("png"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}
