package serial

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pkgError "github.com/AzielCF/az-plant/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort hands out chunks one Read at a time, then behaves like an idle
// line: it waits for the configured timeout and returns 0, nil.
type fakePort struct {
	mu       sync.Mutex
	chunks   []string
	timeout  time.Duration
	readErr  error
	closed   bool
	timeouts []time.Duration
}

func (f *fakePort) Read(p []byte) (int, error) {
	f.mu.Lock()
	if f.readErr != nil {
		err := f.readErr
		f.mu.Unlock()
		return 0, err
	}
	if len(f.chunks) > 0 {
		n := copy(p, f.chunks[0])
		f.chunks = f.chunks[1:]
		f.mu.Unlock()
		return n, nil
	}
	timeout := f.timeout
	f.mu.Unlock()
	time.Sleep(timeout)
	return 0, nil
}

func (f *fakePort) SetReadTimeout(t time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeout = t
	f.timeouts = append(f.timeouts, t)
	return nil
}

func (f *fakePort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func withFakePort(t *testing.T, port *fakePort) *int {
	t.Helper()
	opens := 0
	orig := openPort
	openPort = func(name string, baud int) (Port, error) {
		opens++
		return port, nil
	}
	t.Cleanup(func() { openPort = orig })
	return &opens
}

func TestReaderCollectsLinesAcrossChunks(t *testing.T) {
	port := &fakePort{chunks: []string{
		"Temperature: 12 C\r\nHumi",
		"dity: 85 %\r\nSoil Moisture: 600\r\n",
		"LDR Value: 300\r\nPump OFF\r\n",
		"Temperature: 1", // cut off by the window
	}}
	withFakePort(t, port)

	r := NewReader("/dev/ttyUSB0", 9600)
	rec, err := r.Read(context.Background(), 60*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, "12", rec.Temperature)
	assert.Equal(t, "85", rec.Humidity)
	assert.Equal(t, "600", rec.SoilMoisture)
	assert.Equal(t, "300", rec.LightLevel)
	assert.Equal(t, "OFF", rec.Pump)
	assert.False(t, rec.ReadAt.IsZero())
}

func TestReaderBoundsReadTimeoutByWindow(t *testing.T) {
	port := &fakePort{}
	withFakePort(t, port)

	r := NewReader("/dev/ttyUSB0", 9600)
	start := time.Now()
	rec, err := r.Read(context.Background(), 40*time.Millisecond)
	require.NoError(t, err)

	assert.True(t, rec.IsEmpty())
	assert.Less(t, time.Since(start), 400*time.Millisecond)
	require.NotEmpty(t, port.timeouts)
	for _, to := range port.timeouts {
		assert.LessOrEqual(t, to, 40*time.Millisecond)
	}
}

func TestReaderReturnsDeviceErrorAndReopens(t *testing.T) {
	port := &fakePort{readErr: errors.New("input/output error")}
	opens := withFakePort(t, port)

	r := NewReader("/dev/ttyUSB0", 9600)
	_, err := r.Read(context.Background(), 20*time.Millisecond)
	require.Error(t, err)
	var devErr pkgError.DeviceError
	assert.ErrorAs(t, err, &devErr)
	assert.True(t, port.closed)

	port.readErr = nil
	_, err = r.Read(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 2, *opens)
}

func TestReaderOpenFailure(t *testing.T) {
	orig := openPort
	openPort = func(name string, baud int) (Port, error) {
		return nil, errors.New("no such file or directory")
	}
	defer func() { openPort = orig }()

	_, err := NewReader("/dev/ttyACM9", 9600).Read(context.Background(), time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/ttyACM9")
}

func TestReaderStopsOnCancel(t *testing.T) {
	withFakePort(t, &fakePort{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewReader("/dev/ttyUSB0", 9600).Read(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
