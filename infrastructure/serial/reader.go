package serial

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/AzielCF/az-plant/domains/telemetry"
	pkgError "github.com/AzielCF/az-plant/pkg/error"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// maxReadSlice bounds one blocking read so cancellation is noticed promptly.
const maxReadSlice = 500 * time.Millisecond

// Port is the subset of serial.Port the reader needs.
type Port interface {
	io.Reader
	SetReadTimeout(t time.Duration) error
	Close() error
}

// openPort opens the device 8N1. Tests replace it.
var openPort = func(name string, baud int) (Port, error) {
	return serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
}

// Reader owns the serial link to the Arduino. The port is opened lazily and
// reopened on the next Read after an I/O error.
type Reader struct {
	portName string
	baudRate int

	mu   sync.Mutex
	port Port
	now  func() time.Time
}

func NewReader(portName string, baudRate int) *Reader {
	return &Reader{portName: portName, baudRate: baudRate, now: time.Now}
}

// Read collects newline-delimited lines until window elapses, then parses them.
func (r *Reader) Read(ctx context.Context, window time.Duration) (telemetry.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.port == nil {
		p, err := openPort(r.portName, r.baudRate)
		if err != nil {
			return telemetry.Record{}, pkgError.DeviceError(fmt.Sprintf("serial: open %s: %v", r.portName, err))
		}
		logrus.Infof("[SERIAL] opened %s at %d baud", r.portName, r.baudRate)
		r.port = p
	}

	lines, err := r.collect(ctx, window)
	if err != nil {
		_ = r.port.Close()
		r.port = nil
		return telemetry.Record{}, err
	}

	rec := ParseLines(lines)
	rec.ReadAt = r.now()
	logrus.Debugf("[SERIAL] %d lines in %s -> %+v", len(lines), window, rec)
	return rec, nil
}

func (r *Reader) collect(ctx context.Context, window time.Duration) ([]string, error) {
	deadline := r.now().Add(window)
	buf := make([]byte, 256)
	var pending bytes.Buffer
	var lines []string

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		remaining := deadline.Sub(r.now())
		if remaining <= 0 {
			break
		}
		if remaining > maxReadSlice {
			remaining = maxReadSlice
		}
		if err := r.port.SetReadTimeout(remaining); err != nil {
			return nil, pkgError.DeviceError(fmt.Sprintf("serial: set read timeout: %v", err))
		}

		n, err := r.port.Read(buf)
		if err != nil {
			return nil, pkgError.DeviceError(fmt.Sprintf("serial: read %s: %v", r.portName, err))
		}
		if n == 0 {
			// read timeout
			continue
		}

		pending.Write(buf[:n])
		for {
			idx := bytes.IndexByte(pending.Bytes(), '\n')
			if idx < 0 {
				break
			}
			line := string(pending.Next(idx + 1))
			lines = append(lines, line)
		}
	}

	// A partial line at the end of the window is dropped; its value may be truncated.
	if pending.Len() > 0 {
		logrus.Debugf("[SERIAL] dropping partial line %q", pending.String())
	}
	return lines, nil
}

func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.port == nil {
		return nil
	}
	err := r.port.Close()
	r.port = nil
	return err
}
