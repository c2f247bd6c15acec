package device

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/itohio/abscope/pkg/config"
)

// Mock simulates the sensor MCU for testing and development. It writes
// the documented wire format into a pipe at the configured sample rate:
// one slow absorbance waveform per channel plus deterministic noise.
// With CorruptEvery > 0 it periodically emits a truncated line so the
// decoder's resynchronization path gets exercised without hardware.
type Mock struct {
	cfg *config.MockConfig

	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	pr        *io.PipeReader
	pw        *io.PipeWriter
	connected bool

	startTime  time.Time
	frameCount int
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			Channels:     3,
			NoiseLevel:   4.0,
			SampleRate:   25 * time.Millisecond,
			CorruptEvery: 0,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect starts the frame generator.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.pr, m.pw = io.Pipe()
	m.connected = true
	m.startTime = time.Now()
	m.frameCount = 0

	go m.generateFrames()

	return nil
}

// Close stops the mocked device. Pending reads unblock with an error.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.pr.Close()
	m.connected = false

	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Read reads generated wire-format bytes.
func (m *Mock) Read(p []byte) (int, error) {
	m.mu.RLock()
	pr := m.pr
	connected := m.connected
	m.mu.RUnlock()

	if !connected || pr == nil {
		return 0, fmt.Errorf("not connected")
	}

	return pr.Read(p)
}

// generateFrames paces frame emission at the configured sample rate.
func (m *Mock) generateFrames() {
	defer m.pw.Close()

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			line := m.generateFrame()
			if _, err := m.pw.Write(line); err != nil {
				// Reader side closed
				return
			}
		}
	}
}

// generateFrame builds one wire frame (or, periodically, a corrupt one).
func (m *Mock) generateFrame() []byte {
	m.mu.Lock()
	m.frameCount++
	count := m.frameCount
	m.mu.Unlock()

	elapsed := time.Since(m.startTime).Seconds()
	n := m.cfg.Channels

	line := make([]byte, 0, n+2)
	for ch := range n {
		line = append(line, m.channelValue(ch, elapsed))
	}

	if m.cfg.CorruptEvery > 0 && count%m.cfg.CorruptEvery == 0 {
		// Drop one payload byte but keep the count byte, mimicking a
		// missed byte on the wire
		line = line[:len(line)-1]
	}

	line = append(line, byte(n), '\n')
	return line
}

// channelValue simulates one sensor: a slow absorbance swing with a
// per-channel phase offset plus bounded deterministic noise.
func (m *Mock) channelValue(ch int, elapsed float64) byte {
	phase := float64(ch) * 2 * math.Pi / float64(m.cfg.Channels)
	base := 127.5 + 100.0*math.Sin(2*math.Pi*elapsed/10.0+phase)

	noise := (math.Sin(elapsed*997.0) + math.Cos(elapsed*1301.0)) *
		m.cfg.NoiseLevel * 0.5
	v := base + noise

	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return byte(v)
}
