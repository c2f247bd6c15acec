package trace

import (
	"fmt"
	"sync"
	"time"
)

// Buffer is a fixed-capacity rolling window of multi-channel samples.
//
// Rows are ordered oldest to newest. The buffer is allocated full of
// zero rows; rows that have not been written yet stay at 0.0 and are
// included in snapshots, so a fresh trace plots as a flat line that the
// live data gradually overwrites. Once every slot has been written, each
// write shifts the window left by one row and the newest sample always
// lands in the last slot.
//
// One goroutine writes (the acquisition loop) while the UI thread reads
// snapshots, hence the RWMutex.
type Buffer struct {
	mu    sync.RWMutex
	rows  [][]float64
	width int
	index int // next write position, pinned at depth-1 once full
	full  bool
}

// New creates a Buffer of depth rows by width channels, zero-filled.
func New(depth, width int) (*Buffer, error) {
	if depth < 1 {
		return nil, fmt.Errorf("trace depth must be positive, got %d", depth)
	}
	if width < 1 {
		return nil, fmt.Errorf("trace width must be positive, got %d", width)
	}

	rows := make([][]float64, depth)
	for i := range rows {
		rows[i] = make([]float64, width)
	}

	return &Buffer{
		rows:  rows,
		width: width,
	}, nil
}

// Write appends a row of channel values. While the buffer is filling,
// rows land at consecutive indices; once full, the oldest row is
// evicted and the new row is written at the last index.
func (b *Buffer) Write(row []float64) error {
	if len(row) != b.width {
		return fmt.Errorf("row width %d does not match trace width %d", len(row), b.width)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.index >= len(b.rows) {
		b.full = true
		b.index = len(b.rows) - 1
		// Shift the window left by one row, discarding the oldest
		first := b.rows[0]
		copy(b.rows, b.rows[1:])
		b.rows[len(b.rows)-1] = first
	}

	copy(b.rows[b.index], row)
	b.index++

	return nil
}

// Snapshot returns a deep copy of all rows, oldest first, including
// not-yet-written zero rows. It never fails and is safe to hand to the
// render thread.
func (b *Buffer) Snapshot() [][]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([][]float64, len(b.rows))
	for i, row := range b.rows {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// Len returns the number of rows written so far, capped at the depth.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.full {
		return len(b.rows)
	}
	return b.index
}

// Depth returns the buffer capacity in rows.
func (b *Buffer) Depth() int {
	return len(b.rows)
}

// Width returns the number of channels per row.
func (b *Buffer) Width() int {
	return b.width
}

// TimeAxis returns the x axis for a trace of the given depth: one value
// per row, in seconds, row i at i times the sampling interval. The axis
// depends only on depth and interval, both fixed after startup.
func TimeAxis(depth int, interval time.Duration) []float64 {
	axis := make([]float64, depth)
	for i := range axis {
		axis[i] = float64(i) * interval.Seconds()
	}
	return axis
}
