package frame

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrNoValidFrame is returned by Next when the retry limit is reached
// without obtaining a structurally valid frame. The condition is
// recoverable: the stream may still produce valid frames later.
var ErrNoValidFrame = errors.New("no valid frame within retry limit")

// Wire format, one frame per sampling interval:
//
//	[sensor_1][sensor_2]...[sensor_N][N]'\n'
//
// Each sensor byte is an absorbance reading (0 = none, 255 = maximum).
// The trailing count byte self-describes the payload length and must be
// at least 1. A line that violates any of this is discarded and reading
// resumes on the next line.

// Topology describes the channel layout of the byte stream, discovered
// from the first structurally valid frame and fixed for the lifetime of
// the decoder.
type Topology struct {
	Channels int
}

// Decoder reads and validates sensor frames from a byte source.
// It is not safe for concurrent use; a single acquisition goroutine
// owns it.
type Decoder struct {
	r          *bufio.Reader
	channels   int // 0 until Topology latches the channel count
	maxRetries int
	mismatches uint64
}

// NewDecoder creates a Decoder over the given byte source. maxRetries
// bounds the number of consecutive malformed lines a single read will
// skip before giving up with ErrNoValidFrame; 0 means retry forever.
func NewDecoder(r io.Reader, maxRetries int) *Decoder {
	return &Decoder{
		r:          bufio.NewReader(r),
		maxRetries: maxRetries,
	}
}

// Topology consumes frames until a structurally valid one is obtained
// and latches its payload length as the channel count. The frame used
// for discovery is consumed, not returned; the first plotted sample is
// the one after it. Calling Topology again returns the latched value.
func (d *Decoder) Topology() (Topology, error) {
	if d.channels > 0 {
		return Topology{Channels: d.channels}, nil
	}

	payload, err := d.readFrame()
	if err != nil {
		return Topology{}, err
	}
	d.channels = len(payload)

	return Topology{Channels: d.channels}, nil
}

// Next returns the payload of the next valid frame: exactly one byte
// per channel, raw 0-255 values. Malformed lines (empty, bad count
// byte, length mismatch, channel-count drift) are consumed and skipped
// internally and are never returned. Next blocks until a valid frame
// arrives, the retry limit is hit (ErrNoValidFrame), or the underlying
// read fails.
func (d *Decoder) Next() ([]byte, error) {
	if d.channels == 0 {
		return nil, fmt.Errorf("decoder not initialized: call Topology first")
	}
	return d.readFrame()
}

// Mismatches returns the total number of discarded lines. Diagnostic
// only; it does not affect decoding.
func (d *Decoder) Mismatches() uint64 {
	return d.mismatches
}

func (d *Decoder) readFrame() ([]byte, error) {
	retries := 0
	for {
		line, err := d.r.ReadBytes('\n')
		if err != nil {
			// A partial line without its delimiter is unusable.
			return nil, fmt.Errorf("read frame: %w", err)
		}
		line = line[:len(line)-1] // strip '\n'

		if payload, ok := d.validate(line); ok {
			return payload, nil
		}

		d.mismatches++
		retries++
		if d.maxRetries > 0 && retries >= d.maxRetries {
			return nil, ErrNoValidFrame
		}
	}
}

// validate checks a delimiter-stripped line against the wire format and
// returns its payload. Once the topology is latched, a count byte that
// disagrees with it is treated the same as any other malformed line.
func (d *Decoder) validate(line []byte) ([]byte, bool) {
	if len(line) < 1 {
		// Only the delimiter was received
		return nil, false
	}

	count := int(line[len(line)-1])
	if count < 1 {
		return nil, false
	}
	if len(line) != count+1 {
		// Missed or extra bytes, likely due to timing
		return nil, false
	}
	if d.channels > 0 && count != d.channels {
		// Channel-count drift after initialization
		return nil, false
	}

	return line[:len(line)-1], true
}
