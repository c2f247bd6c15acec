package sample

import (
	"fmt"

	"github.com/itohio/abscope/pkg/frame"
	"github.com/itohio/abscope/pkg/trace"
)

// DefaultFullScale is the voltage a byte value of 256 would map to.
const DefaultFullScale = 5.0

// Volts converts a raw absorbance byte to volts. The denominator is 256,
// not 255, to match the source format exactly: 255 maps to ~4.98 V at a
// 5 V full scale, never the full scale itself.
func Volts(b byte, fullScale float64) float64 {
	return float64(b) / 256 * fullScale
}

// Pipeline pulls frames from a decoder, scales them to volts, and
// appends them to the rolling trace. One Tick is one sampling interval.
type Pipeline struct {
	dec       *frame.Decoder
	buf       *trace.Buffer
	fullScale float64
	row       []float64 // reused between ticks; the trace copies on write
}

// NewPipeline creates a Pipeline writing width-channel rows into buf.
// fullScale <= 0 falls back to DefaultFullScale.
func NewPipeline(dec *frame.Decoder, buf *trace.Buffer, fullScale float64) *Pipeline {
	if fullScale <= 0 {
		fullScale = DefaultFullScale
	}
	return &Pipeline{
		dec:       dec,
		buf:       buf,
		fullScale: fullScale,
		row:       make([]float64, buf.Width()),
	}
}

// Tick acquires one frame, converts it to volts, and writes it into the
// trace. The returned row is reused on the next Tick; callers must not
// retain it. Decoder errors (frame.ErrNoValidFrame, transport failures)
// pass through unchanged so the caller can tell recoverable from fatal.
func (p *Pipeline) Tick() ([]float64, error) {
	payload, err := p.dec.Next()
	if err != nil {
		return nil, err
	}
	if len(payload) != len(p.row) {
		// Cannot happen with a topology-latched decoder
		return nil, fmt.Errorf("frame has %d channels, trace expects %d", len(payload), len(p.row))
	}

	for i, b := range payload {
		p.row[i] = Volts(b, p.fullScale)
	}

	if err := p.buf.Write(p.row); err != nil {
		return nil, err
	}

	return p.row, nil
}
