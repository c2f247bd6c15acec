package frame

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frameBytes builds a wire frame from a payload: payload bytes, count
// byte, newline.
func frameBytes(payload ...byte) []byte {
	out := make([]byte, 0, len(payload)+2)
	out = append(out, payload...)
	out = append(out, byte(len(payload)), '\n')
	return out
}

func newLatchedDecoder(t *testing.T, data []byte, maxRetries int) *Decoder {
	t.Helper()
	d := NewDecoder(bytes.NewReader(data), maxRetries)
	_, err := d.Topology()
	require.NoError(t, err)
	return d
}

func TestTopology_LatchesFromFirstValidFrame(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(frameBytes(10, 20, 30))
	stream.Write(frameBytes(1, 2, 3))

	d := NewDecoder(&stream, 0)

	topo, err := d.Topology()
	require.NoError(t, err)
	assert.Equal(t, 3, topo.Channels)

	// The discovery frame is consumed; the next read returns the second frame.
	payload, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, payload)

	// Repeated calls return the latched value without consuming frames.
	topo2, err := d.Topology()
	require.NoError(t, err)
	assert.Equal(t, topo, topo2)
}

func TestTopology_SkipsMalformedPreamble(t *testing.T) {
	var stream bytes.Buffer
	stream.WriteByte('\n')            // empty line
	stream.Write([]byte{7, 3, '\n'})  // claims 3 channels, payload is 1 byte
	stream.Write([]byte{5, 0, '\n'})  // count byte of zero
	stream.Write(frameBytes(42, 99)) // first valid frame

	d := NewDecoder(&stream, 0)

	topo, err := d.Topology()
	require.NoError(t, err)
	assert.Equal(t, 2, topo.Channels)
	assert.Equal(t, uint64(3), d.Mismatches())
}

func TestNext_ReturnsExactlyCountBytes(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(frameBytes(0, 0))
	stream.Write(frameBytes(10, 20))
	stream.Write(frameBytes(5, 250))

	d := newLatchedDecoder(t, stream.Bytes(), 0)

	payload, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20}, payload)

	payload, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 250}, payload)
}

func TestNext_RequiresTopology(t *testing.T) {
	d := NewDecoder(bytes.NewReader(frameBytes(1)), 0)
	_, err := d.Next()
	assert.Error(t, err)
}

func TestNext_SkipsMalformedLines(t *testing.T) {
	tests := []struct {
		name      string
		malformed []byte
	}{
		{
			name:      "empty line",
			malformed: []byte{'\n'},
		},
		{
			name:      "zero count byte",
			malformed: []byte{0, '\n'},
		},
		{
			name:      "count claims more channels than payload",
			malformed: []byte{7, 3, '\n'},
		},
		{
			name:      "count claims fewer channels than payload",
			malformed: []byte{1, 2, 3, 4, 1, '\n'},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stream bytes.Buffer
			stream.Write(frameBytes(1, 2)) // topology frame
			stream.Write(tt.malformed)
			stream.Write(frameBytes(30, 40))

			d := newLatchedDecoder(t, stream.Bytes(), 0)

			payload, err := d.Next()
			require.NoError(t, err)
			assert.Equal(t, []byte{30, 40}, payload, "malformed line must never surface")
			assert.Equal(t, uint64(1), d.Mismatches())
		})
	}
}

func TestNext_RejectsChannelCountDrift(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(frameBytes(1, 2))       // latches N=2
	stream.Write(frameBytes(9, 9, 9))    // structurally valid but N=3
	stream.Write(frameBytes(100, 200))   // next N=2 frame

	d := newLatchedDecoder(t, stream.Bytes(), 0)

	payload, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{100, 200}, payload)
	assert.Equal(t, uint64(1), d.Mismatches())
}

func TestNext_RetryLimit(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(frameBytes(1)) // topology frame, N=1
	for range 5 {
		stream.WriteByte('\n')
	}
	stream.Write(frameBytes(77))

	d := newLatchedDecoder(t, stream.Bytes(), 3)

	_, err := d.Next()
	assert.ErrorIs(t, err, ErrNoValidFrame)

	// The limit is per read; a later call keeps skipping and recovers.
	payload, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{77}, payload)
}

func TestNext_UnboundedRetries(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(frameBytes(1))
	for range 100 {
		stream.Write([]byte{9, 9, '\n'}) // count byte 9, length 2
	}
	stream.Write(frameBytes(55))

	d := newLatchedDecoder(t, stream.Bytes(), 0)

	payload, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{55}, payload)
	assert.Equal(t, uint64(100), d.Mismatches())
}

func TestNext_SurfacesReadErrors(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(frameBytes(1))
	stream.Write([]byte{42}) // partial line, no delimiter

	d := newLatchedDecoder(t, stream.Bytes(), 0)

	_, err := d.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
}

func TestPayloadMatchesCountByteProperty(t *testing.T) {
	// For a spread of channel counts, a valid frame round-trips with
	// exactly count-byte values.
	for _, n := range []int{1, 2, 5, 32, 255} {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i * 7)
		}

		var stream bytes.Buffer
		stream.Write(frameBytes(payload...))
		stream.Write(frameBytes(payload...))

		d := newLatchedDecoder(t, stream.Bytes(), 0)

		got, err := d.Next()
		require.NoError(t, err)
		assert.Len(t, got, n)
		assert.Equal(t, payload, got)
	}
}
