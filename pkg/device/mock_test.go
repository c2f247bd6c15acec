package device

import (
	"testing"
	"time"

	"github.com/itohio/abscope/pkg/config"
	"github.com/itohio/abscope/pkg/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockCfg(channels, corruptEvery int) *config.MockConfig {
	return &config.MockConfig{
		Channels:     channels,
		NoiseLevel:   4.0,
		SampleRate:   time.Millisecond,
		CorruptEvery: corruptEvery,
	}
}

func TestMock_ConnectLifecycle(t *testing.T) {
	m := NewMock(mockCfg(3, 0))

	assert.False(t, m.IsConnected())

	_, err := m.Read(make([]byte, 1))
	assert.Error(t, err, "read before connect must fail")

	require.NoError(t, m.Connect())
	assert.True(t, m.IsConnected())
	assert.Error(t, m.Connect(), "double connect must fail")

	require.NoError(t, m.Close())
	assert.False(t, m.IsConnected())
	assert.NoError(t, m.Close(), "double close is a no-op")
}

func TestMock_ProducesDecodableFrames(t *testing.T) {
	m := NewMock(mockCfg(4, 0))
	require.NoError(t, m.Connect())
	defer m.Close()

	dec := frame.NewDecoder(m, 0)

	topo, err := dec.Topology()
	require.NoError(t, err)
	assert.Equal(t, 4, topo.Channels)

	for range 10 {
		payload, err := dec.Next()
		require.NoError(t, err)
		assert.Len(t, payload, 4)
	}
	assert.Equal(t, uint64(0), dec.Mismatches())
}

func TestMock_CorruptFramesAreRecovered(t *testing.T) {
	// Every third frame is truncated; the decoder must skip them and
	// keep returning well-formed payloads.
	m := NewMock(mockCfg(2, 3))
	require.NoError(t, m.Connect())
	defer m.Close()

	dec := frame.NewDecoder(m, 0)

	_, err := dec.Topology()
	require.NoError(t, err)

	for range 10 {
		payload, err := dec.Next()
		require.NoError(t, err)
		assert.Len(t, payload, 2)
	}
	assert.Greater(t, dec.Mismatches(), uint64(0), "corrupt frames should have been discarded")
}

func TestMock_CloseUnblocksRead(t *testing.T) {
	m := NewMock(mockCfg(1, 0))
	require.NoError(t, m.Connect())

	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 64)
		for {
			if _, err := m.Read(buf); err != nil {
				done <- err
				return
			}
		}
	}()

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, m.Close())

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Read did not unblock after Close")
	}
}
