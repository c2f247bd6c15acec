package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownsampleRows_NoDownsampling(t *testing.T) {
	rows := [][]float64{{1.0}, {1.1}, {1.2}}

	// Test with nil dst
	result := DownsampleRows(nil, rows, 10)
	require.Equal(t, 3, len(result))
	assert.Equal(t, rows[0], result[0])
	assert.Equal(t, rows[1], result[1])
	assert.Equal(t, rows[2], result[2])

	// Test with sufficient capacity dst
	dst := make([][]float64, 0, 10)
	result = DownsampleRows(dst, rows, 10)
	require.Equal(t, 3, len(result))
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsampleRows_WithDownsampling(t *testing.T) {
	rows := make([][]float64, 100)
	for i := range rows {
		rows[i] = []float64{float64(i) * 0.01}
	}

	dst := make([][]float64, 0, 20)
	result := DownsampleRows(dst, rows, 10)
	require.Equal(t, 10, len(result))

	// Always includes the first row
	assert.Equal(t, rows[0], result[0])

	// Decimation covers the whole range
	assert.GreaterOrEqual(t, result[len(result)-1][0], 0.8)
}

func TestDownsampleRows_DestinationReuse(t *testing.T) {
	rows1 := [][]float64{{1.0}, {1.1}}
	rows2 := [][]float64{{2.0}, {2.1}, {2.2}}

	dst := make([][]float64, 0, 10)
	result1 := DownsampleRows(dst, rows1, 10)
	require.Equal(t, 2, len(result1))

	// Second call reuses the same underlying array
	result2 := DownsampleRows(result1, rows2, 10)
	require.Equal(t, 3, len(result2))
	assert.Equal(t, cap(result1), cap(result2))
}

func TestDownsampleAxis_AlignedWithRows(t *testing.T) {
	rows := make([][]float64, 100)
	axis := make([]float64, 100)
	for i := range rows {
		rows[i] = []float64{float64(i)}
		axis[i] = float64(i) * 0.025
	}

	gotRows := DownsampleRows(nil, rows, 10)
	gotAxis := DownsampleAxis(nil, axis, 10)
	require.Equal(t, len(gotRows), len(gotAxis))

	// Both use the same decimation indices
	for i := range gotRows {
		assert.Equal(t, gotRows[i][0]*0.025, gotAxis[i])
	}
}

func TestDownsampleAxis_NoDownsampling(t *testing.T) {
	axis := []float64{0, 0.025, 0.05}

	result := DownsampleAxis(nil, axis, 10)
	assert.Equal(t, axis, result)

	dst := make([]float64, 0, 10)
	result = DownsampleAxis(dst, axis, 10)
	assert.Equal(t, axis, result)
	assert.Equal(t, cap(dst), cap(result))
}
