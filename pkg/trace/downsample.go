package trace

// DownsampleRows decimates a slice of rows to at most maxPoints for
// display. Destination-based: reuses dst if it has sufficient capacity,
// otherwise allocates. The row slices themselves are shared, not copied.
func DownsampleRows(dst [][]float64, rows [][]float64, maxPoints int) [][]float64 {
	if len(rows) <= maxPoints {
		if cap(dst) >= len(rows) {
			dst = dst[:len(rows)]
			copy(dst, rows)
			return dst
		}
		result := make([][]float64, len(rows))
		copy(result, rows)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0] // Reset length but keep capacity
	} else {
		dst = make([][]float64, 0, maxPoints)
	}

	// Calculate step size for decimation
	step := float64(len(rows)) / float64(maxPoints)

	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx < len(rows) {
			dst = append(dst, rows[idx])
		}
	}

	return dst
}

// DownsampleAxis decimates an axis to at most maxPoints, using the same
// decimation indices as DownsampleRows so points stay aligned.
func DownsampleAxis(dst []float64, axis []float64, maxPoints int) []float64 {
	if len(axis) <= maxPoints {
		if cap(dst) >= len(axis) {
			dst = dst[:len(axis)]
			copy(dst, axis)
			return dst
		}
		result := make([]float64, len(axis))
		copy(result, axis)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]float64, 0, maxPoints)
	}

	step := float64(len(axis)) / float64(maxPoints)

	for i := range maxPoints {
		idx := int(float64(i) * step)
		if idx < len(axis) {
			dst = append(dst, axis[idx])
		}
	}

	return dst
}
