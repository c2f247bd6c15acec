package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelColor_CyclesPalette(t *testing.T) {
	// Distinct colors within one palette cycle
	seen := map[uint32]bool{}
	for ch := range len(palette) {
		c := ChannelColor(ch)
		key := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		assert.False(t, seen[key], "channel %d reuses a color within the first cycle", ch)
		seen[key] = true
	}

	// Wraps around past the palette length
	assert.Equal(t, ChannelColor(0), ChannelColor(len(palette)))
	assert.Equal(t, ChannelColor(2), ChannelColor(2+2*len(palette)))
}
