package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"08:00", 480},
		{"09:30", 570},
		{"23:59", 1439},
	}
	for _, tt := range tests {
		got, err := ToMinutes(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestToMinutesRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "8:00", "24:00", "12:60", "banana"} {
		_, err := ToMinutes(in)
		assert.Error(t, err, in)
	}
}

func TestFromMinutesZeroPads(t *testing.T) {
	assert.Equal(t, "08:05", FromMinutes(485))
	assert.Equal(t, "00:00", FromMinutes(0))
	assert.Equal(t, "16:30", FromMinutes(990))
}

func TestIsValidTime(t *testing.T) {
	assert.True(t, IsValidTime("08:00"))
	assert.False(t, IsValidTime("8:00"), "unpadded hour must be rejected")
	assert.False(t, IsValidTime("08:00:00"))
}

func TestOverlapsHalfOpen(t *testing.T) {
	// Back-to-back intervals share an endpoint and must not overlap.
	assert.False(t, Overlaps(540, 600, 600, 630))
	assert.False(t, Overlaps(600, 630, 540, 600))
	assert.True(t, Overlaps(540, 600, 570, 600))
	assert.True(t, Overlaps(540, 600, 500, 700))
	assert.False(t, Overlaps(540, 600, 700, 730))
}
