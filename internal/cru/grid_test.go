package cru

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CRU TS uses 9.96921e36 as the fill value.
const fill = float32(9.96921e36)

func TestNearestIndex(t *testing.T) {
	axis := []float32{10, 20, 30}
	tests := []struct {
		name string
		q    float64
		want int
	}{
		{"between grid lines", 21, 1},
		{"exactly on a grid line", 30, 2},
		{"midway ties to the lower index", 15, 0},
		{"below the axis", -5, 0},
		{"above the axis", 99, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NearestIndex(axis, tc.q))
		})
	}
}

func TestNearestIndexDescendingAxis(t *testing.T) {
	// Latitude axes in some products run north to south.
	assert.Equal(t, 2, NearestIndex([]float32{30, 20, 10}, 12))
}

func TestMaskedMeanExcludesFill(t *testing.T) {
	mean, err := MaskedMean([]float32{5, fill, 7}, fill)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, mean, 1e-9)
}

func TestMaskedMeanNoFill(t *testing.T) {
	mean, err := MaskedMean([]float32{-1.5, 0, 4.5}, fill)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mean, 1e-9)
}

func TestMaskedMeanAllFill(t *testing.T) {
	_, err := MaskedMean([]float32{fill, fill}, fill)
	assert.ErrorIs(t, err, ErrAllMissing)
}
