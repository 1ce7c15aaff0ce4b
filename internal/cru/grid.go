package cru

import (
	"errors"
	"math"
)

// ErrAllMissing is returned when every value in a cell's time series equals
// the fill value, leaving nothing to average.
var ErrAllMissing = errors.New("all values at the cell are missing")

// NearestIndex returns the index of the axis value closest to q. The scan
// uses a strict less-than comparison, so on an exact tie the lower index
// wins. The axis must be non-empty.
func NearestIndex(axis []float32, q float64) int {
	best := 0
	bestDist := math.Abs(float64(axis[0]) - q)
	for i := 1; i < len(axis); i++ {
		d := math.Abs(float64(axis[i]) - q)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// MaskedMean returns the arithmetic mean of vals with fill-valued entries
// excluded from both the sum and the divisor. If every entry is fill, it
// returns ErrAllMissing rather than a zero mean.
func MaskedMean(vals []float32, fill float32) (float64, error) {
	var sum float64
	var n int
	for _, v := range vals {
		if v == fill {
			continue
		}
		sum += float64(v)
		n++
	}
	if n == 0 {
		return 0, ErrAllMissing
	}
	return sum / float64(n), nil
}
