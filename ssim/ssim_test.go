package ssim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func grid(n int, fn func(r, c int) float64) [][]float64 {
	out := make([][]float64, n)
	for r := range out {
		out[r] = make([]float64, n)
		for c := range out[r] {
			out[r][c] = fn(r, c)
		}
	}
	return out
}

func TestComputeIdenticalIsOne(t *testing.T) {
	a := grid(16, func(r, c int) float64 { return float64((r*7 + c*3) % 255) })
	dr := DynamicRange(a, a)
	assert.InDelta(t, 1.0, Compute(a, a, dr), 1e-9)
}

func TestComputeDecreasesWithNoise(t *testing.T) {
	a := grid(16, func(r, c int) float64 { return float64((r*7 + c*3) % 255) })
	noisy := grid(16, func(r, c int) float64 {
		v := float64((r*7 + c*3) % 255)
		if (r+c)%2 == 0 {
			v += 40
		} else {
			v -= 40
		}
		if v < 0 {
			v = 0
		}
		return v
	})
	dr := DynamicRange(a, noisy)
	same := Compute(a, a, dr)
	diff := Compute(a, noisy, dr)
	assert.Less(t, diff, same)
}

func TestDynamicRangeFlat(t *testing.T) {
	flat := grid(4, func(r, c int) float64 { return 5 })
	assert.Equal(t, 1.0, DynamicRange(flat, flat))
}
