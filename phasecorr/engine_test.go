package phasecorr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkerboard(n, square int) [][]float64 {
	out := make([][]float64, n)
	for r := range out {
		out[r] = make([]float64, n)
		for c := range out[r] {
			if (r/square+c/square)%2 == 0 {
				out[r][c] = 255
			}
		}
	}
	return out
}

func shifted(src [][]float64, dx, dy int, fill float64) [][]float64 {
	rows, cols := len(src), len(src[0])
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
		for c := range out[r] {
			sr, sc := r-dy, c-dx
			if sr < 0 || sr >= rows || sc < 0 || sc >= cols {
				out[r][c] = fill
				continue
			}
			out[r][c] = src[sr][sc]
		}
	}
	return out
}

func defaultConfig() Config {
	return Config{
		BinaryWS: true, ForceQuadraticWin: true,
		MaxIter: 5, MaxShift: 5,
		ImfftGSD: 1, TargetPixelSize: 1,
	}
}

func TestEngineIdentityShift(t *testing.T) {
	board := checkerboard(256, 32)
	e := NewEngine(defaultConfig())
	res, err := e.Run(board, board)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.DxPixel, 1e-6)
	assert.InDelta(t, 0, res.DyPixel, 1e-6)
	assert.GreaterOrEqual(t, res.Reliability, 95.0)
}

func TestEngineIntegerShift(t *testing.T) {
	board := checkerboard(256, 32)
	tgt := shifted(board, 3, -2, 128)
	e := NewEngine(defaultConfig())
	res, err := e.Run(board, tgt)
	require.NoError(t, err)
	assert.InDelta(t, 3, res.DxPixel, 0.05)
	assert.InDelta(t, -2, res.DyPixel, 0.05)
}

func TestEngineShiftTooLarge(t *testing.T) {
	board := checkerboard(256, 32)
	tgt := shifted(board, 10, 10, 128)
	cfg := defaultConfig()
	cfg.MaxShift = 5
	e := NewEngine(cfg)
	_, err := e.Run(board, tgt)
	assert.ErrorIs(t, err, ErrShiftTooLarge)
}

func TestFFTShiftPutsZeroFreqAtCenter(t *testing.T) {
	a := [][]float64{{1, 2}, {3, 4}}
	out := fftshift(a)
	assert.Equal(t, 4.0, out[0][0])
	assert.Equal(t, 3.0, out[0][1])
	assert.Equal(t, 2.0, out[1][0])
	assert.Equal(t, 1.0, out[1][1])
}

func TestLargestPow2(t *testing.T) {
	assert.Equal(t, 256, largestPow2(300))
	assert.Equal(t, 1, largestPow2(1))
	assert.Equal(t, 0, largestPow2(0))
}

func TestReliabilityBorderPeakIsZero(t *testing.T) {
	scps := make([][]float64, 8)
	for r := range scps {
		scps[r] = make([]float64, 8)
	}
	scps[0][0] = 100
	dx, dy, rel := subpixelRefine(scps)
	assert.Equal(t, 0.0, dx)
	assert.Equal(t, 0.0, dy)
	assert.Equal(t, 0.0, rel)
}

func TestReliabilityHighForCleanPeak(t *testing.T) {
	n := 16
	scps := make([][]float64, n)
	for r := range scps {
		scps[r] = make([]float64, n)
	}
	cr, cc := n/2, n/2
	for r := cr - 1; r <= cr+1; r++ {
		for c := cc - 1; c <= cc+1; c++ {
			scps[r][c] = 100
		}
	}
	scps[cr][cc] = 200
	_, _, rel := subpixelRefine(scps)
	assert.Greater(t, rel, 80.0)
}

func TestReliabilityLowForNoise(t *testing.T) {
	n := 16
	scps := make([][]float64, n)
	seed := 1469598103934665603
	for r := range scps {
		scps[r] = make([]float64, n)
		for c := range scps[r] {
			seed = (seed*1099511628211 + 17) & 0x7fffffff
			scps[r][c] = float64(seed%1000) / 1000
		}
	}
	_, _, rel := subpixelRefine(scps)
	assert.Less(t, rel, 60.0)
}

func TestAllZeroDetection(t *testing.T) {
	z := [][]complex128{{0, 0}, {0, 0}}
	assert.True(t, allZero(z))
	z[0][0] = complex(1, 0)
	assert.False(t, allZero(z))
}

func TestDFTRoundTrip(t *testing.T) {
	a := toComplex([][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}, {13, 14, 15, 16}})
	f := fft2Direct(a)
	back := ifft2Direct(f)
	for r := range a {
		for c := range a[r] {
			assert.InDelta(t, real(a[r][c]), real(back[r][c]), 1e-6)
			assert.InDelta(t, imag(a[r][c]), imag(back[r][c]), 1e-6)
		}
	}
}
