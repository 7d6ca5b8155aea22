package window

import (
	"math"
	"sort"
)

func clampIdx(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func at(src [][]float64, cols, rows, c, r int) float64 {
	return src[clampIdx(r, 0, rows-1)][clampIdx(c, 0, cols-1)]
}

func nearestSample(src [][]float64, cols, rows int, x, y float64) float64 {
	return at(src, cols, rows, int(math.Round(x-0.5)), int(math.Round(y-0.5)))
}

func bilinearSample(src [][]float64, cols, rows int, x, y float64) float64 {
	fx, fy := x-0.5, y-0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)
	v00 := at(src, cols, rows, x0, y0)
	v10 := at(src, cols, rows, x0+1, y0)
	v01 := at(src, cols, rows, x0, y0+1)
	v11 := at(src, cols, rows, x0+1, y0+1)
	top := v00*(1-tx) + v10*tx
	bot := v01*(1-tx) + v11*tx
	return top*(1-ty) + bot*ty
}

// cubicWeight is the Catmull-Rom cubic convolution kernel (a = -0.5).
func cubicWeight(t float64) float64 {
	const a = -0.5
	t = math.Abs(t)
	switch {
	case t <= 1:
		return (a+2)*t*t*t - (a+3)*t*t + 1
	case t < 2:
		return a*t*t*t - 5*a*t*t + 8*a*t - 4*a
	default:
		return 0
	}
}

func cubicSample(src [][]float64, cols, rows int, x, y float64) float64 {
	fx, fy := x-0.5, y-0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)
	var sum float64
	for j := -1; j <= 2; j++ {
		wy := cubicWeight(float64(j) - ty)
		var rowSum float64
		for i := -1; i <= 2; i++ {
			wx := cubicWeight(float64(i) - tx)
			rowSum += wx * at(src, cols, rows, x0+i, y0+j)
		}
		sum += wy * rowSum
	}
	return sum
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// lanczosSample uses a 3-lobe Lanczos kernel.
func lanczosSample(src [][]float64, cols, rows int, x, y float64) float64 {
	const a = 3
	fx, fy := x-0.5, y-0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)
	var sum, wsum float64
	for j := -a + 1; j <= a; j++ {
		dy := float64(j) - ty
		wy := sinc(dy) * sinc(dy/a)
		for i := -a + 1; i <= a; i++ {
			dx := float64(i) - tx
			wx := sinc(dx) * sinc(dx/a)
			w := wx * wy
			sum += w * at(src, cols, rows, x0+i, y0+j)
			wsum += w
		}
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

// aggregateSample builds a sampler that pools the 2x2 block of source
// pixels nearest the destination point and reduces it with agg. This models
// the GDAL block-aggregation resamplers (average/mode/min/max/med/q1/q3),
// which have no equivalent in image-kernel resampling libraries.
func aggregateSample(agg func([]float64) float64) func(src [][]float64, cols, rows int, x, y float64) float64 {
	return func(src [][]float64, cols, rows int, x, y float64) float64 {
		x0, y0 := int(math.Floor(x-0.5)), int(math.Floor(y-0.5))
		vals := make([]float64, 0, 4)
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				vals = append(vals, at(src, cols, rows, x0+i, y0+j))
			}
		}
		return agg(vals)
	}
}

func meanOf(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func sortedCopy(vals []float64) []float64 {
	out := append([]float64(nil), vals...)
	sort.Float64s(out)
	return out
}

func medianOf(vals []float64) float64 {
	s := sortedCopy(vals)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

func quantileOf(q float64) func([]float64) float64 {
	return func(vals []float64) float64 {
		s := sortedCopy(vals)
		idx := q * float64(len(s)-1)
		lo := int(math.Floor(idx))
		hi := int(math.Ceil(idx))
		if lo == hi {
			return s[lo]
		}
		frac := idx - float64(lo)
		return s[lo]*(1-frac) + s[hi]*frac
	}
}

func modeOf(vals []float64) float64 {
	counts := make(map[float64]int, len(vals))
	best, bestCount := vals[0], 0
	for _, v := range vals {
		counts[v]++
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
