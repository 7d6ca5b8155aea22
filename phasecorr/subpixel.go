package phasecorr

import "math"

// subpixelRefine implements §4.4.4 and §4.4.5: the side-maximum sub-pixel
// estimate at the central peak, and the reliability score derived from the
// same SCPS. A peak on the SCPS border has no interior neighbor on at
// least one side; per spec.md's design notes, missing neighbors are
// treated as zero and the reliability for such a peak is reported as 0.
func subpixelRefine(scps [][]float64) (dx, dy float64, reliability float64) {
	rows, cols := len(scps), len(scps[0])
	pr, pc := peakPos(scps)
	peak := scps[pr][pc]

	onBorder := pr == 0 || pr == rows-1 || pc == 0 || pc == cols-1
	at := func(r, c int) float64 {
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return 0
		}
		return scps[r][c]
	}

	left, right := at(pr, pc-1), at(pr, pc+1)
	up, down := at(pr-1, pc), at(pr+1, pc)

	vx, sgnX := sideMax(left, right)
	vy, sgnY := sideMax(up, down)

	if peak+vx != 0 {
		dx = sgnX * vx / (peak + vx)
	}
	if peak+vy != 0 {
		dy = sgnY * vy / (peak + vy)
	}

	if onBorder {
		return dx, dy, 0
	}
	return dx, dy, reliability3x3(scps, pr, pc)
}

// sideMax picks the larger of the two immediate neighbors and its signed
// direction: -1 toward the low-index neighbor, +1 toward the high-index one.
func sideMax(lo, hi float64) (value, sign float64) {
	if hi >= lo {
		return hi, 1
	}
	return lo, -1
}

// reliability3x3 implements §4.4.5: P is the mean of the 3x3 block centered
// on the peak; those 9 cells are masked out of the rest, whose mean+2*std
// gives Q; reliability = clip(100 - 100*Q/P, 0, 100).
func reliability3x3(scps [][]float64, pr, pc int) float64 {
	rows, cols := len(scps), len(scps[0])

	var blockSum float64
	blockCount := 0
	masked := make(map[[2]int]bool)
	for r := pr - 1; r <= pr+1; r++ {
		for c := pc - 1; c <= pc+1; c++ {
			if r < 0 || r >= rows || c < 0 || c >= cols {
				continue
			}
			blockSum += scps[r][c]
			blockCount++
			masked[[2]int{r, c}] = true
		}
	}
	if blockCount == 0 {
		return 0
	}
	p := blockSum / float64(blockCount)

	var restSum float64
	restCount := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if masked[[2]int{r, c}] {
				continue
			}
			restSum += scps[r][c]
			restCount++
		}
	}
	if restCount == 0 || p == 0 {
		return 0
	}
	mean := restSum / float64(restCount)

	var varSum float64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if masked[[2]int{r, c}] {
				continue
			}
			d := scps[r][c] - mean
			varSum += d * d
		}
	}
	std := math.Sqrt(varSum / float64(restCount))
	q := mean + 2*std

	rel := 100 - 100*q/p
	return clip(rel, 0, 100)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
