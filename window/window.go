// Copyright 2021 Airbus Defence and Space
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package window reads the matching and other windows from their rasters
// and resamples the other window onto the matching window's grid.
package window

import (
	"context"
	"errors"
	"fmt"

	"github.com/geoalign/coreg/raster"
)

// Resampling identifies one of spec.md's supported resampling algorithms.
type Resampling int

const (
	Nearest Resampling = iota
	Bilinear
	Cubic
	CubicSpline
	Lanczos
	Average
	Mode
	Max
	Min
	Med
	Q1
	Q3
)

// ErrWindowMismatch is returned when the two materialized windows end up
// with different shapes or corner coordinates after resampling.
var ErrWindowMismatch = errors.New("window: materialized windows have inconsistent shapes")

// Pair is the two equal-shape arrays handed to the phase-correlation engine.
type Pair struct {
	Match, Other [][]float64
	// Cols, Rows are the (even) dimensions shared by both arrays.
	Cols, Rows int
}

// Materialize reads matchBox from matchRaster and otherBox from otherRaster
// (taking band matchBand/otherBand respectively), resamples otherBox onto
// matchBox's grid using alg, and trims both arrays to even dimensions.
func Materialize(ctx context.Context, matchRaster, otherRaster raster.Raster, matchBand, otherBand int,
	matchBox, otherBox raster.Box, alg Resampling) (*Pair, error) {

	matchData, err := matchRaster.BandData(ctx, matchBand, matchBox.ColMin, matchBox.RowMin, matchBox.Cols(), matchBox.Rows())
	if err != nil {
		return nil, fmt.Errorf("window: read match window: %w", err)
	}
	otherRaw, err := otherRaster.BandData(ctx, otherBand, otherBox.ColMin, otherBox.RowMin, otherBox.Cols(), otherBox.Rows())
	if err != nil {
		return nil, fmt.Errorf("window: read other window: %w", err)
	}

	sameGrid := matchBox.GT == otherBox.GT && matchBox.Cols() == otherBox.Cols() && matchBox.Rows() == otherBox.Rows()
	otherData := otherRaw
	if !sameGrid {
		otherData, err = resample(otherRaw, otherBox, matchBox, alg)
		if err != nil {
			return nil, err
		}
	}

	if len(matchData) != len(otherData) || (len(matchData) > 0 && len(matchData[0]) != len(otherData[0])) {
		return nil, ErrWindowMismatch
	}
	// Resampled data already sits on matchBox's corners; unresampled data
	// keeps otherBox's, which must then be the same.
	if sameGrid && (matchBox.ColMin != otherBox.ColMin || matchBox.RowMin != otherBox.RowMin) {
		return nil, ErrWindowMismatch
	}

	rows := len(matchData)
	cols := 0
	if rows > 0 {
		cols = len(matchData[0])
	}
	if rows%2 != 0 {
		rows--
	}
	if cols%2 != 0 {
		cols--
	}
	if rows <= 0 || cols <= 0 {
		return nil, ErrWindowMismatch
	}

	return &Pair{Match: trim(matchData, rows, cols), Other: trim(otherData, rows, cols), Cols: cols, Rows: rows}, nil
}

func trim(data [][]float64, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		out[r] = data[r][:cols]
	}
	return out
}

// resample warps src (covering srcBox, on srcBox.GT) onto dstBox's grid
// using alg. Output has dstBox's pixel dimensions; each output pixel maps
// back through dstBox.GT to a map coordinate, which is sampled from src via
// srcBox.GT.
func resample(src [][]float64, srcBox, dstBox raster.Box, alg Resampling) ([][]float64, error) {
	dstCols, dstRows := dstBox.Cols(), dstBox.Rows()
	out := make([][]float64, dstRows)
	for r := range out {
		out[r] = make([]float64, dstCols)
	}
	srcRows := len(src)
	srcCols := 0
	if srcRows > 0 {
		srcCols = len(src[0])
	}
	sample := kernel(alg)

	for r := 0; r < dstRows; r++ {
		for c := 0; c < dstCols; c++ {
			mx, my := dstBox.GT.PixelToMap(float64(dstBox.ColMin+c)+0.5, float64(dstBox.RowMin+r)+0.5)
			sc, sr := srcBox.GT.MapToPixel(mx, my)
			sc -= float64(srcBox.ColMin)
			sr -= float64(srcBox.RowMin)
			out[r][c] = sample(src, srcCols, srcRows, sc, sr)
		}
	}
	return out, nil
}

// kernel returns a sampler function for alg: a point/area evaluator taking
// fractional source pixel coordinates (already offset into src's local
// index space) and returning the resampled value at that point.
func kernel(alg Resampling) func(src [][]float64, cols, rows int, x, y float64) float64 {
	switch alg {
	case Nearest:
		return nearestSample
	case Bilinear:
		return bilinearSample
	case Cubic, CubicSpline:
		return cubicSample
	case Lanczos:
		return lanczosSample
	case Average:
		return aggregateSample(meanOf)
	case Mode:
		return aggregateSample(modeOf)
	case Max:
		return aggregateSample(maxOf)
	case Min:
		return aggregateSample(minOf)
	case Med:
		return aggregateSample(medianOf)
	case Q1:
		return aggregateSample(quantileOf(0.25))
	case Q3:
		return aggregateSample(quantileOf(0.75))
	default:
		return bilinearSample
	}
}
