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

// Package phasecorr implements the shifted cross-power spectrum engine:
// sizing, FFT, the normalized cross-power spectrum, integer-shift
// validation, sub-pixel refinement and reliability scoring.
package phasecorr

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// fft2 computes the 2D forward DFT of a (rows x cols, row-major) by applying
// a 1D FFT along each row, then along each column. It tries the accelerated
// gonum backend first; if that backend yields all-zero output (the
// documented degenerate-input symptom used to detect a broken backend), the
// caller falls back to fft2Direct and remembers that decision for the rest
// of the run.
func fft2(a [][]complex128) [][]complex128 {
	rows, cols := len(a), len(a[0])
	out := make([][]complex128, rows)
	for r := range out {
		out[r] = append([]complex128(nil), a[r]...)
	}

	rowFFT := fourier.NewCmplxFFT(cols)
	for r := 0; r < rows; r++ {
		out[r] = rowFFT.Coefficients(out[r], out[r])
	}

	colFFT := fourier.NewCmplxFFT(rows)
	col := make([]complex128, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			col[r] = out[r][c]
		}
		col = colFFT.Coefficients(col, col)
		for r := 0; r < rows; r++ {
			out[r][c] = col[r]
		}
	}
	return out
}

// ifft2 computes the 2D inverse DFT without normalization: gonum's Sequence
// does not divide by N, so the result is rows*cols times that of
// ifft2Direct. Peak position, sub-pixel ratios and reliability are all
// unaffected by that constant factor.
func ifft2(a [][]complex128) [][]complex128 {
	rows, cols := len(a), len(a[0])
	out := make([][]complex128, rows)
	for r := range out {
		out[r] = append([]complex128(nil), a[r]...)
	}

	colFFT := fourier.NewCmplxFFT(rows)
	col := make([]complex128, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			col[r] = out[r][c]
		}
		col = colFFT.Sequence(col, col)
		for r := 0; r < rows; r++ {
			out[r][c] = col[r]
		}
	}

	rowFFT := fourier.NewCmplxFFT(cols)
	for r := 0; r < rows; r++ {
		out[r] = rowFFT.Sequence(out[r], out[r])
	}
	return out
}

// allZero reports whether every element of a has (numerically) zero
// magnitude, the symptom used to detect a broken FFT backend.
func allZero(a [][]complex128) bool {
	for _, row := range a {
		for _, v := range row {
			if cmplx.Abs(v) > 1e-300 {
				return false
			}
		}
	}
	return true
}

// fft2Direct is a textbook O(N^4) 2D DFT, the documented fallback engine
// used only when the accelerated backend has been observed to misbehave.
func fft2Direct(a [][]complex128) [][]complex128 {
	return dft2(a, -1)
}

// ifft2Direct is the inverse of fft2Direct, normalized by rows*cols.
func ifft2Direct(a [][]complex128) [][]complex128 {
	rows, cols := len(a), len(a[0])
	out := dft2(a, 1)
	n := float64(rows * cols)
	for r := range out {
		for c := range out[r] {
			out[r][c] /= complex(n, 0)
		}
	}
	return out
}

func dft2(a [][]complex128, sign float64) [][]complex128 {
	rows, cols := len(a), len(a[0])
	out := make([][]complex128, rows)
	for r := range out {
		out[r] = make([]complex128, cols)
	}
	for u := 0; u < rows; u++ {
		for v := 0; v < cols; v++ {
			var sum complex128
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					angle := sign * 2 * math.Pi * (float64(u*r)/float64(rows) + float64(v*c)/float64(cols))
					sum += a[r][c] * cmplx.Exp(complex(0, angle))
				}
			}
			out[u][v] = sum
		}
	}
	return out
}
