package phasecorr

import "math/cmplx"

// scps computes the Shifted Cross-Power Spectrum of two equal-shape real
// arrays (spec.md §4.4.1): forward FFT both, form the normalized cross
// power spectrum, inverse FFT, take magnitude, then fftshift so the
// zero-frequency component sits at (rows/2, cols/2).
func (e *Engine) scps(a, b [][]float64) [][]float64 {
	ca := toComplex(a)
	cb := toComplex(b)

	fa := e.forward(ca)
	fb := e.forward(cb)

	rows, cols := len(fa), len(fa[0])
	eps := maxAbs(fb) * 1e-15
	cross := make([][]complex128, rows)
	for r := 0; r < rows; r++ {
		cross[r] = make([]complex128, cols)
		for c := 0; c < cols; c++ {
			f, g := fa[r][c], fb[r][c]
			denom := cmplx.Abs(f)*cmplx.Abs(g) + eps
			if denom == 0 {
				cross[r][c] = 0
				continue
			}
			cross[r][c] = f * cmplx.Conj(g) / complex(denom, 0)
		}
	}

	back := e.inverse(cross)
	mag := make([][]float64, rows)
	for r := range mag {
		mag[r] = make([]float64, cols)
		for c := range mag[r] {
			mag[r][c] = cmplx.Abs(back[r][c])
		}
	}
	return fftshift(mag)
}

// forward runs the accelerated FFT backend, falling back to the direct DFT
// permanently for this Engine instance if the backend ever produces
// all-zero output on a non-trivially-zero input.
func (e *Engine) forward(a [][]complex128) [][]complex128 {
	if e.fellBack {
		return fft2Direct(a)
	}
	out := fft2(a)
	if allZero(out) && !allZero(a) {
		e.fellBack = true
		return fft2Direct(a)
	}
	return out
}

func (e *Engine) inverse(a [][]complex128) [][]complex128 {
	if e.fellBack {
		return ifft2Direct(a)
	}
	return ifft2(a)
}

// maxAbs returns max(|v|) over every element of a, matching spec.md
// §4.4.1's eps = max(|G|) * 1e-15 regularizer.
func maxAbs(a [][]complex128) float64 {
	var m float64
	for _, row := range a {
		for _, v := range row {
			if abs := cmplx.Abs(v); abs > m {
				m = abs
			}
		}
	}
	return m
}

func toComplex(a [][]float64) [][]complex128 {
	out := make([][]complex128, len(a))
	for r := range a {
		out[r] = make([]complex128, len(a[r]))
		for c := range a[r] {
			out[r][c] = complex(a[r][c], 0)
		}
	}
	return out
}

// fftshift swaps quadrants so the zero-frequency component moves to the
// center of the array.
func fftshift(a [][]float64) [][]float64 {
	rows, cols := len(a), len(a[0])
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
	}
	halfR, halfC := rows/2, cols/2
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out[(r+halfR)%rows][(c+halfC)%cols] = a[r][c]
		}
	}
	return out
}
