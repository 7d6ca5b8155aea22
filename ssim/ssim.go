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

// Package ssim computes the Structural Similarity Index over a matching
// window, used as an independent sanity check before and after shift
// correction.
package ssim

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// k1, k2 and the luminance/contrast stabilizers are the standard SSIM
// constants (Wang et al. 2004).
const (
	k1 = 0.01
	k2 = 0.03
)

// DynamicRange computes the max-min span across both input windows, the
// value SSIM uses to scale its stabilizing constants.
func DynamicRange(a, b [][]float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, grid := range [][][]float64{a, b} {
		for _, row := range grid {
			for _, v := range row {
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
		}
	}
	if hi <= lo {
		return 1
	}
	return hi - lo
}

// Compute returns the SSIM between a and b (equal shape), computed once from
// whole-window statistics (no sliding sub-windows), using dynamicRange to
// scale the stabilizing constants C1 = (k1*L)^2, C2 = (k2*L)^2.
func Compute(a, b [][]float64, dynamicRange float64) float64 {
	flatA := flatten(a)
	flatB := flatten(b)

	muA := stat.Mean(flatA, nil)
	muB := stat.Mean(flatB, nil)
	varA := stat.Variance(flatA, nil)
	varB := stat.Variance(flatB, nil)
	cov := stat.Covariance(flatA, flatB, nil)

	c1 := math.Pow(k1*dynamicRange, 2)
	c2 := math.Pow(k2*dynamicRange, 2)

	numerator := (2*muA*muB + c1) * (2*cov + c2)
	denominator := (muA*muA + muB*muB + c1) * (varA + varB + c2)
	if denominator == 0 {
		return 1
	}
	return numerator / denominator
}

func flatten(grid [][]float64) []float64 {
	n := 0
	for _, row := range grid {
		n += len(row)
	}
	out := make([]float64, 0, n)
	for _, row := range grid {
		out = append(out, row...)
	}
	return out
}
