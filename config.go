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

package coreg

import (
	"math"

	"github.com/geoalign/coreg/window"
)

// Config is the run's configuration record, matching spec.md §6's
// recognized CLI options. It is the only thing a caller needs to build
// besides the two Raster handles.
type Config struct {
	RefBand int `yaml:"r_b4match"`
	TgtBand int `yaml:"s_b4match"`

	WinPosX float64 `yaml:"wp_x"`
	WinPosY float64 `yaml:"wp_y"`
	WinCols int     `yaml:"ws_cols"`
	WinRows int     `yaml:"ws_rows"`

	MaxIter  int     `yaml:"max_iter"`
	MaxShift float64 `yaml:"max_shift"`

	ResampAlgCalc    window.Resampling `yaml:"resamp_alg_calc"`
	ResampAlgDeshift window.Resampling `yaml:"resamp_alg_deshift"`

	CalcCorners       bool `yaml:"calc_corners"`
	BinaryWS          bool `yaml:"binary_ws"`
	ForceQuadraticWin bool `yaml:"force_quadratic_win"`

	IgnoreErrors bool `yaml:"ignore_errors"`

	// TgtNoData, when non-nil, replaces the target raster's own nodata value
	// in the SSIM warp call. RefNoData is carried but not read by any step.
	RefNoData, TgtNoData *float64

	// RunSSIM enables the optional post-correction SSIM validation step,
	// which requires a Warper collaborator.
	RunSSIM bool
}

// Default returns a Config populated with spec.md §6's documented defaults.
func Default() Config {
	return Config{
		RefBand: 1, TgtBand: 1,
		WinPosX: math.NaN(), WinPosY: math.NaN(),
		WinCols: 256, WinRows: 256,
		MaxIter: 5, MaxShift: 5,
		ResampAlgCalc: window.Cubic, ResampAlgDeshift: window.Cubic,
		CalcCorners: true, BinaryWS: true, ForceQuadraticWin: true,
	}
}
