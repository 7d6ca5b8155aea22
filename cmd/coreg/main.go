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

// Command coreg runs a single co-registration between a reference and a
// target raster and prints the resulting shift report.
package main

import (
	"fmt"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/geoalign/coreg"
	"github.com/geoalign/coreg/rasteradapter"
	"github.com/geoalign/coreg/window"
)

var cfg = coreg.Default()
var configFile string
var resampCalcName, resampDeshiftName string
var maskBadDataRefPath, maskBadDataTgtPath string

func init() {
	flags := coregCommand.Flags()
	flags.StringVar(&configFile, "config", "", "yaml file of Config overrides, loaded after flag parsing so its values win (resamp_alg_* always come from their flags)")
	flags.IntVar(&cfg.RefBand, "r_b4match", cfg.RefBand, "reference band to match (1-based)")
	flags.IntVar(&cfg.TgtBand, "s_b4match", cfg.TgtBand, "target band to match (1-based)")
	flags.Float64Var(&cfg.WinPosX, "wp_x", cfg.WinPosX, "window position, map x (NaN: use overlap center)")
	flags.Float64Var(&cfg.WinPosY, "wp_y", cfg.WinPosY, "window position, map y (NaN: use overlap center)")
	flags.IntVar(&cfg.WinCols, "ws_cols", cfg.WinCols, "window size, columns")
	flags.IntVar(&cfg.WinRows, "ws_rows", cfg.WinRows, "window size, rows")
	flags.IntVar(&cfg.MaxIter, "max_iter", cfg.MaxIter, "maximum validation-loop iterations")
	flags.Float64Var(&cfg.MaxShift, "max_shift", cfg.MaxShift, "maximum acceptable shift, in reference pixels")
	flags.StringVar(&resampCalcName, "resamp_alg_calc", "cubic", "resampling algorithm for the matching window")
	flags.StringVar(&resampDeshiftName, "resamp_alg_deshift", "cubic", "resampling algorithm for the optional ssim check")
	flags.BoolVar(&cfg.CalcCorners, "calc_corners", cfg.CalcCorners, "accepted for compatibility; footprints are always the full raster extent")
	flags.BoolVar(&cfg.BinaryWS, "binary_ws", cfg.BinaryWS, "round window sizes down to a power of two")
	flags.BoolVar(&cfg.ForceQuadraticWin, "force_quadratic_win", cfg.ForceQuadraticWin, "force a square matching window")
	flags.BoolVar(&cfg.IgnoreErrors, "ignore_errors", cfg.IgnoreErrors, "log errors to the report instead of aborting the run")
	flags.BoolVar(&cfg.RunSSIM, "run_ssim", cfg.RunSSIM, "run the optional pre/post SSIM validation (requires a warper)")
	flags.StringVar(&maskBadDataRefPath, "mask_baddata_ref", "", "optional raster marking nonzero pixels as bad data in the reference")
	flags.StringVar(&maskBadDataTgtPath, "mask_baddata_tgt", "", "optional raster marking nonzero pixels as bad data in the target")
}

func main() {
	if err := coregCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var coregCommand = &cobra.Command{
	Use:   "coreg <reference.tif> <target.tif>",
	Short: "detect the sub-pixel shift between a reference and a target raster",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := loadConfigFile(configFile, &cfg); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
		}
		alg, err := parseResampling(resampCalcName)
		if err != nil {
			return fmt.Errorf("resamp_alg_calc: %w", err)
		}
		cfg.ResampAlgCalc = alg
		alg, err = parseResampling(resampDeshiftName)
		if err != nil {
			return fmt.Errorf("resamp_alg_deshift: %w", err)
		}
		cfg.ResampAlgDeshift = alg

		godal.RegisterAll()

		ref, err := rasteradapter.Open(args[0])
		if err != nil {
			return fmt.Errorf("open reference %s: %w", args[0], err)
		}
		defer ref.Close()

		tgt, err := rasteradapter.Open(args[1])
		if err != nil {
			return fmt.Errorf("open target %s: %w", args[1], err)
		}
		defer tgt.Close()

		var masks coreg.BadDataMasks
		if maskBadDataRefPath != "" {
			maskRef, err := rasteradapter.Open(maskBadDataRefPath)
			if err != nil {
				return fmt.Errorf("open mask_baddata_ref %s: %w", maskBadDataRefPath, err)
			}
			defer maskRef.Close()
			masks.Ref = maskRef
		}
		if maskBadDataTgtPath != "" {
			maskTgt, err := rasteradapter.Open(maskBadDataTgtPath)
			if err != nil {
				return fmt.Errorf("open mask_baddata_tgt %s: %w", maskBadDataTgtPath, err)
			}
			defer maskTgt.Close()
			masks.Tgt = maskTgt
		}

		report, runErr := coreg.NewOrchestrator().Run(cmd.Context(), ref, tgt, masks, cfg, nil)

		out, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))

		return runErr
	},
}

func loadConfigFile(path string, cfg *coreg.Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

func parseResampling(name string) (window.Resampling, error) {
	switch name {
	case "nearest":
		return window.Nearest, nil
	case "bilinear":
		return window.Bilinear, nil
	case "cubic":
		return window.Cubic, nil
	case "cubicspline":
		return window.CubicSpline, nil
	case "lanczos":
		return window.Lanczos, nil
	case "average":
		return window.Average, nil
	case "mode":
		return window.Mode, nil
	case "max":
		return window.Max, nil
	case "min":
		return window.Min, nil
	case "med":
		return window.Med, nil
	case "q1":
		return window.Q1, nil
	case "q3":
		return window.Q3, nil
	default:
		return 0, fmt.Errorf("unknown resampling algorithm %q", name)
	}
}
