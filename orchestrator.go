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

// Package coreg is the geospatial image co-registration engine: it detects
// a global two-dimensional translational misalignment between a reference
// raster and a target raster and reports the sub-pixel shift vector that
// best aligns them within a single matching window.
package coreg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/geoalign/coreg/geometry"
	"github.com/geoalign/coreg/phasecorr"
	"github.com/geoalign/coreg/planner"
	"github.com/geoalign/coreg/raster"
	"github.com/geoalign/coreg/ssim"
	"github.com/geoalign/coreg/window"
)

var runCounter atomic.Int64

// State is one of the Orchestrator's run states.
type State int

const (
	StateUnknown State = iota
	StatePlanning
	StateMaterializing
	StateMatching
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "Unknown"
	case StatePlanning:
		return "Planning"
	case StateMaterializing:
		return "Materializing"
	case StateMatching:
		return "Matching"
	case StateSuccess:
		return "Success"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// BadDataMasks holds the optional boolean bad-data masks from spec.md §6's
// `mask_baddata_ref`/`mask_baddata_tgt` options. A nil field means that
// raster has no mask; a sampled value of zero means good data, any other
// value means bad data. Mask rasters must share their parent raster's CRS.
type BadDataMasks struct {
	Ref, Tgt raster.Raster
}

// Warper is the external deshifting collaborator: given the target raster,
// the shift report, the desired output bounds/grid/resampling and a
// nodata value, it returns a raster-like view over the warped pixels.
type Warper interface {
	Warp(ctx context.Context, target raster.Raster, report *ShiftReport,
		outBounds raster.Bounds, outGT raster.GeoTransform, alg window.Resampling, nodata float64) (raster.Raster, error)
}

// Orchestrator drives a single co-registration run. It holds no
// cross-run state; every field is scoped to the Run call that populates it.
type Orchestrator struct {
	state State
	log   []*Error
	runID int64
}

// NewOrchestrator returns an Orchestrator in the Unknown state.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{state: StateUnknown, runID: runCounter.Add(1)}
}

// State returns the Orchestrator's current state.
func (o *Orchestrator) State() State { return o.state }

// ErrorLog returns the ordered errors accumulated so far.
func (o *Orchestrator) ErrorLog() []*Error { return o.log }

// transition moves the Orchestrator to a new state, logging the edge.
func (o *Orchestrator) transition(to State) {
	slog.Info("coreg: state transition", "run_id", o.runID, "from", o.state.String(), "to", to.String())
	o.state = to
}

// Run executes the full Unknown -> Planning|Failed -> Materializing ->
// Matching -> Success|Failed sequence and returns the resulting
// ShiftReport. masks may be the zero value (no bad-data masking). warper
// may be nil; when nil, the optional SSIM validation step is skipped
// regardless of cfg.RunSSIM.
//
// Per spec.md §7, the returned error is non-nil only when the run ends on
// a fatal Kind (see Kind.Fatal) and cfg.IgnoreErrors is false; with
// IgnoreErrors set, every outcome is reported through ShiftReport alone
// and Run always returns a nil error.
func (o *Orchestrator) Run(ctx context.Context, ref, tgt raster.Raster, masks BadDataMasks, cfg Config, warper Warper) (*ShiftReport, error) {
	report := &ShiftReport{
		RefProjection:   ref.CRS(),
		RefGeoTransform: ref.GeoTransform(),
		OriginalMapInfo: tgt.GeoTransform(),
		UpdatedMapInfo:  tgt.GeoTransform(),
	}
	report.RefTopLeftAnchors = topLeftAnchors(ref.GeoTransform())

	fail := func(err *Error) (*ShiftReport, error) {
		o.log = append(o.log, err)
		o.transition(StateFailed)
		report.Errors = o.log
		report.Success = false
		slog.Error("coreg: run failed", "run_id", o.runID, "kind", err.Kind.String(), "message", err.Message)
		if err.Kind.Fatal() && !cfg.IgnoreErrors {
			return report, err
		}
		return report, nil
	}

	if ref.CRS() != tgt.CRS() {
		return fail(newError(UnequalProjections, nil, "reference CRS %q does not match target CRS %q", ref.CRS(), tgt.CRS()))
	}

	o.transition(StatePlanning)
	plan, perr := o.plan(ctx, ref, tgt, masks, cfg)
	if perr != nil {
		return fail(perr)
	}

	o.transition(StateMaterializing)
	pair, merr := o.materialize(ctx, ref, tgt, cfg, plan)
	if merr != nil {
		return fail(merr)
	}

	o.transition(StateMatching)
	result, cerr := o.match(pair, cfg, plan)
	if cerr != nil {
		return fail(cerr)
	}

	o.transition(StateSuccess)
	report.Success = true
	report.UsedFFTFallback = result.UsedFFTFallback

	shiftPxX, shiftPxY := result.DxTarget, result.DyTarget
	report.ShiftPxX, report.ShiftPxY = &shiftPxX, &shiftPxY

	tgtGT := tgt.GeoTransform()
	tpx, tpy := tgtGT.PixelSize()
	shiftMapX, shiftMapY := shiftPxX*tpx, -shiftPxY*tpy
	report.ShiftMapX, report.ShiftMapY = &shiftMapX, &shiftMapY

	vecLen := math.Sqrt(shiftMapX*shiftMapX + shiftMapY*shiftMapY)
	report.VecLengthMap = &vecLen
	vecAngle := geometry.AngleToNorth(shiftMapX, shiftMapY)
	report.VecAngleDeg = &vecAngle

	reliability := result.Reliability
	report.Reliability = &reliability

	updated := tgtGT
	ox, oy := updated.Origin()
	updated[0] = ox - shiftMapX
	updated[3] = oy - shiftMapY
	report.UpdatedMapInfo = updated

	if cfg.RunSSIM && warper != nil {
		o.runSSIM(ctx, tgt, cfg, plan, pair, report, warper)
	}

	report.Errors = o.log
	return report, nil
}

func (o *Orchestrator) plan(ctx context.Context, ref, tgt raster.Raster, masks BadDataMasks, cfg Config) (*planner.Plan, *Error) {
	refCols, refRows := ref.Dims()
	tgtCols, tgtRows := tgt.Dims()
	refGT, tgtGT := ref.GeoTransform(), tgt.GeoTransform()

	refFP, err := geometry.FromBox(raster.NewBox(refGT, 0, 0, refCols, refRows))
	if err != nil {
		return nil, newError(InsufficientOverlap, err, "build reference footprint")
	}
	defer refFP.Close()
	tgtFP, err := geometry.FromBox(raster.NewBox(tgtGT, 0, 0, tgtCols, tgtRows))
	if err != nil {
		return nil, newError(InsufficientOverlap, err, "build target footprint")
	}
	defer tgtFP.Close()

	refPx, refPy := refGT.PixelSize()
	tgtPx, tgtPy := tgtGT.PixelSize()
	refSize := math.Sqrt(refPx * refPy)
	tgtSize := math.Sqrt(tgtPx * tgtPy)
	finerSize := math.Min(refSize, tgtSize)

	overlap, _, _, err := geometry.Overlap(refFP, tgtFP, finerSize)
	if err != nil {
		switch {
		case errors.Is(err, geometry.ErrEmptyOverlap), errors.Is(err, geometry.ErrOverlapTooSmall):
			return nil, newError(InsufficientOverlap, err, "reference and target rasters do not overlap enough to match")
		default:
			return nil, newError(InsufficientOverlap, err, "compute overlap polygon")
		}
	}
	defer overlap.Close()

	useRefGrid := refSize <= tgtSize

	in := planner.Input{
		RefGT: refGT, TgtGT: tgtGT,
		RefCols: refCols, RefRows: refRows, TgtCols: tgtCols, TgtRows: tgtRows,
		Overlap:     overlap,
		WinPosX:     cfg.WinPosX,
		WinPosY:     cfg.WinPosY,
		WinSizeCols: cfg.WinCols, WinSizeRows: cfg.WinRows,
		UseRefGrid:  useRefGrid,
		RefBadData:  maskSampler(ctx, masks.Ref),
		TgtBadData:  maskSampler(ctx, masks.Tgt),
	}

	p, perr := planner.Plan(in)
	if perr != nil {
		return nil, mapPlannerError(perr)
	}
	if p.MatchBox.Cols() != cfg.WinCols || p.MatchBox.Rows() != cfg.WinRows {
		slog.Warn("coreg: requested window size not possible, using adjusted size",
			"run_id", o.runID,
			"requested_cols", cfg.WinCols, "requested_rows", cfg.WinRows,
			"actual_cols", p.MatchBox.Cols(), "actual_rows", p.MatchBox.Rows())
	}
	return p, nil
}

func mapPlannerError(err error) *Error {
	switch {
	case errors.Is(err, planner.ErrWindowOutsideOverlap):
		return newError(WindowOutsideOverlap, err, "window position outside overlap")
	case errors.Is(err, planner.ErrWindowInBadData):
		return newError(WindowInBadData, err, "window position falls on masked pixel")
	case errors.Is(err, planner.ErrWindowTooSmall):
		return newError(WindowTooSmall, err, "window shrank below the 16x16 pixel floor")
	case errors.Is(err, planner.ErrShrinkageDeadlock):
		return newError(ShrinkageDeadlock, err, "could not shrink windows to fit within the overlap")
	default:
		return newError(WindowOutsideOverlap, err, "window planning failed")
	}
}

func (o *Orchestrator) materialize(ctx context.Context, ref, tgt raster.Raster, cfg Config, plan *planner.Plan) (*window.Pair, *Error) {
	matchIsRef := plan.MatchBox.GT == ref.GeoTransform()

	var matchRaster, otherRaster raster.Raster
	var matchBand, otherBand int
	if matchIsRef {
		matchRaster, otherRaster = ref, tgt
		matchBand, otherBand = cfg.RefBand, cfg.TgtBand
	} else {
		matchRaster, otherRaster = tgt, ref
		matchBand, otherBand = cfg.TgtBand, cfg.RefBand
	}

	if cfg.ResampAlgCalc == window.Average {
		slog.Warn("coreg: average resampling in the matching window can introduce sinusoidal FFT artifacts", "run_id", o.runID)
	}

	pair, err := window.Materialize(ctx, matchRaster, otherRaster, matchBand, otherBand, plan.MatchBox, plan.OtherBox, cfg.ResampAlgCalc)
	if err != nil {
		return nil, newError(WindowMismatch, err, "materialize matching windows")
	}
	return pair, nil
}

func (o *Orchestrator) match(pair *window.Pair, cfg Config, plan *planner.Plan) (*phasecorr.Result, *Error) {
	otherPx, _ := plan.OtherBox.GT.PixelSize()
	engine := phasecorr.NewEngine(phasecorr.Config{
		BinaryWS: cfg.BinaryWS, ForceQuadraticWin: cfg.ForceQuadraticWin,
		MaxIter: cfg.MaxIter, MaxShift: cfg.MaxShift,
		ImfftGSD: plan.ImfftGSD, TargetPixelSize: otherPx,
	})
	result, err := engine.Run(pair.Match, pair.Other)
	if engine.FellBack() {
		o.log = append(o.log, newError(FFTFallback, nil, "accelerated FFT backend yielded all-zero output, fell back to direct DFT"))
	}
	if err != nil {
		switch {
		case errors.Is(err, phasecorr.ErrWindowTooSmall):
			return nil, newError(WindowTooSmall, err, "SCPS shrank below the usable size")
		case errors.Is(err, phasecorr.ErrNoMatchFound):
			return nil, newError(NoMatchFound, err, "validation loop did not converge within max_iter=%d", cfg.MaxIter)
		case errors.Is(err, phasecorr.ErrShiftTooLarge):
			return nil, newError(ShiftTooLarge, err, "shift exceeds max_shift=%v", cfg.MaxShift)
		default:
			return nil, newError(NoMatchFound, err, "phase correlation failed")
		}
	}
	return result, nil
}

// runSSIM performs the optional post-correction sanity check: it warps the
// target window through warper using the just-computed shift and compares
// structural similarity before and after. Any failure here is logged and
// skipped; it never turns a successful match into a failed run.
func (o *Orchestrator) runSSIM(ctx context.Context, tgt raster.Raster, cfg Config, plan *planner.Plan, pair *window.Pair, report *ShiftReport, warper Warper) {
	before := ssim.Compute(pair.Match, pair.Other, ssim.DynamicRange(pair.Match, pair.Other))
	report.SSIMBefore = &before

	nodata, _ := tgt.NoData(cfg.TgtBand)
	if cfg.TgtNoData != nil {
		nodata = *cfg.TgtNoData
	}
	warped, err := warper.Warp(ctx, tgt, report, plan.MatchBox.MapBounds(), plan.MatchBox.GT, cfg.ResampAlgDeshift, nodata)
	if err != nil {
		slog.Warn("coreg: post-correction ssim warp failed, skipping check", "run_id", o.runID, "error", err)
		return
	}
	afterData, err := warped.BandData(ctx, cfg.TgtBand, plan.MatchBox.ColMin, plan.MatchBox.RowMin, pair.Cols, pair.Rows)
	if err != nil {
		slog.Warn("coreg: post-correction ssim read failed, skipping check", "run_id", o.runID, "error", err)
		return
	}
	after := ssim.Compute(pair.Match, afterData, ssim.DynamicRange(pair.Match, afterData))
	report.SSIMAfter = &after
	improved := after >= before
	report.SSIMImproved = &improved
}

// maskSampler adapts an optional boolean mask raster into the
// point-sampling function planner.Input expects. Returns nil when mask is
// nil, matching planner's "no mask supplied" convention.
func maskSampler(ctx context.Context, mask raster.Raster) func(x, y float64) bool {
	if mask == nil {
		return nil
	}
	return func(x, y float64) bool {
		col, row := mask.GeoTransform().MapToPixel(x, y)
		c, r := int(math.Floor(col)), int(math.Floor(row))
		cols, rows := mask.Dims()
		if c < 0 || r < 0 || c >= cols || r >= rows {
			return false
		}
		data, err := mask.BandData(ctx, 1, c, r, 1, 1)
		if err != nil || len(data) == 0 || len(data[0]) == 0 {
			return false
		}
		return data[0][0] != 0
	}
}

func topLeftAnchors(gt raster.GeoTransform) [2][2][2]float64 {
	var anchors [2][2][2]float64
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			x, y := gt.PixelToMap(float64(c), float64(r))
			anchors[r][c] = [2]float64{x, y}
		}
	}
	return anchors
}
