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

// Package planner positions and sizes the matching window and its paired
// window on the other grid, clipping both to the overlap polygon.
package planner

import (
	"errors"
	"math"
	"time"

	"github.com/geoalign/coreg/geometry"
	"github.com/geoalign/coreg/raster"
)

// minWindowPixels is the 16x16-pixel floor on both output windows.
const minWindowPixels = 16

// shrinkWallClock bounds how long the shrink-to-fit loop (step 8) may run
// before it is declared deadlocked.
const shrinkWallClock = 1500 * time.Millisecond

// ErrWindowOutsideOverlap is returned when no valid window position can be
// derived from the overlap polygon.
var ErrWindowOutsideOverlap = errors.New("planner: window position is outside the overlap polygon")

// ErrWindowInBadData is returned when the window position falls on a
// masked pixel of either raster's bad-data mask.
var ErrWindowInBadData = errors.New("planner: window position falls on a masked pixel")

// ErrShrinkageDeadlock is returned when the box-shrinking loop exceeds its
// wall-clock budget or stops making area progress.
var ErrShrinkageDeadlock = errors.New("planner: could not shrink windows to fit within the overlap")

// ErrWindowTooSmall is returned when a planned window falls under the
// 16x16-pixel floor.
var ErrWindowTooSmall = errors.New("planner: window shrank below the 16x16 pixel floor")

// Input bundles everything Plan needs to position the two windows.
type Input struct {
	RefGT, TgtGT raster.GeoTransform
	// RefCols/RefRows and TgtCols/TgtRows are the full raster dimensions,
	// kept for callers that need to validate Overlap against them; Plan's
	// own arithmetic only ever touches the overlap polygon and the grids.
	RefCols, RefRows int
	TgtCols, TgtRows int
	Overlap          *geometry.Footprint
	// WinPosX, WinPosY is the user-supplied window position in map units;
	// either may be NaN to request the overlap centroid/representative point.
	WinPosX, WinPosY float64
	// WinSizeCols, WinSizeRows is the requested window size in grid2use
	// pixels.
	WinSizeCols, WinSizeRows int
	// UseRefGrid selects grid2use: true anchors matchBox on RefGT.
	UseRefGrid bool
	// BadData reports whether the map point (x,y) lands on a masked pixel
	// of the corresponding raster; either may be nil.
	RefBadData, TgtBadData func(x, y float64) bool
}

// Plan is the result of the Window Planner: the matching window (on
// grid2use) and the paired window on the other grid.
type Plan struct {
	MatchBox, OtherBox raster.Box
	ImfftGSD           float64
}

// Plan implements spec.md's Window Planner algorithm (§4.2 steps 1-9).
func Plan(in Input) (*Plan, error) {
	matchGT, otherGT := in.RefGT, in.TgtGT
	if !in.UseRefGrid {
		matchGT, otherGT = in.TgtGT, in.RefGT
	}

	wpX, wpY, err := resolveWindowPosition(in)
	if err != nil {
		return nil, err
	}

	if (in.RefBadData != nil && in.RefBadData(wpX, wpY)) || (in.TgtBadData != nil && in.TgtBadData(wpX, wpY)) {
		return nil, ErrWindowInBadData
	}

	matchPx, matchPy := matchGT.PixelSize()
	otherPx, otherPy := otherGT.PixelSize()

	matchBox := boxFromCenter(matchGT, wpX, wpY, in.WinSizeCols, in.WinSizeRows, matchPx, matchPy)
	otherBox := boxFromCenter(otherGT, wpX, wpY, in.WinSizeCols, in.WinSizeRows, otherPx, otherPy)

	matchBox, err = clipToOverlap(matchBox, in.Overlap, wpX, wpY)
	if err != nil {
		return nil, err
	}

	matchBox = geometry.SnapToGrid(matchBox, matchGT)
	for !boxWithinOverlap(matchBox, in.Overlap) {
		matchBox = shrinkLargerAxis(matchBox)
		if matchBox.Cols() < minWindowPixels || matchBox.Rows() < minWindowPixels {
			return nil, ErrWindowTooSmall
		}
	}
	if !otherContainsMatch(otherBox, matchBox) {
		otherBox = geometry.SmallestBoxContaining(matchBox.MapBounds(), otherGT)
	}

	deadline := time.Now().Add(shrinkWallClock)
	lastArea := math.Inf(1)
	for !boxWithinOverlap(otherBox, in.Overlap) {
		if time.Now().After(deadline) {
			return nil, ErrShrinkageDeadlock
		}
		matchBox = shrinkLargerAxis(matchBox)
		if matchBox.Cols() < minWindowPixels || matchBox.Rows() < minWindowPixels {
			return nil, ErrWindowTooSmall
		}
		otherBox = geometry.SmallestBoxContaining(matchBox.MapBounds(), otherGT)
		area := otherBox.MapBounds().Area()
		if area >= lastArea {
			return nil, ErrShrinkageDeadlock
		}
		lastArea = area
	}

	if matchBox.Cols() < minWindowPixels || matchBox.Rows() < minWindowPixels ||
		otherBox.Cols() < minWindowPixels || otherBox.Rows() < minWindowPixels {
		return nil, ErrWindowTooSmall
	}

	return &Plan{MatchBox: matchBox, OtherBox: otherBox, ImfftGSD: matchPx}, nil
}

func resolveWindowPosition(in Input) (x, y float64, err error) {
	x, y = in.WinPosX, in.WinPosY
	if !math.IsNaN(x) && !math.IsNaN(y) {
		if !in.Overlap.Contains(x, y) {
			return 0, 0, ErrWindowOutsideOverlap
		}
		return x, y, nil
	}
	cx, cy, ok := in.Overlap.Centroid()
	if ok && in.Overlap.Contains(cx, cy) {
		if math.IsNaN(x) {
			x = cx
		}
		if math.IsNaN(y) {
			y = cy
		}
		return x, y, nil
	}
	rx, ry, ok := in.Overlap.RepresentativePoint()
	if !ok || !in.Overlap.Contains(rx, ry) {
		return 0, 0, ErrWindowOutsideOverlap
	}
	if math.IsNaN(x) {
		x = rx
	}
	if math.IsNaN(y) {
		y = ry
	}
	return x, y, nil
}

func boxFromCenter(gt raster.GeoTransform, wpX, wpY float64, cols, rows int, px, py float64) raster.Box {
	halfW := float64(cols) * px / 2
	halfH := float64(rows) * py / 2
	bounds := raster.Bounds{wpX - halfW, wpY - halfH, wpX + halfW, wpY + halfH}
	c0, r0 := gt.MapToPixel(bounds.MinX(), bounds.MaxY())
	c1, r1 := gt.MapToPixel(bounds.MaxX(), bounds.MinY())
	return raster.Box{
		ColMin: int(math.Round(c0)), RowMin: int(math.Round(r0)),
		ColMax: int(math.Round(c1)), RowMax: int(math.Round(r1)),
		GT: gt,
	}
}

// clipToOverlap intersects box with the overlap polygon. If the overlap
// clips it down, step 4's seed-and-grow search re-derives the box as the
// largest box centered at (wpX, wpY) that still fits inside the trimmed
// overlap, growing one pixel at a time and stepping back on overshoot.
func clipToOverlap(box raster.Box, overlap *geometry.Footprint, wpX, wpY float64) (raster.Box, error) {
	boxFootprint, err := geometry.FromBox(box)
	if err != nil {
		return raster.Box{}, err
	}
	defer boxFootprint.Close()
	within, err := boxFootprint.Within(overlap)
	if err != nil {
		return raster.Box{}, err
	}
	if within {
		return box, nil
	}

	gt := box.GT
	cx, cy := gt.MapToPixel(wpX, wpY)
	seed := raster.Box{ColMin: int(cx), RowMin: int(cy), ColMax: int(cx) + 1, RowMax: int(cy) + 1, GT: gt}
	prev := seed
	for i := 1; i < 100000; i++ {
		grown := geometry.BufferImXY(seed, i, i)
		gf, err := geometry.FromBox(grown)
		if err != nil {
			return raster.Box{}, err
		}
		inside, err := gf.Within(overlap)
		gf.Close()
		if err != nil {
			return raster.Box{}, err
		}
		if !inside {
			return prev, nil
		}
		prev = grown
	}
	return prev, nil
}

func boxWithinOverlap(box raster.Box, overlap *geometry.Footprint) bool {
	f, err := geometry.FromBox(box)
	if err != nil {
		return false
	}
	defer f.Close()
	within, err := f.Within(overlap)
	return err == nil && within
}

func otherContainsMatch(other, match raster.Box) bool {
	mb := match.MapBounds()
	ob := other.MapBounds()
	return ob.MinX() <= mb.MinX() && ob.MinY() <= mb.MinY() && ob.MaxX() >= mb.MaxX() && ob.MaxY() >= mb.MaxY()
}

func shrinkLargerAxis(box raster.Box) raster.Box {
	if box.Cols() >= box.Rows() {
		return geometry.BufferImXY(box, -1, 0)
	}
	return geometry.BufferImXY(box, 0, -1)
}
