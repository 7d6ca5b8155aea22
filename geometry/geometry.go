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

// Package geometry implements the polygon algebra the window planner needs:
// overlap computation, grid snapping, smallest-enclosing-box, pixel
// buffering and bearing. Boolean polygon ops are delegated to godal's own
// OGR/GEOS-backed Geometry type; axis-aligned rectangle math (the only shape
// a window ever takes) is done directly against raster.Box/raster.Bounds.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"

	"github.com/geoalign/coreg/raster"
)

// ErrEmptyOverlap is returned by Overlap when the two footprints do not
// intersect at all.
var ErrEmptyOverlap = errors.New("geometry: overlap polygon is empty")

// ErrOverlapTooSmall is returned by Overlap when the intersection polygon
// covers fewer than 16x16 pixels at the finer of the two input resolutions.
var ErrOverlapTooSmall = errors.New("geometry: overlap area is smaller than 16x16 pixels at the finer resolution")

// minOverlapPixels is the 16x16-pixel floor from spec.md's Geometry Kernel
// contract for the overlap operation.
const minOverlapPixels = 16

// Footprint is a closed polygon together with the map-coordinate envelope
// that bounds it; most callers only ever need rectangular footprints
// (raster extents, window boxes), for which the envelope alone is enough,
// but Overlap's result and any caller-supplied footprint_poly_ref/tgt may be
// arbitrary polygons, so the godal.Geometry handle is kept alongside.
type Footprint struct {
	geom   *godal.Geometry
	bounds raster.Bounds
}

// FromBounds builds a rectangular Footprint from a map-coordinate envelope.
func FromBounds(b raster.Bounds) (*Footprint, error) {
	return FromWKT(b.WKT(), b)
}

// FromWKT builds a Footprint from an arbitrary WKT polygon. bounds, when
// given, is the caller's best-known envelope of the polygon and is used as
// is; omit it to have the envelope computed from the geometry.
func FromWKT(wkt string, bounds ...raster.Bounds) (*Footprint, error) {
	g, err := godal.NewGeometryFromWKT(wkt, nil)
	if err != nil {
		return nil, fmt.Errorf("geometry: parse polygon: %w", err)
	}
	var b raster.Bounds
	if len(bounds) > 0 {
		b = bounds[0]
	} else {
		env, err := g.Bounds()
		if err != nil {
			return nil, fmt.Errorf("geometry: compute polygon bounds: %w", err)
		}
		b = raster.Bounds(env)
	}
	return &Footprint{geom: g, bounds: b}, nil
}

// FromBox builds a Footprint from a pixel-aligned raster.Box.
func FromBox(box raster.Box) (*Footprint, error) {
	return FromBounds(box.MapBounds())
}

// Close releases the underlying OGR geometry handle.
func (f *Footprint) Close() {
	if f != nil && f.geom != nil {
		f.geom.Close()
	}
}

// Bounds returns the footprint's map-coordinate envelope.
func (f *Footprint) Bounds() raster.Bounds { return f.bounds }

// Area returns the polygon's map-unit area (not just its envelope's area).
func (f *Footprint) Area() float64 { return f.geom.Area() }

// Contains reports whether the point (x,y) lies within the polygon.
func (f *Footprint) Contains(x, y float64) bool {
	pt, err := godal.NewGeometryFromWKT(fmt.Sprintf("POINT(%s)", coordPair(x, y)), nil)
	if err != nil {
		return false
	}
	defer pt.Close()
	return f.geom.Contains(pt)
}

// Within reports whether f lies entirely within other.
func (f *Footprint) Within(other *Footprint) (bool, error) {
	ok, err := other.geom.Intersects(f.geom)
	if err != nil {
		return false, fmt.Errorf("geometry: within check: %w", err)
	}
	if !ok {
		return false, nil
	}
	inter, err := f.geom.Intersection(other.geom)
	if err != nil {
		return false, fmt.Errorf("geometry: within check: %w", err)
	}
	defer inter.Close()
	return math.Abs(inter.Area()-f.geom.Area()) < 1e-9*math.Max(1, f.geom.Area()), nil
}

// WKT renders the footprint's polygon.
func (f *Footprint) WKT() (string, error) { return f.geom.WKT() }

// Overlap computes the intersection of a and b and validates it against
// spec.md's 16x16-pixel floor, measured at finerPixelSize (the smaller of
// the two inputs' pixel sizes, i.e. the higher resolution).
func Overlap(a, b *Footprint, finerPixelSize float64) (poly *Footprint, area, percentage float64, err error) {
	inter, err := a.geom.Intersection(b.geom)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("geometry: overlap: %w", err)
	}
	if inter.Empty() || inter.Area() <= 0 {
		inter.Close()
		return nil, 0, 0, ErrEmptyOverlap
	}
	area = inter.Area()
	minPixels := float64(minOverlapPixels*minOverlapPixels) * finerPixelSize * finerPixelSize
	if area < minPixels {
		inter.Close()
		return nil, area, 0, ErrOverlapTooSmall
	}
	smaller := math.Min(a.Area(), b.Area())
	if smaller > 0 {
		percentage = area / smaller * 100
	}
	env, err := inter.Bounds()
	if err != nil {
		inter.Close()
		return nil, 0, 0, fmt.Errorf("geometry: overlap bounds: %w", err)
	}
	return &Footprint{geom: inter, bounds: raster.Bounds(env)}, area, percentage, nil
}

// SnapToGrid shifts box so its north-west corner coincides with a pixel
// edge of gt, rounding outward; every window in this engine is rectangular
// and axis-aligned, so the snap is pure pixel/map arithmetic (raster.Box's
// own Snapped) rather than a polygon operation.
func SnapToGrid(box raster.Box, gt raster.GeoTransform) raster.Box {
	return box.Snapped(gt)
}

// SmallestBoxContaining returns the smallest pixel-aligned box on gt whose
// map envelope contains boxMap. For axis-aligned rectangles this is the same
// outward-rounding arithmetic as SnapToGrid; it is named separately because
// the two calls serve distinct steps of the window planner.
func SmallestBoxContaining(boxMap raster.Bounds, gt raster.GeoTransform) raster.Box {
	c0, r0 := gt.MapToPixel(boxMap.MinX(), boxMap.MaxY())
	c1, r1 := gt.MapToPixel(boxMap.MaxX(), boxMap.MinY())
	return raster.Box{
		ColMin: int(math.Floor(c0 + 1e-6)), RowMin: int(math.Floor(r0 + 1e-6)),
		ColMax: int(math.Ceil(c1 - 1e-6)), RowMax: int(math.Ceil(r1 - 1e-6)),
		GT: gt,
	}
}

// BufferImXY grows (positive) or shrinks (negative) box by dx, dy pixels.
func BufferImXY(box raster.Box, dx, dy int) raster.Box { return box.BufferImXY(dx, dy) }

// AngleToNorth returns the bearing of vector (dx, dy) in degrees clockwise
// from north, in [0, 360).
func AngleToNorth(dx, dy float64) float64 {
	// atan2 measures counter-clockwise from east; convert to clockwise from
	// north and normalize into [0, 360).
	deg := 90 - math.Atan2(dy, dx)*180/math.Pi
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Centroid returns the polygon's area-weighted centroid (the shoelace
// formula), and whether the polygon had enough vertices to compute one.
func (f *Footprint) Centroid() (x, y float64, ok bool) {
	ring, err := f.exteriorRing()
	if err != nil || len(ring) < 3 {
		return 0, 0, false
	}
	var a, cx, cy float64
	for i := 0; i < len(ring); i++ {
		p0, p1 := ring[i], ring[(i+1)%len(ring)]
		cross := p0[0]*p1[1] - p1[0]*p0[1]
		a += cross
		cx += (p0[0] + p1[0]) * cross
		cy += (p0[1] + p1[1]) * cross
	}
	a /= 2
	if a == 0 {
		return 0, 0, false
	}
	cx /= 6 * a
	cy /= 6 * a
	return cx, cy, true
}

// RepresentativePoint returns a fallback point for when the centroid itself
// falls outside a non-convex overlap polygon. It is the ring vertex closest
// to the centroid, nudged 1% of the way toward the polygon's own bounds
// midpoint. The result is not guaranteed to lie inside a non-convex
// polygon; callers check it with Contains.
func (f *Footprint) RepresentativePoint() (x, y float64, ok bool) {
	ring, err := f.exteriorRing()
	if err != nil || len(ring) == 0 {
		return 0, 0, false
	}
	cx, cy, _ := f.Centroid()
	best := ring[0]
	bestDist := math.MaxFloat64
	for _, p := range ring {
		d := (p[0]-cx)*(p[0]-cx) + (p[1]-cy)*(p[1]-cy)
		if d < bestDist {
			bestDist, best = d, p
		}
	}
	const nudge = 0.01
	mx := (f.bounds.MinX() + f.bounds.MaxX()) / 2
	my := (f.bounds.MinY() + f.bounds.MaxY()) / 2
	return best[0] + (mx-best[0])*nudge, best[1] + (my-best[1])*nudge, true
}

func (f *Footprint) exteriorRing() ([]orb.Point, error) {
	wkt, err := f.geom.WKT()
	if err != nil {
		return nil, err
	}
	return parseExteriorRing(wkt)
}

func coordPair(x, y float64) string {
	return fmt.Sprintf("%g %g", x, y)
}
