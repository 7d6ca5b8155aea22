package raster

import (
	"math"
	"strconv"
)

// Bounds is a map-coordinate envelope in the order minx, miny, maxx, maxy.
// Adapted from godal's Bounds type (airbusgeo/godal bounds.go); generalized
// here with pixel-area helpers used by the geometry kernel's overlap checks.
type Bounds [4]float64

func (b Bounds) MinX() float64 { return b[0] }
func (b Bounds) MinY() float64 { return b[1] }
func (b Bounds) MaxX() float64 { return b[2] }
func (b Bounds) MaxY() float64 { return b[3] }

// Width and Height return the envelope's map-unit extents.
func (b Bounds) Width() float64  { return b[2] - b[0] }
func (b Bounds) Height() float64 { return b[3] - b[1] }

// Area returns the envelope's map-unit area; zero for a degenerate envelope.
func (b Bounds) Area() float64 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Union returns the union of these bounds with other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		math.Min(b.MinX(), other.MinX()),
		math.Min(b.MinY(), other.MinY()),
		math.Max(b.MaxX(), other.MaxX()),
		math.Max(b.MaxY(), other.MaxY()),
	}
}

// Intersect returns the intersection envelope of b and other, and whether
// that intersection is non-empty.
func (b Bounds) Intersect(other Bounds) (Bounds, bool) {
	out := Bounds{
		math.Max(b.MinX(), other.MinX()),
		math.Max(b.MinY(), other.MinY()),
		math.Min(b.MaxX(), other.MaxX()),
		math.Min(b.MaxY(), other.MaxY()),
	}
	return out, out.Width() > 0 && out.Height() > 0
}

// Contains reports whether the point (x,y) lies within b, inclusive of edges.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX() && x <= b.MaxX() && y >= b.MinY() && y <= b.MaxY()
}

// WKT renders the envelope as a WKT POLYGON, used to hand the rectangle to
// a geometry engine for boolean operations.
func (b Bounds) WKT() string {
	return "POLYGON((" +
		fmtCoord(b.MinX(), b.MinY()) + "," +
		fmtCoord(b.MaxX(), b.MinY()) + "," +
		fmtCoord(b.MaxX(), b.MaxY()) + "," +
		fmtCoord(b.MinX(), b.MaxY()) + "," +
		fmtCoord(b.MinX(), b.MinY()) + "))"
}

func fmtCoord(x, y float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64) + " " + strconv.FormatFloat(y, 'f', -1, 64)
}
