package raster

import "context"

// Raster is the read-only contract exposed by the external raster-access
// collaborator (spec "Raster View" / §6 raster consumer contract). The core
// never opens files itself; it only ever holds a Raster handle produced by
// that collaborator (e.g. package rasteradapter, which implements this
// contract over github.com/airbusgeo/godal).
type Raster interface {
	// Dims returns the full raster's pixel dimensions.
	Dims() (cols, rows int)
	// GeoTransform returns the raster's affine geotransform.
	GeoTransform() GeoTransform
	// CRS returns an opaque but comparable coordinate reference system
	// identifier (typically WKT or an authority code string). Two rasters
	// must report equal CRS strings to be co-registered.
	CRS() string
	// NoData returns the band's nodata value, if any.
	NoData(band int) (value float64, ok bool)
	// BandData reads a rectangular subset of one band as row-major float64
	// data, rows then cols. band is 1-based, matching spec.md's r_b4match /
	// s_b4match convention.
	BandData(ctx context.Context, band, colOff, rowOff, cols, rows int) ([][]float64, error)
}

// Box is a pixel-aligned rectangle tied to a specific GeoTransform. It is
// the single owned representation described in spec.md's design notes
// ("Cyclic views in Box"): ColMin/RowMin/ColMax/RowMax and GT are the only
// stored state; every other view (map bounds, pixel dims, WKT polygon) is a
// pure function of them, so there is nothing to keep in sync.
type Box struct {
	ColMin, RowMin, ColMax, RowMax int
	GT                             GeoTransform
}

// NewBox builds a Box from a pixel origin and size.
func NewBox(gt GeoTransform, colOff, rowOff, cols, rows int) Box {
	return Box{ColMin: colOff, RowMin: rowOff, ColMax: colOff + cols, RowMax: rowOff + rows, GT: gt}
}

// Cols and Rows return the box's pixel dimensions.
func (b Box) Cols() int { return b.ColMax - b.ColMin }
func (b Box) Rows() int { return b.RowMax - b.RowMin }

// MapBounds returns the box's envelope in map coordinates.
func (b Box) MapBounds() Bounds {
	x0, y0 := b.GT.PixelToMap(float64(b.ColMin), float64(b.RowMin))
	x1, y1 := b.GT.PixelToMap(float64(b.ColMax), float64(b.RowMax))
	return Bounds{
		minF(x0, x1), minF(y0, y1),
		maxF(x0, x1), maxF(y0, y1),
	}
}

// WKT renders the box's map-coordinate rectangle as a WKT polygon, for
// handing to a geometry engine.
func (b Box) WKT() string { return b.MapBounds().WKT() }

// Contains reports whether other lies entirely within b, in pixel space on
// a shared grid (same GeoTransform).
func (b Box) Contains(other Box) bool {
	return other.ColMin >= b.ColMin && other.RowMin >= b.RowMin &&
		other.ColMax <= b.ColMax && other.RowMax <= b.RowMax
}

// BufferImXY grows (positive) or shrinks (negative) the box by dx, dy
// pixels on each respective axis, symmetrically on both sides.
func (b Box) BufferImXY(dx, dy int) Box {
	out := b
	out.ColMin -= dx
	out.ColMax += dx
	out.RowMin -= dy
	out.RowMax += dy
	return out
}

// Snapped returns the box moved so that its pixel origin is an integer pixel
// position on gt's grid (the box already lives on its own gt's grid by
// construction; Snapped re-expresses it, rounding outward, on a different
// raster's grid). corner is currently always "NW" per spec.md §4.1.
func (b Box) Snapped(gt GeoTransform) Box {
	mb := b.MapBounds()
	c0, r0 := gt.MapToPixel(mb.MinX(), mb.MaxY())
	c1, r1 := gt.MapToPixel(mb.MaxX(), mb.MinY())
	return Box{
		ColMin: int(floorEps(c0)), RowMin: int(floorEps(r0)),
		ColMax: int(ceilEps(c1)), RowMax: int(ceilEps(r1)),
		GT: gt,
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
