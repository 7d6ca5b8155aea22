package raster

import "math"

// epsilon absorbs floating point noise when snapping map coordinates back
// onto a pixel grid, so that a value that should land exactly on a pixel
// edge (e.g. 10.0000000001) doesn't get rounded to the wrong pixel.
const epsilon = 1e-6

func floorEps(v float64) float64 { return math.Floor(v + epsilon) }
func ceilEps(v float64) float64  { return math.Ceil(v - epsilon) }
