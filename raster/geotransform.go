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

// Package raster holds the value types shared by every collaborator that
// reads or positions pixels: the affine GeoTransform, pixel-aligned Box, and
// the read-only Raster contract implemented by the raster-access
// collaborator (see coreg's package doc for the division of responsibility).
package raster

import "fmt"

// GeoTransform is the six-coefficient affine mapping from pixel (col,row) to
// map (x,y): x = ox + col*px, y = oy - row*py. Only north-up, axis-aligned
// transforms are supported (px, py > 0, no rotation terms); rotated
// transforms (gt[2] or gt[4] != 0) are rejected by NewGeoTransform.
type GeoTransform [6]float64

// NewGeoTransform validates and wraps the six GDAL-style geotransform
// coefficients (ox, px, rot1, oy, rot2, negPy).
func NewGeoTransform(gt [6]float64) (GeoTransform, error) {
	if gt[2] != 0 || gt[4] != 0 {
		return GeoTransform{}, fmt.Errorf("raster: rotated geotransform %v is not supported", gt)
	}
	if gt[1] <= 0 || gt[5] >= 0 {
		return GeoTransform{}, fmt.Errorf("raster: geotransform %v is not north-up with positive pixel size", gt)
	}
	return GeoTransform(gt), nil
}

// Origin returns the map coordinates of the top-left pixel corner.
func (gt GeoTransform) Origin() (x, y float64) { return gt[0], gt[3] }

// PixelSize returns the (positive) pixel width and height in map units.
func (gt GeoTransform) PixelSize() (px, py float64) { return gt[1], -gt[5] }

// PixelToMap converts a fractional pixel coordinate to a map coordinate.
func (gt GeoTransform) PixelToMap(col, row float64) (x, y float64) {
	return gt[0] + col*gt[1], gt[3] + row*gt[5]
}

// MapToPixel converts a map coordinate to a fractional pixel coordinate.
func (gt GeoTransform) MapToPixel(x, y float64) (col, row float64) {
	return (x - gt[0]) / gt[1], (y - gt[3]) / gt[5]
}

// Shifted returns the geotransform of the sub-window starting at pixel
// (colOff, rowOff) of the raster gt describes.
func (gt GeoTransform) Shifted(colOff, rowOff int) GeoTransform {
	x, y := gt.PixelToMap(float64(colOff), float64(rowOff))
	out := gt
	out[0], out[3] = x, y
	return out
}
