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

// Package rasteradapter implements the coreg/raster.Raster contract on top
// of github.com/airbusgeo/godal, so the core can be driven against any
// format godal's drivers support without depending on GDAL itself.
package rasteradapter

import (
	"context"
	"fmt"

	"github.com/airbusgeo/godal"

	"github.com/geoalign/coreg/raster"
)

// Dataset wraps a *godal.Dataset to satisfy raster.Raster.
type Dataset struct {
	ds *godal.Dataset
}

// Open opens path with godal and wraps the result. Callers must Close the
// returned Dataset when done.
func Open(path string, opts ...godal.OpenOption) (*Dataset, error) {
	ds, err := godal.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("rasteradapter: open %s: %w", path, err)
	}
	return &Dataset{ds: ds}, nil
}

// Wrap adapts an already-open godal Dataset.
func Wrap(ds *godal.Dataset) *Dataset { return &Dataset{ds: ds} }

// Close releases the underlying godal dataset.
func (d *Dataset) Close() error { return d.ds.Close() }

// Dims implements raster.Raster.
func (d *Dataset) Dims() (cols, rows int) {
	st := d.ds.Structure()
	return st.SizeX, st.SizeY
}

// GeoTransform implements raster.Raster.
func (d *Dataset) GeoTransform() raster.GeoTransform {
	gt, err := d.ds.GeoTransform()
	if err != nil {
		// A dataset with no affine transform defaults to the GDAL identity
		// transform; callers that need a real geotransform should have
		// rejected the input before reaching the core (spec.md §3 invariant).
		gt = [6]float64{0, 1, 0, 0, 0, -1}
	}
	out, err := raster.NewGeoTransform(gt)
	if err != nil {
		// Surface the same identity fallback rather than panicking; the
		// rotated/degenerate geotransform is not reported to the caller.
		out, _ = raster.NewGeoTransform([6]float64{0, 1, 0, 0, 0, -1})
	}
	return out
}

// CRS implements raster.Raster, returning the dataset's WKT projection.
func (d *Dataset) CRS() string { return d.ds.Projection() }

// NoData implements raster.Raster.
func (d *Dataset) NoData(band int) (float64, bool) {
	bands := d.ds.Bands()
	if band < 1 || band > len(bands) {
		return 0, false
	}
	return bands[band-1].NoData()
}

// BandData implements raster.Raster.
func (d *Dataset) BandData(ctx context.Context, band, colOff, rowOff, cols, rows int) ([][]float64, error) {
	bands := d.ds.Bands()
	if band < 1 || band > len(bands) {
		return nil, fmt.Errorf("rasteradapter: band %d out of range (1-%d)", band, len(bands))
	}
	flat := make([]float64, cols*rows)
	if err := bands[band-1].Read(colOff, rowOff, flat, cols, rows); err != nil {
		return nil, fmt.Errorf("rasteradapter: read band %d at (%d,%d) %dx%d: %w", band, colOff, rowOff, cols, rows, err)
	}
	out := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		out[r] = flat[r*cols : (r+1)*cols]
	}
	return out, nil
}
