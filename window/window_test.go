package window

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoalign/coreg/raster"
)

type fakeRaster struct {
	data [][]float64
}

func (f *fakeRaster) Dims() (int, int) { return len(f.data[0]), len(f.data) }
func (f *fakeRaster) GeoTransform() raster.GeoTransform {
	gt, _ := raster.NewGeoTransform([6]float64{0, 1, 0, 0, 0, -1})
	return gt
}
func (f *fakeRaster) CRS() string                        { return "EPSG:4326" }
func (f *fakeRaster) NoData(band int) (float64, bool)    { return 0, false }
func (f *fakeRaster) BandData(ctx context.Context, band, colOff, rowOff, cols, rows int) ([][]float64, error) {
	out := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		out[r] = make([]float64, cols)
		copy(out[r], f.data[rowOff+r][colOff:colOff+cols])
	}
	return out, nil
}

func checkerboard(n int) [][]float64 {
	out := make([][]float64, n)
	for r := range out {
		out[r] = make([]float64, n)
		for c := range out[r] {
			if (r/4+c/4)%2 == 0 {
				out[r][c] = 255
			}
		}
	}
	return out
}

func TestMaterializeSameGridIdentity(t *testing.T) {
	data := checkerboard(32)
	r := &fakeRaster{data: data}
	gt := r.GeoTransform()
	box := raster.NewBox(gt, 0, 0, 16, 16)

	pair, err := Materialize(context.Background(), r, r, 1, 1, box, box, Cubic)
	require.NoError(t, err)
	assert.Equal(t, 16, pair.Cols)
	assert.Equal(t, 16, pair.Rows)
	for rr := 0; rr < pair.Rows; rr++ {
		for cc := 0; cc < pair.Cols; cc++ {
			assert.Equal(t, pair.Match[rr][cc], pair.Other[rr][cc])
		}
	}
}

func TestMaterializeTrimsOddDimensions(t *testing.T) {
	data := checkerboard(32)
	r := &fakeRaster{data: data}
	gt := r.GeoTransform()
	box := raster.NewBox(gt, 0, 0, 15, 15)

	pair, err := Materialize(context.Background(), r, r, 1, 1, box, box, Cubic)
	require.NoError(t, err)
	assert.Equal(t, 14, pair.Cols)
	assert.Equal(t, 14, pair.Rows)
}

func TestResampleConstantFieldStaysConstant(t *testing.T) {
	n := 16
	data := make([][]float64, n)
	for r := range data {
		data[r] = make([]float64, n)
		for c := range data[r] {
			data[r][c] = 42
		}
	}
	r := &fakeRaster{data: data}
	matchGT, _ := raster.NewGeoTransform([6]float64{0, 1, 0, 0, 0, -1})
	otherGT, _ := raster.NewGeoTransform([6]float64{0, 0.5, 0, 0, 0, -0.5})
	matchBox := raster.NewBox(matchGT, 0, 0, 8, 8)
	otherBox := raster.NewBox(otherGT, 0, 0, 16, 16)

	pair, err := Materialize(context.Background(), r, r, 1, 1, matchBox, otherBox, Cubic)
	require.NoError(t, err)
	for rr := 0; rr < pair.Rows; rr++ {
		for cc := 0; cc < pair.Cols; cc++ {
			assert.InDelta(t, 42.0, pair.Other[rr][cc], 1e-9)
		}
	}
}
