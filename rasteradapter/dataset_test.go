package rasteradapter

import (
	"context"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	godal.RegisterAll()
}

func newMemDataset(t *testing.T, cols, rows int, data []byte) *godal.Dataset {
	t.Helper()
	ds, err := godal.Create(godal.Memory, "", 1, godal.Byte, cols, rows)
	require.NoError(t, err)
	require.NoError(t, ds.SetGeoTransform([6]float64{100, 2, 0, 200, 0, -2}))
	require.NoError(t, ds.SetProjection(`GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]]]`))
	if data != nil {
		require.NoError(t, ds.Bands()[0].Write(0, 0, data, cols, rows))
	}
	return ds
}

func TestDatasetDimsAndGeoTransform(t *testing.T) {
	ds := newMemDataset(t, 10, 6, nil)
	defer ds.Close()
	d := Wrap(ds)

	cols, rows := d.Dims()
	assert.Equal(t, 10, cols)
	assert.Equal(t, 6, rows)

	gt := d.GeoTransform()
	px, py := gt.PixelSize()
	assert.Equal(t, 2.0, px)
	assert.Equal(t, 2.0, py)
	x, y := gt.Origin()
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 200.0, y)
}

func TestDatasetCRS(t *testing.T) {
	ds := newMemDataset(t, 4, 4, nil)
	defer ds.Close()
	d := Wrap(ds)
	assert.Contains(t, d.CRS(), "WGS 84")
}

func TestDatasetNoData(t *testing.T) {
	ds := newMemDataset(t, 4, 4, nil)
	defer ds.Close()
	require.NoError(t, ds.Bands()[0].SetNoData(255))
	d := Wrap(ds)

	v, ok := d.NoData(1)
	assert.True(t, ok)
	assert.Equal(t, 255.0, v)

	_, ok = d.NoData(2)
	assert.False(t, ok)
}

func TestDatasetBandData(t *testing.T) {
	cols, rows := 4, 3
	data := make([]byte, cols*rows)
	for i := range data {
		data[i] = byte(i)
	}
	ds := newMemDataset(t, cols, rows, data)
	defer ds.Close()
	d := Wrap(ds)

	got, err := d.BandData(context.Background(), 1, 0, 0, cols, rows)
	require.NoError(t, err)
	require.Len(t, got, rows)
	for r := 0; r < rows; r++ {
		require.Len(t, got[r], cols)
		for c := 0; c < cols; c++ {
			assert.Equal(t, float64(r*cols+c), got[r][c])
		}
	}
}

func TestDatasetBandDataOutOfRange(t *testing.T) {
	ds := newMemDataset(t, 4, 4, nil)
	defer ds.Close()
	d := Wrap(ds)

	_, err := d.BandData(context.Background(), 2, 0, 0, 2, 2)
	assert.Error(t, err)
}
