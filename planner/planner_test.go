package planner

import (
	"math"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoalign/coreg/geometry"
	"github.com/geoalign/coreg/raster"
)

func init() {
	godal.RegisterAll()
}

func mustGT(t *testing.T, ox, oy, px, py float64) raster.GeoTransform {
	t.Helper()
	g, err := raster.NewGeoTransform([6]float64{ox, px, 0, oy, 0, -py})
	require.NoError(t, err)
	return g
}

func TestPlanCentersOnOverlapWhenPositionUnset(t *testing.T) {
	gt := mustGT(t, 0, 1000, 1, 1)
	overlap, err := geometry.FromBounds(raster.Bounds{100, 400, 900, 900})
	require.NoError(t, err)

	plan, err := Plan(Input{
		RefGT: gt, TgtGT: gt,
		RefCols: 1000, RefRows: 1000, TgtCols: 1000, TgtRows: 1000,
		Overlap:     overlap,
		WinPosX:     math.NaN(),
		WinPosY:     math.NaN(),
		WinSizeCols: 64, WinSizeRows: 64,
		UseRefGrid: true,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, plan.MatchBox.Cols(), minWindowPixels)
	assert.GreaterOrEqual(t, plan.MatchBox.Rows(), minWindowPixels)
	assert.True(t, otherContainsMatch(plan.OtherBox, plan.MatchBox))
	mb := plan.MatchBox.MapBounds()
	assert.InDelta(t, 500.0, (mb.MinX()+mb.MaxX())/2, 1)
	assert.InDelta(t, 650.0, (mb.MinY()+mb.MaxY())/2, 1)
}

func TestPlanRejectsPositionOutsideOverlap(t *testing.T) {
	gt := mustGT(t, 0, 1000, 1, 1)
	overlap, err := geometry.FromBounds(raster.Bounds{0, 900, 100, 1000})
	require.NoError(t, err)

	_, err = Plan(Input{
		RefGT: gt, TgtGT: gt,
		RefCols: 1000, RefRows: 1000, TgtCols: 1000, TgtRows: 1000,
		Overlap:     overlap,
		WinPosX:     500,
		WinPosY:     500,
		WinSizeCols: 64, WinSizeRows: 64,
		UseRefGrid: true,
	})
	assert.ErrorIs(t, err, ErrWindowOutsideOverlap)
}

func TestPlanRejectsBadDataPosition(t *testing.T) {
	gt := mustGT(t, 0, 1000, 1, 1)
	overlap, err := geometry.FromBounds(raster.Bounds{0, 0, 1000, 1000})
	require.NoError(t, err)

	_, err = Plan(Input{
		RefGT: gt, TgtGT: gt,
		RefCols: 1000, RefRows: 1000, TgtCols: 1000, TgtRows: 1000,
		Overlap:     overlap,
		WinPosX:     500,
		WinPosY:     500,
		WinSizeCols: 64, WinSizeRows: 64,
		UseRefGrid: true,
		RefBadData: func(x, y float64) bool { return true },
	})
	assert.ErrorIs(t, err, ErrWindowInBadData)
}

func TestPlanTooSmallOverlapFails(t *testing.T) {
	gt := mustGT(t, 0, 1000, 1, 1)
	overlap, err := geometry.FromBounds(raster.Bounds{495, 495, 505, 505})
	require.NoError(t, err)

	_, err = Plan(Input{
		RefGT: gt, TgtGT: gt,
		RefCols: 1000, RefRows: 1000, TgtCols: 1000, TgtRows: 1000,
		Overlap:     overlap,
		WinPosX:     500,
		WinPosY:     500,
		WinSizeCols: 512, WinSizeRows: 512,
		UseRefGrid: true,
	})
	assert.ErrorIs(t, err, ErrWindowTooSmall)
}
