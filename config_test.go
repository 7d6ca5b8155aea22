package coreg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoalign/coreg/window"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1, cfg.RefBand)
	assert.Equal(t, 1, cfg.TgtBand)
	assert.True(t, math.IsNaN(cfg.WinPosX))
	assert.True(t, math.IsNaN(cfg.WinPosY))
	assert.Equal(t, 256, cfg.WinCols)
	assert.Equal(t, 256, cfg.WinRows)
	assert.Equal(t, 5, cfg.MaxIter)
	assert.Equal(t, 5.0, cfg.MaxShift)
	assert.Equal(t, window.Cubic, cfg.ResampAlgCalc)
	assert.Equal(t, window.Cubic, cfg.ResampAlgDeshift)
	assert.True(t, cfg.CalcCorners)
	assert.True(t, cfg.BinaryWS)
	assert.True(t, cfg.ForceQuadraticWin)
	assert.False(t, cfg.IgnoreErrors)
	assert.Nil(t, cfg.RefNoData)
	assert.Nil(t, cfg.TgtNoData)
	assert.False(t, cfg.RunSSIM)
}
