package coreg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroValueReportHasNilShiftFields(t *testing.T) {
	var r ShiftReport
	assert.False(t, r.Success)
	assert.Nil(t, r.ShiftPxX)
	assert.Nil(t, r.ShiftPxY)
	assert.Nil(t, r.ShiftMapX)
	assert.Nil(t, r.ShiftMapY)
	assert.Nil(t, r.VecLengthMap)
	assert.Nil(t, r.VecAngleDeg)
	assert.Nil(t, r.Reliability)
	assert.Nil(t, r.SSIMBefore)
	assert.Nil(t, r.SSIMAfter)
	assert.Nil(t, r.SSIMImproved)
	assert.Empty(t, r.Errors)
}

func TestTopLeftAnchorsMatchesPixelToMap(t *testing.T) {
	gt, err := newTestGT(10, 20, 2, 2)
	assert.NoError(t, err)
	anchors := topLeftAnchors(gt)
	x00, y00 := gt.PixelToMap(0, 0)
	assert.Equal(t, [2]float64{x00, y00}, anchors[0][0])
	x11, y11 := gt.PixelToMap(1, 1)
	assert.Equal(t, [2]float64{x11, y11}, anchors[1][1])
}
