package coreg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "InsufficientOverlap", InsufficientOverlap.String())
	assert.Equal(t, "FFTFallback", FFTFallback.String())
	assert.Contains(t, Kind(999).String(), "Kind(999)")
}

func TestKindFatal(t *testing.T) {
	assert.False(t, FFTFallback.Fatal())
	for _, k := range []Kind{InsufficientOverlap, UnequalProjections, WindowOutsideOverlap,
		WindowInBadData, WindowTooSmall, ShrinkageDeadlock, NoMatchFound, ShiftTooLarge, WindowMismatch} {
		assert.True(t, k.Fatal(), k.String())
	}
}

func TestErrorUnwrapAndMessage(t *testing.T) {
	cause := errors.New("boom")
	err := newError(NoMatchFound, cause, "window at %d,%d", 4, 5)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "NoMatchFound")
	assert.Contains(t, err.Error(), "window at 4,5")
	assert.Contains(t, err.Error(), "boom")
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := newError(WindowTooSmall, nil, "too small")
	assert.Equal(t, "WindowTooSmall: too small", err.Error())
	assert.Nil(t, err.Unwrap())
}
