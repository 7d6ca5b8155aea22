package phasecorr

import (
	"errors"
	"math"
)

// ErrWindowTooSmall is returned whenever the chosen working size (either
// the initial SCPS size or one recomputed mid-validation) collapses to
// zero, empty, or below the 3x3 floor the validation loop requires.
var ErrWindowTooSmall = errors.New("phasecorr: window shrank below the usable SCPS size")

// ErrNoMatchFound is returned when the integer-shift validation loop
// exhausts MaxIter without converging to a zero residual shift.
var ErrNoMatchFound = errors.New("phasecorr: validation loop did not converge")

// ErrShiftTooLarge is returned when the recovered total shift exceeds
// MaxShift, measured in reference-pixel units.
var ErrShiftTooLarge = errors.New("phasecorr: recovered shift exceeds the configured limit")

// Config holds the Engine's tunable parameters, mirroring spec.md §6's
// CLI-level options that bear on the phase-correlation math.
type Config struct {
	BinaryWS          bool
	ForceQuadraticWin bool
	MaxIter           int
	MaxShift          float64 // in reference-pixel units
	ImfftGSD          float64 // pixel size of grid2use
	TargetPixelSize   float64 // pixel size of the other grid
}

// Engine runs the shifted cross-power spectrum algorithm over a single
// run's pair of windows. The FFT-backend fallback flag is scoped to the
// Engine instance, not process-wide, per spec.md's design notes.
type Engine struct {
	cfg      Config
	fellBack bool
}

// NewEngine builds an Engine for a single run.
func NewEngine(cfg Config) *Engine { return &Engine{cfg: cfg} }

// FellBack reports whether this run's FFT backend fell back to the direct
// DFT after observing all-zero output from the accelerated backend.
func (e *Engine) FellBack() bool { return e.fellBack }

// Result is the outcome of a full phase-correlation run: the recovered
// shift in reference-pixel units (both FFT-pixel and target-pixel views),
// the SCPS reliability score, and whether the FFT fallback engaged.
type Result struct {
	DxPixel, DyPixel   float64 // FFT-grid pixel units
	DxTarget, DyTarget float64 // target-image pixel units
	Reliability        float64
	UsedFFTFallback    bool
}

// Run computes the SCPS between a and b (equal-shape real arrays), runs the
// integer-shift validation loop, refines to sub-pixel precision, computes
// reliability, and checks the result against MaxShift.
func (e *Engine) Run(a, b [][]float64) (*Result, error) {
	workA, workB, err := e.sizeAndCrop(a, b)
	if err != nil {
		return nil, err
	}

	intDx, intDy, scps, err := e.validationLoop(workA, workB)
	if err != nil {
		return nil, err
	}

	subDx, subDy, reliability := subpixelRefine(scps)

	// The SCPS peak sits at minus the displacement of b relative to a, so
	// the sign is flipped to report how far b's content moved.
	totalDx := -(float64(intDx) + subDx)
	totalDy := -(float64(intDy) + subDy)

	scale := 1.0
	if e.cfg.TargetPixelSize != 0 {
		scale = e.cfg.ImfftGSD / e.cfg.TargetPixelSize
	}

	res := &Result{
		DxPixel: totalDx, DyPixel: totalDy,
		DxTarget: totalDx * scale, DyTarget: totalDy * scale,
		Reliability:     reliability,
		UsedFFTFallback: e.fellBack,
	}

	if math.Max(math.Abs(totalDx), math.Abs(totalDy)) > e.cfg.MaxShift {
		return res, ErrShiftTooLarge
	}
	return res, nil
}

// sizeAndCrop implements §4.4.1's sizing step: shrink each axis to the
// largest power of two <= its length when BinaryWS is set; when
// ForceQuadraticWin is set, collapse both axes to the smaller of the two so
// the working window is literally square. a and b arrive with identical
// shape (the materializer guarantees this), so only one size needs
// computing before both are center-cropped to it.
func (e *Engine) sizeAndCrop(a, b [][]float64) ([][]float64, [][]float64, error) {
	rows, cols := len(a), cols(a)
	if e.cfg.BinaryWS {
		rows, cols = largestPow2(rows), largestPow2(cols)
	}
	if e.cfg.ForceQuadraticWin {
		side := minInt(rows, cols)
		rows, cols = side, side
	}
	if rows <= 0 || cols <= 0 {
		return nil, nil, ErrWindowTooSmall
	}
	return centerCrop(a, rows, cols), centerCrop(b, rows, cols), nil
}

func cols(a [][]float64) int {
	if len(a) == 0 {
		return 0
	}
	return len(a[0])
}

func largestPow2(n int) int {
	if n <= 0 {
		return 0
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func centerCrop(a [][]float64, rows, cols int) [][]float64 {
	r0 := (len(a) - rows) / 2
	c0 := (len(a[0]) - cols) / 2
	out := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		out[r] = append([]float64(nil), a[r0+r][c0:c0+cols]...)
	}
	return out
}
