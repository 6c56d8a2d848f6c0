package lang

import (
	"context"
	"math/big"

	"github.com/kikiluvv/autocut/internal/selector"
)

// VideoStream describes the geometry of one video stream
type VideoStream struct {
	Width  int
	Height int
}

// Source is what the host knows about the input before evaluation.
type Source struct {
	// Timebase is the frame rate, bound to "timebase". Nil means 30/1.
	Timebase     *big.Rat
	TotalFrames  int
	AudioStreams int
	Videos       []VideoStream
	// Strict makes a missing stream fatal instead of keeping every frame.
	Strict bool
}

// LevelProvider computes raw per-frame magnitudes for the analysed selector
// methods. Each call returns one level per frame.
type LevelProvider interface {
	AudioLevels(ctx context.Context, stream int) ([]float64, error)
	MotionLevels(ctx context.Context, opts selector.MotionOptions) ([]float64, error)
	PixeldiffLevels(ctx context.Context, stream int) ([]float64, error)
	RandomLevels(ctx context.Context, seed int64) ([]float64, error)
}
