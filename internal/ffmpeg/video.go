package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"math/big"
)

// FrameOptions configures raw frame decoding
type FrameOptions struct {
	Stream   int
	Timebase *big.Rat
	// Width and Height scale the output; zero keeps the source size.
	Width  int
	Height int
	// Blur applies a gaussian blur with this sigma, in output pixels, when
	// positive.
	Blur float64
	// PixFmt is the raw pixel format, e.g. "gray" or "rgb24".
	PixFmt string
}

// BytesPerPixel returns the size of one pixel in the given raw format
func BytesPerPixel(pixFmt string) int {
	switch pixFmt {
	case "rgb24", "bgr24":
		return 3
	case "rgba", "bgra":
		return 4
	}
	return 1
}

// FrameFilter builds the filter chain that resamples a stream to the
// timebase and converts it to the requested raw format.
func FrameFilter(opts FrameOptions) string {
	fb := NewFilterBuilder().
		FrameRate(opts.Timebase).
		Scale(opts.Width, opts.Height).
		Format(opts.PixFmt)
	if opts.Blur > 0 {
		fb.GaussianBlur(opts.Blur)
	}
	return fb.Build()
}

// ReadFrames decodes one video stream to fixed-size raw frames and passes
// the byte stream to consume.
func (e *Executor) ReadFrames(ctx context.Context, input string, opts FrameOptions, consume func(io.Reader) error) error {
	if opts.PixFmt == "" {
		opts.PixFmt = "gray"
	}

	e.logger.Info().
		Str("input", input).
		Int("stream", opts.Stream).
		Int("width", opts.Width).
		Int("height", opts.Height).
		Str("pix_fmt", opts.PixFmt).
		Msg("decoding video frames")

	args := frameArgs(input, opts)

	if err := e.Stream(ctx, args, consume); err != nil {
		return fmt.Errorf("video decode failed: %w", err)
	}
	return nil
}

// frameArgs maps the video stream by its position among streams that are
// not attached pictures, which is how ProbeMedia numbers them.
func frameArgs(input string, opts FrameOptions) []string {
	return []string{
		"-i", input,
		"-map", fmt.Sprintf("0:V:%d", opts.Stream),
		"-an", "-sn",
		"-vf", FrameFilter(opts),
		"-f", "rawvideo",
		"-pix_fmt", opts.PixFmt,
		"pipe:1",
	}
}
