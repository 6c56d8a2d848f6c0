package ffmpeg

import (
	"context"
	"fmt"
	"time"

	"github.com/kikiluvv/autocut/pkg/util"
)

// ClipOptions defines clip extraction parameters
type ClipOptions struct {
	Start        time.Duration
	End          time.Duration
	Output       string
	CopyCodec    bool // If true, use -c copy for fast extraction
	VideoCodec   string
	AudioCodec   string
	CRF          int // Quality (0-51, lower = better)
	Preset       string
	ProgressFunc ProgressFunc
}

// ExtractClip cuts a segment from a media file
func (e *Executor) ExtractClip(ctx context.Context, input string, opts ClipOptions) error {
	duration := opts.End - opts.Start
	if duration <= 0 {
		return fmt.Errorf("invalid clip duration: end must be after start")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}

	e.logger.Debug().
		Str("input", input).
		Str("output", opts.Output).
		Dur("start", opts.Start).
		Dur("duration", duration).
		Bool("copy_codec", opts.CopyCodec).
		Msg("extracting clip")

	args := []string{
		"-i", input,
		"-ss", util.FormatDuration(opts.Start),
		"-t", util.FormatDuration(duration),
	}
	args = append(args, encodeArgs(!opts.CopyCodec, opts.VideoCodec, opts.AudioCodec, opts.CRF, opts.Preset)...)
	args = append(args, opts.Output)

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("clip extraction")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("clip extraction failed: %w", err)
	}
	return nil
}

// encodeArgs returns codec arguments, or stream copy when reencode is false
func encodeArgs(reencode bool, videoCodec, audioCodec string, crf int, preset string) []string {
	if !reencode {
		return []string{"-c", "copy"}
	}
	if videoCodec == "" {
		videoCodec = DefaultVideoCodec
	}
	if audioCodec == "" {
		audioCodec = DefaultAudioCodec
	}
	if crf == 0 {
		crf = DefaultCRF
	}
	if preset == "" {
		preset = DefaultPreset
	}
	return []string{
		"-c:v", videoCodec,
		"-c:a", audioCodec,
		"-crf", fmt.Sprintf("%d", crf),
		"-preset", preset,
	}
}
