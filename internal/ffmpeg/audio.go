package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// PCMFormat describes the raw audio handed to a consumer: signed 16-bit
// little-endian, interleaved.
type PCMFormat struct {
	SampleRate int
	Channels   int
}

// DefaultPCMFormat is the decode format used for loudness analysis
func DefaultPCMFormat() PCMFormat {
	return PCMFormat{
		SampleRate: 48000,
		Channels:   2,
	}
}

// ReadAudio decodes one audio stream to raw PCM and passes it to consume
func (e *Executor) ReadAudio(ctx context.Context, input string, stream int, format PCMFormat, consume func(io.Reader) error) error {
	e.logger.Info().
		Str("input", input).
		Int("stream", stream).
		Int("sample_rate", format.SampleRate).
		Int("channels", format.Channels).
		Msg("decoding audio")

	args := []string{
		"-i", input,
		"-map", fmt.Sprintf("0:a:%d", stream),
		"-vn",
		"-ac", strconv.Itoa(format.Channels),
		"-ar", strconv.Itoa(format.SampleRate),
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"pipe:1",
	}

	if err := e.Stream(ctx, args, consume); err != nil {
		return fmt.Errorf("audio decode failed: %w", err)
	}
	return nil
}

// VolumeStats holds volume analysis results
type VolumeStats struct {
	MeanVolume float64
	MaxVolume  float64
}

// AnalyzeVolume runs volumedetect over one audio stream
func (e *Executor) AnalyzeVolume(ctx context.Context, input string, stream int) (*VolumeStats, error) {
	e.logger.Info().Str("input", input).Int("stream", stream).Msg("analyzing volume")

	var stderrBuf bytes.Buffer
	var mu sync.Mutex

	opts := RunOptions{
		Args: []string{
			"-i", input,
			"-map", fmt.Sprintf("0:a:%d", stream),
			"-af", "volumedetect",
			"-f", "null",
			"-",
		},
		LogHandler: func(line string) {
			mu.Lock()
			stderrBuf.WriteString(line + "\n")
			mu.Unlock()
		},
	}

	err := e.Run(ctx, opts)

	mu.Lock()
	output := stderrBuf.String()
	mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("volume analysis failed: %w", err)
	}

	if output == "" {
		return nil, fmt.Errorf("volume analysis produced no output")
	}

	return parseVolumeOutput(output), nil
}

// parseVolumeOutput extracts volume stats from ffmpeg output
func parseVolumeOutput(output string) *VolumeStats {
	stats := &VolumeStats{}

	for _, line := range strings.Split(output, "\n") {
		for key, dst := range map[string]*float64{
			"mean_volume:": &stats.MeanVolume,
			"max_volume:":  &stats.MaxVolume,
		} {
			_, rest, ok := strings.Cut(line, key)
			if !ok {
				continue
			}
			if fields := strings.Fields(rest); len(fields) > 0 {
				*dst, _ = strconv.ParseFloat(fields[0], 64)
			}
		}
	}

	return stats
}
