package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/kikiluvv/autocut/internal/ffmpeg"
	"github.com/kikiluvv/autocut/internal/lang"
	"github.com/kikiluvv/autocut/internal/selector"
	"github.com/rs/zerolog"
)

// ErrNoMedia is returned by providers that have no media to analyse
var ErrNoMedia = errors.New("selector needs a media input")

// Decoder is the subset of the ffmpeg executor the provider streams from
type Decoder interface {
	ReadAudio(ctx context.Context, input string, stream int, format ffmpeg.PCMFormat, consume func(io.Reader) error) error
	ReadFrames(ctx context.Context, input string, opts ffmpeg.FrameOptions, consume func(io.Reader) error) error
}

// Provider computes levels for one probed input by decoding it with ffmpeg.
// Results are cached per stream and option set, so a selector used twice
// in an expression decodes once.
type Provider struct {
	logger  zerolog.Logger
	decoder Decoder
	info    *ffmpeg.MediaInfo
	format  ffmpeg.PCMFormat

	mu    sync.Mutex
	cache map[string][]float64
}

// NewProvider creates a provider for a probed input
func NewProvider(logger zerolog.Logger, decoder Decoder, info *ffmpeg.MediaInfo, format ffmpeg.PCMFormat) *Provider {
	if format.SampleRate <= 0 {
		format.SampleRate = ffmpeg.DefaultPCMFormat().SampleRate
	}
	if format.Channels <= 0 {
		format.Channels = ffmpeg.DefaultPCMFormat().Channels
	}
	return &Provider{
		logger:  logger.With().Str("component", "analyze").Str("input", info.FilePath).Logger(),
		decoder: decoder,
		info:    info,
		format:  format,
		cache:   make(map[string][]float64),
	}
}

// Source describes the probed input to the interpreter
func Source(info *ffmpeg.MediaInfo, strict bool) lang.Source {
	src := lang.Source{
		Timebase:     info.Timebase,
		TotalFrames:  info.TotalFrames,
		AudioStreams: len(info.Audios),
		Strict:       strict,
	}
	for _, v := range info.Videos {
		src.Videos = append(src.Videos, lang.VideoStream{Width: v.Width, Height: v.Height})
	}
	return src
}

// AudioLevels implements lang.LevelProvider
func (p *Provider) AudioLevels(ctx context.Context, stream int) ([]float64, error) {
	return p.cached(fmt.Sprintf("audio:%d", stream), func() ([]float64, error) {
		var levels []float64
		err := p.decoder.ReadAudio(ctx, p.info.FilePath, stream, p.format, func(r io.Reader) error {
			var err error
			levels, err = AudioLevels(r, p.format.SampleRate, p.format.Channels, p.info.Timebase, p.info.TotalFrames)
			return err
		})
		return levels, err
	})
}

// MotionLevels implements lang.LevelProvider
func (p *Provider) MotionLevels(ctx context.Context, opts selector.MotionOptions) ([]float64, error) {
	key := fmt.Sprintf("motion:%d:%d:%d", opts.Stream, opts.Blur, opts.Width)
	return p.cached(key, func() ([]float64, error) {
		width, height, err := p.scaled(opts.Stream, opts.Width)
		if err != nil {
			return nil, err
		}
		// frames are blurred at source size with the sigma scaled up so the
		// blur matches one applied after shrinking
		src := p.info.Videos[opts.Stream]
		var levels []float64
		err = p.decoder.ReadFrames(ctx, p.info.FilePath, ffmpeg.FrameOptions{
			Stream:   opts.Stream,
			Timebase: p.info.Timebase,
			Blur:     float64(opts.Blur) * float64(src.Width) / float64(width),
			PixFmt:   "gray",
		}, func(r io.Reader) error {
			var err error
			levels, err = MotionLevels(r, src.Width, src.Height, width, height, p.info.TotalFrames)
			return err
		})
		return levels, err
	})
}

// PixeldiffLevels implements lang.LevelProvider
func (p *Provider) PixeldiffLevels(ctx context.Context, stream int) ([]float64, error) {
	return p.cached(fmt.Sprintf("pixeldiff:%d", stream), func() ([]float64, error) {
		if stream < 0 || stream >= len(p.info.Videos) {
			return nil, fmt.Errorf("video stream %d does not exist", stream)
		}
		v := p.info.Videos[stream]
		const pixFmt = "rgb24"
		var levels []float64
		err := p.decoder.ReadFrames(ctx, p.info.FilePath, ffmpeg.FrameOptions{
			Stream:   stream,
			Timebase: p.info.Timebase,
			PixFmt:   pixFmt,
		}, func(r io.Reader) error {
			var err error
			levels, err = PixeldiffLevels(r, v.Width, v.Height, ffmpeg.BytesPerPixel(pixFmt), p.info.TotalFrames)
			return err
		})
		return levels, err
	})
}

// RandomLevels implements lang.LevelProvider. Time-seeded results are not
// cached.
func (p *Provider) RandomLevels(_ context.Context, seed int64) ([]float64, error) {
	if seed < 0 {
		return RandomLevels(p.info.TotalFrames, seed), nil
	}
	return p.cached(fmt.Sprintf("random:%d", seed), func() ([]float64, error) {
		return RandomLevels(p.info.TotalFrames, seed), nil
	})
}

// scaled returns the analysis size for a video stream at the given width,
// keeping the aspect ratio with an even height.
func (p *Provider) scaled(stream, width int) (int, int, error) {
	if stream < 0 || stream >= len(p.info.Videos) {
		return 0, 0, fmt.Errorf("video stream %d does not exist", stream)
	}
	v := p.info.Videos[stream]
	if v.Width <= 0 || v.Height <= 0 {
		return 0, 0, fmt.Errorf("video stream %d has no dimensions", stream)
	}
	height := (width*v.Height/v.Width + 1) &^ 1
	return width, max(height, 2), nil
}

func (p *Provider) cached(key string, compute func() ([]float64, error)) ([]float64, error) {
	p.mu.Lock()
	levels, ok := p.cache[key]
	p.mu.Unlock()
	if ok {
		p.logger.Debug().Str("levels", key).Msg("cache hit")
		return levels, nil
	}

	levels, err := compute()
	if err != nil {
		return nil, err
	}
	p.logger.Debug().Str("levels", key).Int("frames", len(levels)).Msg("computed levels")

	p.mu.Lock()
	p.cache[key] = levels
	p.mu.Unlock()
	return levels, nil
}

// Synthetic serves levels when there is no media input. Only random is
// available.
type Synthetic struct {
	Frames int
}

// AudioLevels implements lang.LevelProvider
func (Synthetic) AudioLevels(context.Context, int) ([]float64, error) {
	return nil, ErrNoMedia
}

// MotionLevels implements lang.LevelProvider
func (Synthetic) MotionLevels(context.Context, selector.MotionOptions) ([]float64, error) {
	return nil, ErrNoMedia
}

// PixeldiffLevels implements lang.LevelProvider
func (Synthetic) PixeldiffLevels(context.Context, int) ([]float64, error) {
	return nil, ErrNoMedia
}

// RandomLevels implements lang.LevelProvider
func (s Synthetic) RandomLevels(_ context.Context, seed int64) ([]float64, error) {
	return RandomLevels(s.Frames, seed), nil
}

var (
	_ lang.LevelProvider = (*Provider)(nil)
	_ lang.LevelProvider = Synthetic{}
)
