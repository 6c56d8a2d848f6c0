package analyze

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/kikiluvv/autocut/internal/ffmpeg"
	"github.com/kikiluvv/autocut/internal/lang"
	"github.com/kikiluvv/autocut/internal/selector"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDecoder struct {
	audio  []byte
	frames []byte
	err    error

	audioCalls int
	frameOpts  []ffmpeg.FrameOptions
}

func (f *fakeDecoder) ReadAudio(_ context.Context, _ string, _ int, _ ffmpeg.PCMFormat, consume func(io.Reader) error) error {
	f.audioCalls++
	if f.err != nil {
		return f.err
	}
	return consume(bytes.NewReader(f.audio))
}

func (f *fakeDecoder) ReadFrames(_ context.Context, _ string, opts ffmpeg.FrameOptions, consume func(io.Reader) error) error {
	f.frameOpts = append(f.frameOpts, opts)
	if f.err != nil {
		return f.err
	}
	return consume(bytes.NewReader(f.frames))
}

func testInfo() *ffmpeg.MediaInfo {
	return &ffmpeg.MediaInfo{
		FilePath:    "in.mp4",
		Timebase:    big.NewRat(1, 1),
		TotalFrames: 3,
		Videos:      []ffmpeg.VideoStream{{Width: 4, Height: 2}},
		Audios:      []ffmpeg.AudioStream{{SampleRate: 2, Channels: 1}},
	}
}

func TestProviderAudioCaches(t *testing.T) {
	dec := &fakeDecoder{audio: pcmBytes(10, 20, 40, 0, 5, 5)}
	p := NewProvider(zerolog.Nop(), dec, testInfo(), ffmpeg.PCMFormat{SampleRate: 2, Channels: 1})

	levels, err := p.AudioLevels(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1, 0.125}, levels)

	_, err = p.AudioLevels(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, dec.audioCalls)
}

func TestProviderMotionScalesKeepingAspect(t *testing.T) {
	// 4x2 source frames shrink to 2x2 at width 2
	dec := &fakeDecoder{frames: []byte{
		0, 0, 0, 0, 0, 0, 0, 0,
		50, 50, 50, 50, 50, 50, 50, 50,
		50, 50, 50, 50, 50, 50, 50, 50,
	}}
	p := NewProvider(zerolog.Nop(), dec, testInfo(), ffmpeg.PCMFormat{})

	levels, err := p.MotionLevels(context.Background(), selector.MotionOptions{Width: 2, Blur: 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0}, levels)

	require.Len(t, dec.frameOpts, 1)
	opts := dec.frameOpts[0]
	assert.Zero(t, opts.Width)
	assert.Zero(t, opts.Height)
	assert.Equal(t, 6.0, opts.Blur)
	assert.Equal(t, "gray", opts.PixFmt)
}

func TestProviderPixeldiff(t *testing.T) {
	frame := make([]byte, 4*2*3)
	changed := append([]byte(nil), frame...)
	changed[0] = 1
	changed[23] = 1
	dec := &fakeDecoder{frames: append(append(frame, changed...), changed...)}
	p := NewProvider(zerolog.Nop(), dec, testInfo(), ffmpeg.PCMFormat{})

	levels, err := p.PixeldiffLevels(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 0}, levels)
	assert.Equal(t, "rgb24", dec.frameOpts[0].PixFmt)

	_, err = p.PixeldiffLevels(context.Background(), 1)
	assert.Error(t, err)
}

func TestProviderRandom(t *testing.T) {
	p := NewProvider(zerolog.Nop(), &fakeDecoder{}, testInfo(), ffmpeg.PCMFormat{})
	a, err := p.RandomLevels(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, RandomLevels(3, 5), a)
}

func TestProviderDecodeError(t *testing.T) {
	boom := errors.New("decode failed")
	p := NewProvider(zerolog.Nop(), &fakeDecoder{err: boom}, testInfo(), ffmpeg.PCMFormat{})
	_, err := p.AudioLevels(context.Background(), 0)
	assert.ErrorIs(t, err, boom)
}

func TestProviderThroughInterpreter(t *testing.T) {
	info := testInfo()
	dec := &fakeDecoder{audio: pcmBytes(10, 20, 40, 0, 5, 5)}
	p := NewProvider(zerolog.Nop(), dec, info, ffmpeg.PCMFormat{SampleRate: 2, Channels: 1})

	got, err := lang.Run(context.Background(), "audio:threshold=50%", lang.Options{
		Source:   Source(info, false),
		Provider: p,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, got)
}

func TestSource(t *testing.T) {
	src := Source(testInfo(), true)
	assert.Equal(t, 3, src.TotalFrames)
	assert.Equal(t, 1, src.AudioStreams)
	assert.Equal(t, []lang.VideoStream{{Width: 4, Height: 2}}, src.Videos)
	assert.True(t, src.Strict)
}

func TestSynthetic(t *testing.T) {
	s := Synthetic{Frames: 4}
	_, err := s.AudioLevels(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoMedia)
	_, err = s.MotionLevels(context.Background(), selector.MotionOptions{})
	assert.ErrorIs(t, err, ErrNoMedia)
	_, err = s.PixeldiffLevels(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoMedia)
	levels, err := s.RandomLevels(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, levels, 4)
}
