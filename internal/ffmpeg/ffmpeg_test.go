package ffmpeg

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probeJSON = `{
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080,
     "pix_fmt": "yuv420p", "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001"},
    {"codec_type": "audio", "codec_name": "aac", "sample_rate": "48000", "channels": 2, "bit_rate": "128000"},
    {"codec_type": "audio", "codec_name": "opus", "sample_rate": "44100", "channels": 1},
    {"codec_type": "video", "codec_name": "mjpeg", "width": 300, "height": 300,
     "r_frame_rate": "90000/1", "disposition": {"attached_pic": 1}}
  ],
  "format": {"duration": "10.010000", "bit_rate": "4000000"}
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe("in.mp4", []byte(probeJSON))
	require.NoError(t, err)

	assert.Equal(t, "in.mp4", info.FilePath)
	assert.Equal(t, "30000/1001", info.Timebase.RatString())
	assert.Equal(t, 300, info.TotalFrames)
	assert.Equal(t, int64(4000000), info.Bitrate)
	assert.Equal(t, 10010*time.Millisecond, info.Duration)

	require.Len(t, info.Videos, 1)
	assert.Equal(t, 1920, info.Videos[0].Width)
	assert.Equal(t, "yuv420p", info.Videos[0].PixFmt)

	require.Len(t, info.Audios, 2)
	assert.True(t, info.HasAudio())
	assert.Equal(t, AudioStream{Index: 0, Codec: "aac", SampleRate: 48000, Channels: 2, Bitrate: 128000}, info.Audios[0])
	assert.Equal(t, 1, info.Audios[1].Index)
}

func TestParseProbeAudioOnly(t *testing.T) {
	out := `{"streams": [{"codec_type": "audio", "codec_name": "mp3", "sample_rate": "44100", "channels": 2}],
	         "format": {"duration": "2.5"}}`
	info, err := parseProbe("in.mp3", []byte(out))
	require.NoError(t, err)
	assert.Equal(t, "30", info.Timebase.RatString())
	assert.Equal(t, 75, info.TotalFrames)
	assert.Empty(t, info.Videos)
}

func TestParseProbeFallsBackToRFrameRate(t *testing.T) {
	out := `{"streams": [{"codec_type": "video", "width": 2, "height": 2, "avg_frame_rate": "0/0", "r_frame_rate": "25/1"}],
	         "format": {"duration": "N/A"}}`
	info, err := parseProbe("in.mkv", []byte(out))
	require.NoError(t, err)
	assert.Equal(t, "25", info.Timebase.RatString())
	assert.Zero(t, info.TotalFrames)
}

func TestParseProbeInvalidJSON(t *testing.T) {
	_, err := parseProbe("x", []byte("not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse ffprobe output")
}

func TestFrameTime(t *testing.T) {
	info := &MediaInfo{Timebase: big.NewRat(25, 1)}
	assert.Equal(t, 2*time.Second, info.FrameTime(50))
	assert.Equal(t, time.Duration(0), info.FrameTime(0))
}

func TestParseVolumeOutput(t *testing.T) {
	out := strings.Join([]string{
		"[Parsed_volumedetect_0 @ 0x1] n_samples: 960000",
		"[Parsed_volumedetect_0 @ 0x1] mean_volume: -21.3 dB",
		"[Parsed_volumedetect_0 @ 0x1] max_volume: -1.5 dB",
	}, "\n")
	stats := parseVolumeOutput(out)
	assert.Equal(t, -21.3, stats.MeanVolume)
	assert.Equal(t, -1.5, stats.MaxVolume)
}

func TestFilterBuilder(t *testing.T) {
	fb := NewFilterBuilder().
		FrameRate(big.NewRat(30000, 1001)).
		Scale(400, 226).
		Format("gray").
		GaussianBlur(9).
		Custom("null")
	assert.Equal(t, "fps=30000/1001,scale=400:226,format=gray,gblur=sigma=9,null", fb.Build())
}

func TestFilterBuilderSkipsInvalid(t *testing.T) {
	fb := NewFilterBuilder().
		FrameRate(nil).
		FrameRate(big.NewRat(0, 1)).
		Scale(0, 100).
		Format("").
		GaussianBlur(0)
	assert.Equal(t, "", fb.Build())
}

func TestFrameFilter(t *testing.T) {
	assert.Equal(t, "fps=25,format=rgb24", FrameFilter(FrameOptions{Timebase: big.NewRat(25, 1), PixFmt: "rgb24"}))
	assert.Equal(t, "fps=30,scale=400:300,format=gray,gblur=sigma=3",
		FrameFilter(FrameOptions{Timebase: big.NewRat(30, 1), Width: 400, Height: 300, Blur: 3, PixFmt: "gray"}))
	assert.Equal(t, "fps=30,format=gray,gblur=sigma=13.5",
		FrameFilter(FrameOptions{Timebase: big.NewRat(30, 1), Blur: 13.5, PixFmt: "gray"}))
}

func TestFrameArgsSkipAttachedPictures(t *testing.T) {
	args := frameArgs("in.mp3", FrameOptions{Stream: 1, Timebase: big.NewRat(25, 1), PixFmt: "gray"})
	assert.Equal(t, []string{
		"-i", "in.mp3",
		"-map", "0:V:1",
		"-an", "-sn",
		"-vf", "fps=25,format=gray",
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"pipe:1",
	}, args)
}

func TestBytesPerPixel(t *testing.T) {
	assert.Equal(t, 1, BytesPerPixel("gray"))
	assert.Equal(t, 3, BytesPerPixel("rgb24"))
	assert.Equal(t, 4, BytesPerPixel("rgba"))
}

func TestEncodeArgs(t *testing.T) {
	assert.Equal(t, []string{"-c", "copy"}, encodeArgs(false, "", "", 0, ""))
	assert.Equal(t,
		[]string{"-c:v", "libx264", "-c:a", "aac", "-crf", "23", "-preset", "medium"},
		encodeArgs(true, "", "", 0, ""))
	assert.Equal(t,
		[]string{"-c:v", "libx265", "-c:a", "opus", "-crf", "30", "-preset", "fast"},
		encodeArgs(true, "libx265", "opus", 30, "fast"))
}

func TestCreateConcatFile(t *testing.T) {
	dir := t.TempDir()
	name, err := createConcatFile(dir, []string{filepath.Join(dir, "a.mp4"), filepath.Join(dir, "it's.mp4")})
	require.NoError(t, err)
	defer os.Remove(name)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "file '"+filepath.Join(dir, "a.mp4")+"'", lines[0])
	assert.Contains(t, lines[1], `it'\''s.mp4`)
}

func TestStreamOutputParsesProgress(t *testing.T) {
	e := &Executor{}
	input := strings.Join([]string{
		"frame=10", "fps=25.0", "bitrate=100kbits/s", "out_time=00:00:00.400000", "speed=2x", "progress=continue",
		"frame=0", "progress=continue",
		"frame=20", "progress=end",
	}, "\n")

	var got []Progress
	var lines int
	e.streamOutput(strings.NewReader(input), func(p *Progress) { got = append(got, *p) }, func(string) { lines++ })

	require.Len(t, got, 2)
	assert.Equal(t, Progress{Frame: 10, FPS: 25, Bitrate: "100kbits/s", Time: "00:00:00.400000", Speed: "2x"}, got[0])
	assert.Equal(t, 20, got[1].Frame)
	assert.Equal(t, 10, lines)
}
