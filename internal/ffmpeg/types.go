package ffmpeg

import (
	"math/big"
	"time"

	"github.com/kikiluvv/autocut/pkg/util"
)

// MediaInfo contains metadata about a media file
type MediaInfo struct {
	FilePath string
	Duration time.Duration
	Bitrate  int64
	// Timebase is the frame rate of the first video stream, or 30/1 for
	// audio-only input.
	Timebase    *big.Rat
	TotalFrames int
	Videos      []VideoStream
	Audios      []AudioStream
}

// VideoStream describes one video stream
type VideoStream struct {
	Index     int
	Codec     string
	Width     int
	Height    int
	PixFmt    string
	FrameRate *big.Rat
}

// AudioStream describes one audio stream
type AudioStream struct {
	Index      int
	Codec      string
	SampleRate int
	Channels   int
	Bitrate    int64
}

// HasAudio reports whether the file carries at least one audio stream
func (m *MediaInfo) HasAudio() bool {
	return len(m.Audios) > 0
}

// FrameTime converts a frame index to a timestamp at the file's timebase
func (m *MediaInfo) FrameTime(frame int) time.Duration {
	return util.FramesToDuration(int64(frame), m.Timebase)
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
}

// Default encoding settings
const (
	DefaultCRF        = 23
	DefaultPreset     = "medium"
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
)

// DefaultTimebase is used when a file has no video stream
var DefaultTimebase = big.NewRat(30, 1)

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)
