package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os/exec"
	"strconv"
	"time"

	"github.com/kikiluvv/autocut/pkg/util"
)

// ProbeMedia extracts stream metadata and the exact frame rate of a file
func (e *Executor) ProbeMedia(ctx context.Context, filePath string) (*MediaInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbe(filePath, output)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("file", filePath).
		Str("timebase", info.Timebase.RatString()).
		Int("frames", info.TotalFrames).
		Int("video_streams", len(info.Videos)).
		Int("audio_streams", len(info.Audios)).
		Msg("probed media")
	return info, nil
}

// parseProbe turns ffprobe JSON into MediaInfo
func parseProbe(filePath string, output []byte) (*MediaInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &MediaInfo{
		FilePath: filePath,
		Timebase: new(big.Rat).Set(DefaultTimebase),
	}

	if br, err := strconv.ParseInt(probe.Format.BitRate, 10, 64); err == nil {
		info.Bitrate = br
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if stream.Disposition.AttachedPic == 1 {
				continue
			}
			vs := VideoStream{
				Index:  len(info.Videos),
				Codec:  stream.CodecName,
				Width:  stream.Width,
				Height: stream.Height,
				PixFmt: stream.PixFmt,
			}
			for _, rate := range []string{stream.AvgFrameRate, stream.RFrameRate} {
				if r, err := util.ParseFrameRate(rate); err == nil {
					vs.FrameRate = r
					break
				}
			}
			info.Videos = append(info.Videos, vs)
		case "audio":
			as := AudioStream{
				Index:    len(info.Audios),
				Codec:    stream.CodecName,
				Channels: stream.Channels,
			}
			as.SampleRate, _ = strconv.Atoi(stream.SampleRate)
			if br, err := strconv.ParseInt(stream.BitRate, 10, 64); err == nil {
				as.Bitrate = br
			}
			info.Audios = append(info.Audios, as)
		}
	}

	if len(info.Videos) > 0 && info.Videos[0].FrameRate != nil {
		info.Timebase = info.Videos[0].FrameRate
	}

	if secs, ok := new(big.Rat).SetString(probe.Format.Duration); ok && secs.Sign() > 0 {
		nanos := new(big.Rat).Mul(secs, big.NewRat(int64(time.Second), 1))
		info.Duration = time.Duration(util.RoundRat(nanos))
		frames := new(big.Rat).Mul(secs, info.Timebase)
		info.TotalFrames = int(util.RoundRat(frames))
	}

	return info, nil
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		PixFmt       string `json:"pix_fmt"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		BitRate      string `json:"bit_rate"`
		SampleRate   string `json:"sample_rate"`
		Channels     int    `json:"channels"`
		Disposition  struct {
			AttachedPic int `json:"attached_pic"`
		} `json:"disposition"`
	} `json:"streams"`
}
