package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kikiluvv/autocut/internal/analyze"
	"github.com/kikiluvv/autocut/internal/clips"
	"github.com/kikiluvv/autocut/internal/ffmpeg"
	"github.com/kikiluvv/autocut/internal/lang"
)

// Session is one probed input with its level cache. Programs evaluated
// through the same session decode the media at most once per selector.
type Session struct {
	Info *ffmpeg.MediaInfo

	p        *Pipeline
	provider *analyze.Provider
	strict   bool
}

// Open probes input and prepares it for evaluation
func (p *Pipeline) Open(ctx context.Context, input string, strict bool) (*Session, error) {
	info, err := p.Probe(ctx, input)
	if err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("input", input).
		Dur("duration", info.Duration).
		Str("timebase", info.Timebase.RatString()).
		Int("frames", info.TotalFrames).
		Int("video_streams", len(info.Videos)).
		Int("audio_streams", len(info.Audios)).
		Msg("media metadata extracted")

	return &Session{
		Info: info,
		p:    p,
		provider: analyze.NewProvider(p.logger, p.media, info, ffmpeg.PCMFormat{
			SampleRate: p.config.SampleRate,
			Channels:   p.config.Channels,
		}),
		strict: strict || p.config.Strict,
	}, nil
}

// Interpreter returns an interpreter with a fresh environment bound to the
// session's input
func (s *Session) Interpreter() *lang.Interpreter {
	return s.interpreter(s.strict)
}

func (s *Session) interpreter(strict bool) *lang.Interpreter {
	return lang.New(lang.Options{
		Source:   analyze.Source(s.Info, strict),
		Provider: s.provider,
		Stdout:   s.p.stdout,
		Logger:   s.p.logger,
	})
}

// Analyze evaluates one edit against the session's input
func (s *Session) Analyze(ctx context.Context, opts AnalyzeOptions) (*Project, error) {
	opts = s.p.withDefaults(opts)
	input := s.Info.FilePath

	s.p.logger.Info().
		Str("input", input).
		Str("edit", opts.Expression).
		Msg("starting analysis pipeline")

	decision, err := s.decide(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(decision) != s.Info.TotalFrames {
		s.p.logger.Warn().
			Int("decision", len(decision)).
			Int("frames", s.Info.TotalFrames).
			Msg("edit length differs from frame count")
	}

	m := clips.FromDecision(decision, s.Info.Timebase, input)
	project := &Project{
		Name:        strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)),
		InputPath:   input,
		Expression:  opts.Expression,
		Timebase:    s.Info.Timebase.RatString(),
		TotalFrames: s.Info.TotalFrames,
		Clips:       m.All(),
		Stats:       m.Stats(),
		Metadata: map[string]interface{}{
			"duration":      s.Info.Duration.Seconds(),
			"video_streams": len(s.Info.Videos),
			"audio_streams": len(s.Info.Audios),
		},
		CreatedAt: time.Now(),
		decision:  decision,
	}

	s.p.logger.Info().
		Str("project", project.Name).
		Int("clips", project.Stats.KeptClips).
		Int("kept_frames", project.Stats.KeptFrames).
		Int("cut_frames", project.Stats.TotalFrames-project.Stats.KeptFrames).
		Float64("kept_ratio", project.Stats.KeptRatio()).
		Msg("analysis pipeline complete")

	return project, nil
}

func (s *Session) decide(ctx context.Context, opts AnalyzeOptions) ([]bool, error) {
	ip := s.interpreter(opts.Strict || s.strict)

	decision, err := ip.Decide(ctx, opts.Expression)
	if err != nil {
		return nil, fmt.Errorf("evaluating edit: %w", err)
	}

	if post := postProcess(opts.Margin, opts.MinClip, opts.MinCut); post != "" {
		ip.Env().Define(editVar, lang.BoolArr(decision))
		if decision, err = ip.Decide(ctx, post); err != nil {
			return nil, fmt.Errorf("applying %s: %w", post, err)
		}
	}

	if len(opts.MarkLoud)+len(opts.MarkSilent)+len(opts.CutOut) > 0 {
		if decision, err = applyMarks(ctx, ip, decision, opts); err != nil {
			return nil, err
		}
	}
	return decision, nil
}
