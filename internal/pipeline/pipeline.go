package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kikiluvv/autocut/internal/analyze"
	"github.com/kikiluvv/autocut/internal/config"
	"github.com/kikiluvv/autocut/internal/ffmpeg"
	"github.com/kikiluvv/autocut/internal/selector"
	"github.com/kikiluvv/autocut/pkg/util"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// editVar holds the evaluated decision while cook and margin run over it
const editVar = "edit"

// Media is the ffmpeg surface the pipeline drives
type Media interface {
	analyze.Decoder
	ProbeMedia(ctx context.Context, path string) (*ffmpeg.MediaInfo, error)
	ExtractClip(ctx context.Context, input string, opts ffmpeg.ClipOptions) error
	Concat(ctx context.Context, opts ffmpeg.ConcatOptions) error
}

// Pipeline orchestrates probing, evaluating, exporting and rendering
type Pipeline struct {
	logger zerolog.Logger
	config *Config
	render RenderOptions
	media  Media
	stdout io.Writer
}

// New creates a new pipeline instance backed by ffmpeg
func New(logger zerolog.Logger, cfg *Config, appCfg *config.Config) (*Pipeline, error) {
	ffmpegExec, err := ffmpeg.New(logger, ffmpeg.Options{
		FFmpegPath:  appCfg.FFmpeg.BinaryPath,
		FFprobePath: appCfg.FFmpeg.ProbePath,
		Threads:     appCfg.FFmpeg.Threads,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}
	if cfg == nil {
		cfg = ConfigFrom(appCfg)
	}
	p := NewWithMedia(logger, cfg, ffmpegExec)
	p.render = RenderOptions{
		Quality:    appCfg.FFmpeg.CRF,
		Preset:     appCfg.FFmpeg.Preset,
		VideoCodec: appCfg.FFmpeg.VideoCodec,
		AudioCodec: appCfg.FFmpeg.AudioCodec,
		CopyCodec:  appCfg.FFmpeg.CopyCodec,
	}
	return p, nil
}

// NewWithMedia creates a pipeline over any Media implementation
func NewWithMedia(logger zerolog.Logger, cfg *Config, media Media) *Pipeline {
	if cfg == nil {
		cfg = ConfigFrom(config.Default())
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Expression == "" {
		cfg.Expression = "audio"
	}
	if cfg.Suffix == "" {
		cfg.Suffix = "_ALTERED"
	}
	return &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		config: cfg,
		media:  media,
		stdout: os.Stdout,
	}
}

// ConfigFrom derives pipeline settings from the application config
func ConfigFrom(app *config.Config) *Config {
	return &Config{
		Workers:    app.Concurrency,
		TempDir:    app.TempDir,
		Suffix:     app.Edit.Suffix,
		Expression: app.Edit.Expression,
		Margin:     app.Edit.Margin,
		MinClip:    app.Edit.MinClip,
		MinCut:     app.Edit.MinCut,
		Strict:     app.Edit.Strict,
		SampleRate: app.Analysis.SampleRate,
		Channels:   app.Analysis.Channels,
	}
}

// SetStdout redirects output of the display primitive
func (p *Pipeline) SetStdout(w io.Writer) {
	p.stdout = w
}

// Probe returns stream metadata for input
func (p *Pipeline) Probe(ctx context.Context, input string) (*ffmpeg.MediaInfo, error) {
	if input == "" {
		return nil, fmt.Errorf("input path cannot be empty")
	}
	info, err := p.media.ProbeMedia(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to probe media: %w", err)
	}
	return info, nil
}

// Analyze evaluates the edit expression against input and splits the
// decision into clips
func (p *Pipeline) Analyze(ctx context.Context, input string, opts AnalyzeOptions) (*Project, error) {
	opts = p.withDefaults(opts)
	sess, err := p.Open(ctx, input, opts.Strict)
	if err != nil {
		return nil, err
	}
	return sess.Analyze(ctx, opts)
}

func (p *Pipeline) withDefaults(opts AnalyzeOptions) AnalyzeOptions {
	if opts.Expression == "" {
		opts.Expression = p.config.Expression
	}
	if opts.Margin == "" {
		opts.Margin = p.config.Margin
	}
	if opts.MinClip == "" {
		opts.MinClip = p.config.MinClip
	}
	if opts.MinCut == "" {
		opts.MinCut = p.config.MinCut
	}
	opts.Strict = opts.Strict || p.config.Strict
	return opts
}

// postProcess builds the program applied to the evaluated decision:
// small runs are cooked away first, then the margin widens what is left.
// It returns "" when there is nothing to apply.
func postProcess(margin, minClip, minCut string) string {
	expr := editVar
	if !isZero(minClip) || !isZero(minCut) {
		expr = fmt.Sprintf("(cook %s %s %s)", orZero(minCut), orZero(minClip), expr)
	}
	if !isZero(margin) {
		expr = fmt.Sprintf("(margin %s %s)", strings.TrimSpace(margin), expr)
	}
	if expr == editVar {
		return ""
	}
	return expr
}

func isZero(atom string) bool {
	atom = strings.TrimSpace(atom)
	return atom == "" || atom == "0"
}

func orZero(atom string) string {
	if isZero(atom) {
		return "0"
	}
	return strings.TrimSpace(atom)
}

// Levels computes the raw levels of one selector without thresholding
func (p *Pipeline) Levels(ctx context.Context, input, raw string) ([]float64, error) {
	sess, err := p.Open(ctx, input, true)
	if err != nil {
		return nil, err
	}
	info, provider := sess.Info, sess.provider

	width := 1
	if len(info.Videos) > 0 {
		width = info.Videos[0].Width
	}
	opts, err := selector.ParseRaw(raw, selector.Vars{"width": width})
	if err != nil {
		return nil, err
	}

	switch o := opts.(type) {
	case selector.AudioOptions:
		if o.Stream.All {
			return nil, fmt.Errorf("levels needs a single audio stream, not %s", o.Stream)
		}
		if o.Stream.Index >= len(info.Audios) {
			return nil, fmt.Errorf("audio stream %d does not exist (input has %d)", o.Stream.Index, len(info.Audios))
		}
		return provider.AudioLevels(ctx, o.Stream.Index)
	case selector.MotionOptions:
		return provider.MotionLevels(ctx, o)
	case selector.PixeldiffOptions:
		return provider.PixeldiffLevels(ctx, o.Stream)
	case selector.RandomOptions:
		return provider.RandomLevels(ctx, o.Seed)
	}
	return nil, fmt.Errorf("%s has no levels", opts.Method())
}

// ExportPath returns where the cut list of input is written
func (p *Pipeline) ExportPath(input, format string) string {
	return util.WithSuffix(input, p.config.Suffix, format)
}

// Export writes the project's cut list as json or yaml. An empty format
// is taken from the file extension.
func (p *Pipeline) Export(project *Project, path, format string) error {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = json.MarshalIndent(project, "", "  ")
	case "yaml", "yml":
		data, err = yaml.Marshal(project)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	p.logger.Info().Str("path", path).Str("format", format).Msg("exported cut list")
	return nil
}

// Render cuts the kept clips out of the input and joins them
func (p *Pipeline) Render(ctx context.Context, project *Project, opts RenderOptions) (string, error) {
	if project == nil {
		return "", fmt.Errorf("project cannot be nil")
	}
	if opts.OutputPath == "" {
		return "", fmt.Errorf("output path cannot be empty")
	}
	opts = p.renderDefaults(opts)

	kept := project.Kept()
	if len(kept) == 0 {
		return "", fmt.Errorf("nothing to render: every frame of %s was cut", project.InputPath)
	}

	p.logger.Info().
		Str("project", project.Name).
		Str("output", opts.OutputPath).
		Int("clips", len(kept)).
		Msg("starting render pipeline")

	if err := util.EnsureDir(filepath.Dir(opts.OutputPath)); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.MkdirTemp(p.config.TempDir, "autocut-render-*")
	if err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	ext := filepath.Ext(opts.OutputPath)
	if ext == "" {
		ext = filepath.Ext(project.InputPath)
	}

	// Stage 1: Extract clips from source
	parts := make([]string, 0, len(kept))
	for i, clip := range kept {
		part := filepath.Join(tmp, fmt.Sprintf("part_%04d%s", i, ext))
		err := p.media.ExtractClip(ctx, project.InputPath, ffmpeg.ClipOptions{
			Start:      clip.Start,
			End:        clip.End,
			Output:     part,
			CopyCodec:  opts.CopyCodec,
			VideoCodec: opts.VideoCodec,
			AudioCodec: opts.AudioCodec,
			CRF:        opts.Quality,
			Preset:     opts.Preset,
		})
		if err != nil {
			return "", fmt.Errorf("extracting %s: %w", clip.ID, err)
		}
		parts = append(parts, part)
	}

	// Stage 2: Concatenate clips
	if err := p.media.Concat(ctx, ffmpeg.ConcatOptions{
		Inputs:  parts,
		Output:  opts.OutputPath,
		TempDir: tmp,
	}); err != nil {
		return "", err
	}

	p.logger.Info().
		Str("output", opts.OutputPath).
		Msg("render pipeline complete")

	return opts.OutputPath, nil
}

func (p *Pipeline) renderDefaults(opts RenderOptions) RenderOptions {
	if opts.Quality == 0 {
		opts.Quality = p.render.Quality
	}
	if opts.Preset == "" {
		opts.Preset = p.render.Preset
	}
	if opts.VideoCodec == "" {
		opts.VideoCodec = p.render.VideoCodec
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = p.render.AudioCodec
	}
	opts.CopyCodec = opts.CopyCodec || p.render.CopyCodec
	return opts
}

// Batch edits every input with up to Workers inputs in flight. A failing
// input is reported in its Result and does not stop the others. Results
// are in input order.
func (p *Pipeline) Batch(ctx context.Context, inputs []string, opts BatchOptions) []Result {
	results := make([]Result, len(inputs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(p.config.Workers, len(inputs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.process(ctx, inputs[i], opts)
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			p.logger.Error().Err(r.Err).Str("input", r.Input).Msg("edit failed")
		}
	}
	p.logger.Info().Int("inputs", len(inputs)).Int("failed", failed).Msg("batch complete")
	return results
}

func (p *Pipeline) process(ctx context.Context, input string, opts BatchOptions) Result {
	res := Result{Input: input}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	res.Project, res.Err = p.Analyze(ctx, input, opts.Analyze)
	if res.Err != nil {
		return res
	}

	if opts.Export != "" {
		path := p.ExportPath(input, opts.Export)
		if res.Err = p.Export(res.Project, path, opts.Export); res.Err != nil {
			return res
		}
		res.ExportPath = path
	}

	if opts.Render {
		out := p.ExportPath(input, "")
		if opts.OutputDir != "" {
			out = filepath.Join(opts.OutputDir, filepath.Base(out))
		}
		res.OutputPath, res.Err = p.Render(ctx, res.Project, RenderOptions{OutputPath: out})
	}
	return res
}
