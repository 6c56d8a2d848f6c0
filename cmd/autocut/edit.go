package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kikiluvv/autocut/internal/config"
	"github.com/kikiluvv/autocut/internal/ffmpeg"
	"github.com/kikiluvv/autocut/internal/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	editExpr   string
	editFile   string
	editMargin string
	minClip    string
	minCut     string
	exportFmt  string
	render     bool
	outputPath string
	outputDir  string
	strict     bool

	markLoud   []string
	markSilent []string
	cutOut     []string
)

var editCmd = &cobra.Command{
	Use:   "edit [inputs...]",
	Short: "Decide which frames to keep and export or render the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		expr, err := editExpression(editExpr, editFile)
		if err != nil {
			return err
		}
		marks, err := editMarks(markLoud, markSilent, cutOut)
		if err != nil {
			return err
		}
		if outputPath != "" && len(args) > 1 {
			return fmt.Errorf("--output takes a single input, use --output-dir for %d inputs", len(args))
		}

		pipe, err := pipeline.New(log.Logger, nil, cfg)
		if err != nil {
			return err
		}

		opts := pipeline.BatchOptions{
			Analyze: pipeline.AnalyzeOptions{
				Expression: expr,
				Margin:     editMargin,
				MinClip:    minClip,
				MinCut:     minCut,
				Strict:     strict,
				MarkLoud:   marks.MarkLoud,
				MarkSilent: marks.MarkSilent,
				CutOut:     marks.CutOut,
			},
			Export:    exportFmt,
			Render:    render && outputPath == "",
			OutputDir: outputDir,
		}
		if opts.Export == "" && !render {
			opts.Export = cfg.Edit.Export
		}

		results := pipe.Batch(cmd.Context(), args, opts)

		if outputPath != "" && render && results[0].Err == nil {
			results[0].OutputPath, results[0].Err = pipe.Render(cmd.Context(), results[0].Project,
				pipeline.RenderOptions{OutputPath: outputPath})
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(out, "%s: error: %v\n", r.Input, r.Err)
				continue
			}
			s := r.Project.Stats
			fmt.Fprintf(out, "%s: kept %d/%d frames (%.1f%%) in %d clips, %s\n",
				r.Input, s.KeptFrames, s.TotalFrames, 100*s.KeptRatio(), s.KeptClips, s.KeptDuration)
			if r.ExportPath != "" {
				fmt.Fprintf(out, "  cut list: %s\n", r.ExportPath)
			}
			if r.OutputPath != "" {
				fmt.Fprintf(out, "  output: %s\n", r.OutputPath)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d inputs failed", failed, len(results))
		}
		return nil
	},
}

// editExpression returns the program text from --edit-file, else --edit
func editExpression(expr, file string) (string, error) {
	if file == "" {
		return expr, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading edit file: %w", err)
	}
	return string(data), nil
}

// editMarks parses the range flags into analyze options
func editMarks(loud, silent, cut []string) (pipeline.AnalyzeOptions, error) {
	var opts pipeline.AnalyzeOptions
	var err error
	if opts.MarkLoud, err = pipeline.ParseRanges(loud); err != nil {
		return opts, fmt.Errorf("--mark-as-loud: %w", err)
	}
	if opts.MarkSilent, err = pipeline.ParseRanges(silent); err != nil {
		return opts, fmt.Errorf("--mark-as-silent: %w", err)
	}
	if opts.CutOut, err = pipeline.ParseRanges(cut); err != nil {
		return opts, fmt.Errorf("--cut-out: %w", err)
	}
	return opts, nil
}

var (
	levelsMethod string
	levelsAttrs  string
)

var levelsCmd = &cobra.Command{
	Use:   "levels [input]",
	Short: "Print the raw per-frame levels of one selector method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		pipe, err := pipeline.New(log.Logger, nil, cfg)
		if err != nil {
			return err
		}

		raw := levelsMethod
		if levelsAttrs != "" {
			raw += ":" + levelsAttrs
		}
		levels, err := pipe.Levels(cmd.Context(), args[0], raw)
		if err != nil {
			return err
		}

		var b strings.Builder
		for _, l := range levels {
			b.WriteString(strconv.FormatFloat(l, 'f', -1, 64))
			b.WriteByte('\n')
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
		return err
	},
}

var infoVolume bool

var infoCmd = &cobra.Command{
	Use:   "info [input]",
	Short: "Print the timebase, frame count and streams of a media file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		exec, err := ffmpeg.New(log.Logger, ffmpeg.Options{
			FFmpegPath:  cfg.FFmpeg.BinaryPath,
			FFprobePath: cfg.FFmpeg.ProbePath,
			Threads:     cfg.FFmpeg.Threads,
		})
		if err != nil {
			return err
		}

		info, err := exec.ProbeMedia(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "file:     %s\n", info.FilePath)
		fmt.Fprintf(out, "duration: %s\n", info.Duration)
		fmt.Fprintf(out, "timebase: %s\n", info.Timebase.RatString())
		fmt.Fprintf(out, "frames:   %d\n", info.TotalFrames)
		for _, v := range info.Videos {
			rate := "?"
			if v.FrameRate != nil {
				rate = v.FrameRate.RatString()
			}
			fmt.Fprintf(out, "video %d:  %s %dx%d %s @ %s\n", v.Index, v.Codec, v.Width, v.Height, v.PixFmt, rate)
		}
		for _, a := range info.Audios {
			fmt.Fprintf(out, "audio %d:  %s %d Hz %d ch", a.Index, a.Codec, a.SampleRate, a.Channels)
			if infoVolume {
				stats, err := exec.AnalyzeVolume(cmd.Context(), info.FilePath, a.Index)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, ", mean %.1f dB, max %.1f dB", stats.MeanVolume, stats.MaxVolume)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	editCmd.Flags().StringVarP(&editExpr, "edit", "e", "", "edit expression (default from config: audio)")
	editCmd.Flags().StringVar(&editFile, "edit-file", "", "read the edit expression from a file")
	editCmd.Flags().StringVarP(&editMargin, "margin", "m", "", "frames or duration kept around each clip, e.g. 6 or 0.2s")
	editCmd.Flags().StringVar(&minClip, "min-clip", "", "drop kept runs shorter than this")
	editCmd.Flags().StringVar(&minCut, "min-cut", "", "keep cut runs shorter than this")
	editCmd.Flags().StringVar(&exportFmt, "export", "", "write the cut list as json or yaml")
	editCmd.Flags().BoolVar(&render, "render", false, "render the kept clips with ffmpeg")
	editCmd.Flags().StringVarP(&outputPath, "output", "o", "", "rendered file for a single input")
	editCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for rendered files")
	editCmd.Flags().BoolVar(&strict, "strict", false, "fail when a selector names a missing stream")
	editCmd.Flags().StringArrayVar(&markLoud, "mark-as-loud", nil, "always keep START,END (frames, durations like 2s, or start/end); repeatable")
	editCmd.Flags().StringArrayVar(&markSilent, "mark-as-silent", nil, "cut START,END unless marked loud; repeatable")
	editCmd.Flags().StringArrayVar(&cutOut, "cut-out", nil, "always cut START,END, overriding every other mark; repeatable")

	levelsCmd.Flags().StringVar(&levelsMethod, "method", "audio", "audio, motion, pixeldiff or random")
	levelsCmd.Flags().StringVar(&levelsAttrs, "attrs", "", "selector attributes, e.g. stream=1")

	infoCmd.Flags().BoolVar(&infoVolume, "volume", false, "also measure mean and max volume per audio stream")
}
