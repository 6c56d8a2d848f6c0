package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kikiluvv/autocut/internal/config"
	"github.com/kikiluvv/autocut/internal/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const watchDebounce = 150 * time.Millisecond

var (
	watchFile   string
	watchExport string
)

var watchCmd = &cobra.Command{
	Use:   "watch [input]",
	Short: "Re-run an edit file against an input whenever the file changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchFile == "" {
			return fmt.Errorf("--edit-file is required")
		}
		cfg := config.FromContext(cmd.Context())
		pipe, err := pipeline.New(log.Logger, nil, cfg)
		if err != nil {
			return err
		}
		pipe.SetStdout(cmd.OutOrStdout())

		sess, err := pipe.Open(cmd.Context(), args[0], false)
		if err != nil {
			return err
		}

		run := func() {
			if err := runWatched(cmd.Context(), cmd.OutOrStdout(), pipe, sess); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "error: %v\n", err)
			}
		}
		run()
		return watchEdits(cmd.Context(), watchFile, run)
	},
}

func runWatched(ctx context.Context, out io.Writer, pipe *pipeline.Pipeline, sess *pipeline.Session) error {
	data, err := os.ReadFile(watchFile)
	if err != nil {
		return err
	}
	project, err := sess.Analyze(ctx, pipeline.AnalyzeOptions{Expression: string(data)})
	if err != nil {
		return err
	}
	s := project.Stats
	fmt.Fprintf(out, "[%s] kept %d/%d frames (%.1f%%) in %d clips\n",
		time.Now().Format("15:04:05"), s.KeptFrames, s.TotalFrames, 100*s.KeptRatio(), s.KeptClips)

	if watchExport != "" {
		return pipe.Export(project, pipe.ExportPath(project.InputPath, watchExport), watchExport)
	}
	return nil
}

// watchEdits calls run after path is written, until ctx is done. The
// directory is watched so editors that replace the file are followed.
func watchEdits(ctx context.Context, path string, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	log.Info().Str("file", path).Msg("watching edit file")

	// bursts of events from one save collapse into a single run
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			log.Debug().Str("event", ev.Op.String()).Msg("edit file changed")
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		case <-timer.C:
			run()
		}
	}
}

func init() {
	watchCmd.Flags().StringVar(&watchFile, "edit-file", "", "edit expression file to watch")
	watchCmd.Flags().StringVar(&watchExport, "export", "", "rewrite the cut list (json or yaml) after each run")
}
