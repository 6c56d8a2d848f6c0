package main

import (
	"fmt"
	"strings"

	"github.com/kikiluvv/autocut/internal/analyze"
	"github.com/kikiluvv/autocut/internal/boolarr"
	"github.com/kikiluvv/autocut/internal/lang"
	"github.com/kikiluvv/autocut/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [expression]",
	Short: "Print how an edit expression parses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := lang.Parse(strings.Join(args, " "))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), prog.String())
		return err
	},
}

var (
	evalFrames   int
	evalTimebase string
)

var evalCmd = &cobra.Command{
	Use:   "eval [expression]",
	Short: "Evaluate an edit expression without media",
	Long: "Evaluates against a synthetic input of --frames frames. Only the none, all and " +
		"random selectors are available.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ip, err := syntheticInterpreter(cmd, evalFrames, evalTimebase)
		if err != nil {
			return err
		}
		arr, err := ip.Decide(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), boolarr.String(arr))
		return err
	},
}

// syntheticInterpreter builds an interpreter over an input with no media.
// The source is strict, so selectors needing a stream fail.
func syntheticInterpreter(cmd *cobra.Command, frames int, timebase string) (*lang.Interpreter, error) {
	if frames < 0 {
		return nil, fmt.Errorf("--frames must not be negative")
	}
	tb, err := util.ParseFrameRate(timebase)
	if err != nil {
		return nil, fmt.Errorf("--timebase: %w", err)
	}
	return lang.New(lang.Options{
		Source:   lang.Source{Timebase: tb, TotalFrames: frames, Strict: true},
		Provider: analyze.Synthetic{Frames: frames},
		Stdout:   cmd.OutOrStdout(),
		Logger:   log.Logger,
	}), nil
}

func init() {
	evalCmd.Flags().IntVar(&evalFrames, "frames", 30, "frame count of the synthetic input")
	evalCmd.Flags().StringVar(&evalTimebase, "timebase", "30", "frame rate, e.g. 30 or 30000/1001")
}
