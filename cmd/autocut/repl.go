package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kikiluvv/autocut/internal/config"
	"github.com/kikiluvv/autocut/internal/lang"
	"github.com/kikiluvv/autocut/internal/pipeline"
	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	historyFile = ".autocut_history"
	promptMain  = "autocut> "
	promptCont  = "... "
)

const replHelp = `Enter edit expressions; definitions persist for the session.
  :env     list bound names
  :reset   start over with a fresh environment
  :help    show this help
  :quit    leave (or Ctrl+D)
`

var (
	replFrames   int
	replTimebase string
)

var replCmd = &cobra.Command{
	Use:   "repl [input]",
	Short: "Interactive edit expression prompt",
	Long: "Without an input, expressions run against a synthetic source of --frames frames. " +
		"With an input, selectors analyse that file and results are cached for the session.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		newInterpreter := func() (*lang.Interpreter, error) {
			return syntheticInterpreter(cmd, replFrames, replTimebase)
		}
		if len(args) == 1 {
			pipe, err := pipeline.New(log.Logger, nil, config.FromContext(cmd.Context()))
			if err != nil {
				return err
			}
			pipe.SetStdout(cmd.OutOrStdout())
			sess, err := pipe.Open(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			newInterpreter = func() (*lang.Interpreter, error) { return sess.Interpreter(), nil }
		}

		ip, err := newInterpreter()
		if err != nil {
			return err
		}
		return runREPL(cmd, ip, newInterpreter)
	},
}

func runREPL(cmd *cobra.Command, ip *lang.Interpreter, reset func() (*lang.Interpreter, error)) error {
	out := cmd.OutOrStdout()

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// Load history (best-effort)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		code, ok := readExpression(ln)
		if !ok {
			fmt.Fprintln(out)
			break
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(code, ":") {
			switch strings.Fields(code)[0] {
			case ":quit", ":exit":
				return saveHistory(ln, histPath)
			case ":help":
				fmt.Fprint(out, replHelp)
			case ":env":
				fmt.Fprintln(out, strings.Join(ip.Env().Names(), " "))
			case ":reset":
				fresh, err := reset()
				if err != nil {
					return err
				}
				ip = fresh
				fmt.Fprintln(out, "environment reset.")
			default:
				fmt.Fprintln(out, "unknown command. Type :help for help.")
			}
			continue
		}

		vals, err := ip.Eval(cmd.Context(), code)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		for _, v := range vals {
			if _, none := v.(lang.None); none {
				continue
			}
			fmt.Fprintln(out, v.String())
		}
	}

	return saveHistory(ln, histPath)
}

func saveHistory(ln *liner.State, path string) error {
	// best-effort
	if f, err := os.Create(path); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return nil
}

// readExpression reads lines until the buffer parses or fails for a reason
// other than running out of input
func readExpression(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the current input
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !needsMore(src) {
			return src, true
		}
	}
}

// needsMore reports whether src only fails to parse because a form is
// still open
func needsMore(src string) bool {
	_, err := lang.Parse(src)
	return lang.IsKind(err, lang.ParseError) && strings.Contains(err.Error(), "unexpected end of input")
}

func init() {
	replCmd.Flags().IntVar(&replFrames, "frames", 30, "frame count of the synthetic input")
	replCmd.Flags().StringVar(&replTimebase, "timebase", "30", "frame rate of the synthetic input")
}
