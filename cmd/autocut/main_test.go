package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kikiluvv/autocut/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml")))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := execute(t, "parse", "(margin 2 audio:threshold=0.1)")
	require.NoError(t, err)
	assert.Equal(t, "(margin 2 audio:threshold=0.1)\n", out)

	_, err = execute(t, "parse", "(5 1)")
	assert.ErrorContains(t, err, "expected procedure")
}

func TestEvalCommand(t *testing.T) {
	out, err := execute(t, "eval", "--frames", "4", "(not (boolarr 1 0 0 1))")
	require.NoError(t, err)
	assert.Equal(t, "(boolarr 0 1 1 0)\n", out)

	out, err = execute(t, "eval", "--frames", "3", "--timebase", "2", "(display timebase) all")
	require.NoError(t, err)
	assert.Equal(t, "2(boolarr 1 1 1)\n", out)

	_, err = execute(t, "eval", "--frames", "3", "audio")
	assert.ErrorContains(t, err, "audio stream 0 does not exist")

	_, err = execute(t, "eval", "--timebase", "0/0", "all")
	assert.ErrorContains(t, err, "--timebase")
}

func TestNeedsMore(t *testing.T) {
	assert.True(t, needsMore("(or audio"))
	assert.True(t, needsMore("(define x\n  (margin 2"))
	assert.False(t, needsMore("(or audio all)"))
	assert.False(t, needsMore("(5 1)"))
	assert.False(t, needsMore(`"open`))
}

func TestEditExpression(t *testing.T) {
	expr, err := editExpression("audio", "")
	require.NoError(t, err)
	assert.Equal(t, "audio", expr)

	path := filepath.Join(t.TempDir(), "cut.edit")
	require.NoError(t, os.WriteFile(path, []byte("(not motion)"), 0644))
	expr, err = editExpression("audio", path)
	require.NoError(t, err)
	assert.Equal(t, "(not motion)", expr)

	_, err = editExpression("", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestEditMarks(t *testing.T) {
	opts, err := editMarks([]string{"0,2s"}, nil, []string{"10,end", "start,3"})
	require.NoError(t, err)
	assert.Equal(t, []pipeline.Range{{Start: "0", End: "2s"}}, opts.MarkLoud)
	assert.Empty(t, opts.MarkSilent)
	assert.Equal(t, []pipeline.Range{{Start: "10", End: "end"}, {Start: "start", End: "3"}}, opts.CutOut)

	_, err = editMarks(nil, []string{"5"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--mark-as-silent")
}

func TestWatchEditsRunsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cut.edit")
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runs := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchEdits(ctx, path, func() { runs <- struct{}{} })
	}()

	// give the watcher time to register
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("motion"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other"), []byte("x"), 0644))

	select {
	case <-runs:
	case <-ctx.Done():
		t.Fatal("edit file change was not picked up")
	}

	cancel()
	assert.NoError(t, <-done)
}
