package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "audio", cfg.Edit.Expression)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autocut.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
concurrency: 2
ffmpeg:
  threads: 8
edit:
  expression: "(or audio motion:threshold=0.1)"
  margin: 0.2s
  export: yaml
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 8, cfg.FFmpeg.Threads)
	assert.Equal(t, "medium", cfg.FFmpeg.Preset)
	assert.Equal(t, "(or audio motion:threshold=0.1)", cfg.Edit.Expression)
	assert.Equal(t, "0.2s", cfg.Edit.Margin)
	assert.Equal(t, "yaml", cfg.Edit.Export)
	assert.Equal(t, "3", cfg.Edit.MinClip)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autocut.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
concurrency = 3

[edit]
expression = "motion"
strict = true

[analysis]
sample_rate = 16000
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, "motion", cfg.Edit.Expression)
	assert.True(t, cfg.Edit.Strict)
	assert.Equal(t, 16000, cfg.Analysis.SampleRate)
	assert.Equal(t, 2, cfg.Analysis.Channels)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("concurrency: [1"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	zero := filepath.Join(dir, "zero.yaml")
	require.NoError(t, os.WriteFile(zero, []byte("concurrency: 0"), 0644))
	_, err = Load(zero)
	assert.ErrorContains(t, err, "concurrency")

	export := filepath.Join(dir, "export.toml")
	require.NoError(t, os.WriteFile(export, []byte("[edit]\nexport = \"xml\"\n"), 0644))
	_, err = Load(export)
	assert.ErrorContains(t, err, "unknown export format")
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Edit.Expression = "(not audio)"
			cfg.FFmpeg.CopyCodec = true

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, cfg.Save(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestContext(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))

	cfg := Default()
	cfg.Concurrency = 9
	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
