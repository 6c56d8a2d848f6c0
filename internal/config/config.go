package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir     string `yaml:"work_dir" toml:"work_dir"`
	TempDir     string `yaml:"temp_dir" toml:"temp_dir"`
	Concurrency int    `yaml:"concurrency" toml:"concurrency"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg" toml:"ffmpeg"`

	// Edit defaults
	Edit EditConfig `yaml:"edit" toml:"edit"`

	// Level analysis settings
	Analysis AnalysisConfig `yaml:"analysis" toml:"analysis"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path" toml:"binary_path"`
	ProbePath  string `yaml:"probe_path" toml:"probe_path"`
	Threads    int    `yaml:"threads" toml:"threads"`
	Preset     string `yaml:"preset" toml:"preset"`
	CRF        int    `yaml:"crf" toml:"crf"`
	VideoCodec string `yaml:"video_codec" toml:"video_codec"`
	AudioCodec string `yaml:"audio_codec" toml:"audio_codec"`
	// CopyCodec extracts kept clips without re-encoding. Cuts then snap to
	// keyframes.
	CopyCodec bool `yaml:"copy_codec" toml:"copy_codec"`
}

// EditConfig holds the defaults of `autocut edit`. Margin, MinClip and
// MinCut are edit-language atoms: a frame count like "6" or a duration
// like "0.2s".
type EditConfig struct {
	Expression string `yaml:"expression" toml:"expression"`
	Margin     string `yaml:"margin" toml:"margin"`
	MinClip    string `yaml:"min_clip" toml:"min_clip"`
	MinCut     string `yaml:"min_cut" toml:"min_cut"`
	Export     string `yaml:"export" toml:"export"`
	Suffix     string `yaml:"suffix" toml:"suffix"`
	Strict     bool   `yaml:"strict" toml:"strict"`
}

type AnalysisConfig struct {
	SampleRate int `yaml:"sample_rate" toml:"sample_rate"`
	Channels   int `yaml:"channels" toml:"channels"`
}

// Load reads configuration from file or returns defaults. The decoder is
// chosen by extension: .toml, otherwise yaml.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(c)
		data = buf.Bytes()
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings no command can run with
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	switch c.Edit.Export {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("unknown export format %q", c.Edit.Export)
	}
	if c.Analysis.SampleRate < 0 || c.Analysis.Channels < 0 {
		return fmt.Errorf("analysis sample rate and channels must not be negative")
	}
	return nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		WorkDir:     "./work",
		TempDir:     "",
		Concurrency: 4,
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
			Preset:     "medium",
			CRF:        23,
		},
		Edit: EditConfig{
			Expression: "audio",
			Margin:     "6",
			MinClip:    "3",
			MinCut:     "6",
			Suffix:     "_ALTERED",
		},
		Analysis: AnalysisConfig{
			SampleRate: 48000,
			Channels:   2,
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func findConfigFile() string {
	candidates := []string{
		"./autocut.yaml",
		"./autocut.yml",
		"./autocut.toml",
		filepath.Join(os.Getenv("HOME"), ".autocut", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
