package selector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, word := range []string{"audio", "audio:0.1", "motion:blur=3", "none", "all", "random:"} {
		_, ok := Lookup(word)
		assert.True(t, ok, word)
	}
	for _, word := range []string{"audiox", "al", "x:audio", "pixel"} {
		_, ok := Lookup(word)
		assert.False(t, ok, word)
	}
}

func TestParseDefaults(t *testing.T) {
	tests := []struct {
		raw  string
		want Options
	}{
		{"audio", AudioOptions{Threshold: 0.04, Stream: Stream{Index: 0}}},
		{"motion", MotionOptions{Threshold: 0.02, Stream: 0, Blur: 9, Width: 400}},
		{"pixeldiff", PixeldiffOptions{Threshold: 1, Stream: 0}},
		{"random", RandomOptions{Threshold: 0.5, Seed: -1}},
		{"none", NoOptions{M: None}},
		{"all", NoOptions{M: All}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRaw(tt.raw, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Method(), got.Method())
		})
	}
}

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		raw  string
		want Options
	}{
		{"audio:0.1", AudioOptions{Threshold: 0.1}},
		{"audio:threshold=10%", AudioOptions{Threshold: 0.1}},
		{"audio:stream=all", AudioOptions{Threshold: 0.04, Stream: Stream{All: true}}},
		{"audio:0.2,stream=3", AudioOptions{Threshold: 0.2, Stream: Stream{Index: 3}}},
		{"motion:0.1,1,0,width", MotionOptions{Threshold: 0.1, Stream: 1, Blur: 0, Width: 640}},
		{"motion:width=200", MotionOptions{Threshold: 0.02, Blur: 9, Width: 200}},
		{"pixeldiff:threshold=20", PixeldiffOptions{Threshold: 20}},
		{"random:seed=42,threshold=0.9", RandomOptions{Threshold: 0.9, Seed: 42}},
		{"random:", RandomOptions{Threshold: 0.5, Seed: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRaw(tt.raw, Vars{"width": 640})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		raw    string
		option string
		msg    string
	}{
		{"audio:volume=3", "volume", "unknown option"},
		{"audio:threshold=abc", "threshold", "not a number"},
		{"audio:threshold=1.5", "threshold", "between 0 and 1"},
		{"audio:threshold=-1%", "threshold", "between 0 and 1"},
		{"audio:threshold=nan", "threshold", "between 0 and 1"},
		{"motion:threshold=NaN%", "threshold", "between 0 and 1"},
		{"random:threshold=+Inf", "threshold", "between 0 and 1"},
		{"audio:stream=-1", "stream", "at least 0"},
		{"audio:threshold=", "threshold", "missing value"},
		{"audio:threshold=0.1,threshold=0.2", "threshold", "more than once"},
		{"audio:stream=1,0.2", "", "follows keyword"},
		{"audio:0.1,0,9", "", "too many arguments"},
		{"motion:stream=all", "stream", "not allowed"},
		{"motion:width=0", "width", "at least 1"},
		{"motion:width=height", "width", "not an integer"},
		{"pixeldiff:threshold=0.5", "threshold", "not an integer"},
		{"all:1", "", "takes no attributes"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := ParseRaw(tt.raw, Vars{"width": 640})
			require.Error(t, err)
			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.option, ce.Option)
			assert.Contains(t, ce.Msg, tt.msg)
		})
	}
}

func TestSplitUnknownMethod(t *testing.T) {
	_, _, err := Split("loudness:0.5")
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, Method("loudness"), ce.Method)
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Method: Audio, Option: "stream", Msg: "bad"}
	assert.Equal(t, `audio: option "stream": bad`, err.Error())
	err = &ConfigError{Method: None, Msg: "takes no attributes"}
	assert.Equal(t, "none: takes no attributes", err.Error())
}

func TestStreamString(t *testing.T) {
	assert.Equal(t, "all", Stream{All: true}.String())
	assert.Equal(t, "2", Stream{Index: 2}.String())
}
