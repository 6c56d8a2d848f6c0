package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	r, err := ParseRange("start, 2.5s")
	require.NoError(t, err)
	assert.Equal(t, Range{Start: "start", End: "2.5s"}, r)
	assert.Equal(t, "start,2.5s", r.String())

	for _, bad := range []string{"", "1", "1,2,3", ",2", "1, "} {
		_, err := ParseRange(bad)
		assert.Error(t, err, bad)
	}

	ranges, err := ParseRanges([]string{"0,1", "4,end"})
	require.NoError(t, err)
	assert.Equal(t, []Range{{"0", "1"}, {"4", "end"}}, ranges)

	_, err = ParseRanges([]string{"0,1", "4"})
	assert.Error(t, err)
}

func TestAnalyzeMarksRanges(t *testing.T) {
	p, _ := testPipeline(t)

	// audio keeps frames 1, 4 and 5
	tests := []struct {
		name string
		opts AnalyzeOptions
		want []bool
	}{
		{"loud", AnalyzeOptions{MarkLoud: []Range{{"2", "3"}}},
			[]bool{false, true, true, false, true, true}},
		{"silent", AnalyzeOptions{MarkSilent: []Range{{"start", "2"}}},
			[]bool{false, false, false, false, true, true}},
		{"cut out to end", AnalyzeOptions{CutOut: []Range{{"5s", "end"}}},
			[]bool{false, true, false, false, true, false}},
		{"loud overrides silent", AnalyzeOptions{
			MarkSilent: []Range{{"start", "end"}},
			MarkLoud:   []Range{{"1", "3"}},
		}, []bool{false, true, true, false, false, false}},
		{"cut out overrides loud", AnalyzeOptions{
			MarkLoud: []Range{{"start", "end"}},
			CutOut:   []Range{{"0", "2"}},
		}, []bool{false, false, true, true, true, true}},
		{"after margin", AnalyzeOptions{Margin: "1", CutOut: []Range{{"0", "1"}}},
			[]bool{false, true, true, true, true, true}},
		{"clamped past the end", AnalyzeOptions{MarkLoud: []Range{{"3", "100"}}},
			[]bool{false, true, false, true, true, true}},
		{"empty range", AnalyzeOptions{CutOut: []Range{{"4", "4"}}},
			[]bool{false, true, false, false, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, err := p.Analyze(context.Background(), "talk.mp4", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, project.Decision())
		})
	}
}

func TestAnalyzeMarkErrors(t *testing.T) {
	p, _ := testPipeline(t)

	tests := []struct {
		bound string
		msg   string
	}{
		{"1.5", "exact frame count"},
		{"-1", "must not be negative"},
		{"1 2", "single frame count"},
		{"nowhere", "nowhere is undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.bound, func(t *testing.T) {
			_, err := p.Analyze(context.Background(), "talk.mp4", AnalyzeOptions{
				CutOut: []Range{{"0", tt.bound}},
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
