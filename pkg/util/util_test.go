package util

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:01.500", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "01:02:03.000", FormatDuration(time.Hour+2*time.Minute+3*time.Second))
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"30/1", "30"},
		{"30000/1001", "30000/1001"},
		{"25", "25"},
		{"50/2", "25"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := ParseFrameRate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.RatString())
		})
	}

	for _, bad := range []string{"", "0/0", "0/1", "30/0", "abc", "-24/1", "29.97"} {
		_, err := ParseFrameRate(bad)
		assert.Error(t, err, bad)
	}
}

func TestRoundRat(t *testing.T) {
	tests := []struct {
		num, den int64
		want     int64
	}{
		{5, 2, 2},
		{7, 2, 4},
		{-5, 2, -2},
		{-7, 2, -4},
		{10, 3, 3},
		{11, 3, 4},
		{-11, 3, -4},
		{300300, 1001, 300},
		{0, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundRat(big.NewRat(tt.num, tt.den)), "%d/%d", tt.num, tt.den)
	}
}

func TestFramesToDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, FramesToDuration(60, big.NewRat(30, 1)))
	assert.Equal(t, 1001*time.Millisecond, FramesToDuration(30, big.NewRat(30000, 1001)))
	assert.Equal(t, time.Duration(0), FramesToDuration(10, nil))
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "in_ALTERED.mp4", WithSuffix("in.mp4", "_ALTERED", ""))
	assert.Equal(t, "dir/in_ALTERED.json", WithSuffix("dir/in.mp4", "_ALTERED", "json"))
	assert.Equal(t, "noext_x.yaml", WithSuffix("noext", "_x", ".yaml"))
}

func TestFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, FileExists(dir))

	f := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0644))
	CleanupFiles(f, filepath.Join(dir, "missing"))
	assert.False(t, FileExists(f))
}
