package util

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// FormatDuration converts time.Duration to ffmpeg timestamp format
func FormatDuration(d time.Duration) string {
	seconds := d.Seconds()
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// ParseFrameRate parses an ffprobe rate such as "30000/1001" or "25".
// Zero and undefined rates ("0/0") are errors.
func ParseFrameRate(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty frame rate")
	}
	num, den, found := strings.Cut(s, "/")
	if !found {
		den = "1"
	}
	n, ok := new(big.Int).SetString(num, 10)
	if !ok {
		return nil, fmt.Errorf("invalid frame rate: %s", s)
	}
	d, ok := new(big.Int).SetString(den, 10)
	if !ok {
		return nil, fmt.Errorf("invalid frame rate: %s", s)
	}
	if n.Sign() <= 0 || d.Sign() <= 0 {
		return nil, fmt.Errorf("invalid frame rate: %s", s)
	}
	return new(big.Rat).SetFrac(n, d), nil
}

// RoundRat rounds r to the nearest integer, ties to even
func RoundRat(r *big.Rat) int64 {
	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	// compare 2|m| with the denominator
	twice := new(big.Int).Lsh(new(big.Int).Abs(m), 1)
	switch c := twice.Cmp(r.Denom()); {
	case c > 0, c == 0 && q.Bit(0) == 1:
		if r.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q.Int64()
}

// FramesToDuration converts a frame index to wall time at the given timebase
func FramesToDuration(frames int64, timebase *big.Rat) time.Duration {
	if timebase == nil || timebase.Sign() <= 0 {
		return 0
	}
	nanos := new(big.Rat).SetFrac64(frames*int64(time.Second), 1)
	nanos.Quo(nanos, timebase)
	return time.Duration(RoundRat(nanos))
}
