package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/kikiluvv/autocut/internal/boolarr"
	"github.com/kikiluvv/autocut/internal/lang"
)

// Range is a span of frames forced to keep or cut. Each bound is a frame
// number, a duration such as 2.5s, or "start"/"end". End is exclusive.
type Range struct {
	Start string
	End   string
}

func (r Range) String() string {
	return r.Start + "," + r.End
}

// ParseRange reads "start,end"
func ParseRange(s string) (Range, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("range %q needs exactly two comma separated bounds", s)
	}
	r := Range{Start: strings.TrimSpace(parts[0]), End: strings.TrimSpace(parts[1])}
	if r.Start == "" || r.End == "" {
		return Range{}, fmt.Errorf("range %q has an empty bound", s)
	}
	return r, nil
}

// ParseRanges reads every "start,end" in list
func ParseRanges(list []string) ([]Range, error) {
	ranges := make([]Range, 0, len(list))
	for _, s := range list {
		r, err := ParseRange(s)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// applyMarks forces the ranges of opts into decision. Bounds are evaluated
// by ip so durations use the input's timebase.
func applyMarks(ctx context.Context, ip *lang.Interpreter, decision []bool, opts AnalyzeOptions) ([]bool, error) {
	passes := []struct {
		ranges []Range
		keep   bool
	}{
		{opts.MarkSilent, false},
		{opts.MarkLoud, true},
		{opts.CutOut, false},
	}
	for _, pass := range passes {
		for _, r := range pass.ranges {
			start, err := frameBound(ctx, ip, r.Start, len(decision))
			if err != nil {
				return nil, fmt.Errorf("range %s: %w", r, err)
			}
			end, err := frameBound(ctx, ip, r.End, len(decision))
			if err != nil {
				return nil, fmt.Errorf("range %s: %w", r, err)
			}
			decision = boolarr.Mark(decision, start, end, pass.keep)
		}
	}
	return decision, nil
}

func frameBound(ctx context.Context, ip *lang.Interpreter, bound string, frames int) (int, error) {
	switch bound {
	case "start":
		return 0, nil
	case "end":
		return frames, nil
	}

	vals, err := ip.Eval(ctx, bound)
	if err != nil {
		return 0, err
	}
	if len(vals) != 1 {
		return 0, fmt.Errorf("bound %q must be a single frame count", bound)
	}
	n, ok := vals[0].(lang.Int)
	if !ok || !n.V.IsInt64() {
		return 0, fmt.Errorf("bound %q must be an exact frame count, got %s", bound, vals[0])
	}
	if n.V.Sign() < 0 {
		return 0, fmt.Errorf("bound %q must not be negative", bound)
	}
	return int(min(n.V.Int64(), int64(frames))), nil
}
