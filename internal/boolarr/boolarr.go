// Package boolarr implements the per-frame keep/cut array operators used by
// edit expressions: cyclic resizing, element-wise logic, margins and
// small-run smoothing.
package boolarr

import "strings"

// Chunk is a maximal run of frames sharing the same keep/cut decision.
// End is exclusive.
type Chunk struct {
	Start int  `json:"start" yaml:"start"`
	End   int  `json:"end" yaml:"end"`
	Keep  bool `json:"keep" yaml:"keep"`
}

// Len returns the number of frames in the chunk
func (c Chunk) Len() int {
	return c.End - c.Start
}

// Filled returns an array of n entries all set to v
func Filled(n int, v bool) []bool {
	out := make([]bool, n)
	if v {
		for i := range out {
			out[i] = true
		}
	}
	return out
}

// Resize returns a new array of n entries built by repeating arr cyclically.
// An empty arr yields all-false.
func Resize(arr []bool, n int) []bool {
	out := make([]bool, n)
	if len(arr) == 0 {
		return out
	}
	for i := range out {
		out[i] = arr[i%len(arr)]
	}
	return out
}

// Combine applies op element-wise. The shorter operand is first resized to
// the longer length.
func Combine(a, b []bool, op func(x, y bool) bool) []bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if len(a) != n {
		a = Resize(a, n)
	}
	if len(b) != n {
		b = Resize(b, n)
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = op(a[i], b[i])
	}
	return out
}

// Or returns a | b
func Or(a, b []bool) []bool {
	return Combine(a, b, func(x, y bool) bool { return x || y })
}

// And returns a & b
func And(a, b []bool) []bool {
	return Combine(a, b, func(x, y bool) bool { return x && y })
}

// Xor returns a ^ b
func Xor(a, b []bool) []bool {
	return Combine(a, b, func(x, y bool) bool { return x != y })
}

// Not returns the element-wise complement of arr
func Not(arr []bool) []bool {
	out := make([]bool, len(arr))
	for i, v := range arr {
		out[i] = !v
	}
	return out
}

// CountTrue returns the number of true entries
func CountTrue(arr []bool) int {
	n := 0
	for _, v := range arr {
		if v {
			n++
		}
	}
	return n
}

// Margin widens every run of true by start frames on its left edge and end
// frames on its right edge. Negative values shrink the run instead. Writes are
// clamped to the array bounds and arr is left untouched.
func Margin(arr []bool, start, end int) []bool {
	n := len(arr)
	out := make([]bool, n)
	copy(out, arr)

	var rising, falling []int
	for j := 1; j < n; j++ {
		if arr[j] != arr[j-1] {
			if arr[j] {
				rising = append(rising, j)
			} else {
				falling = append(falling, j)
			}
		}
	}

	switch {
	case start > 0:
		for _, i := range rising {
			fill(out, max(i-start, 0), i, true)
		}
	case start < 0:
		for _, i := range rising {
			fill(out, i, min(i-start, n), false)
		}
	}

	switch {
	case end > 0:
		for _, i := range falling {
			fill(out, i, min(i+end, n), true)
		}
	case end < 0:
		for _, i := range falling {
			fill(out, max(i+end, 0), i, false)
		}
	}
	return out
}

// RemoveSmall flips every run of target shorter than lim frames to !target.
func RemoveSmall(arr []bool, lim int, target bool) []bool {
	out := make([]bool, len(arr))
	copy(out, arr)
	if lim <= 1 {
		return out
	}

	runStart := -1
	for j, v := range arr {
		if v == target {
			if runStart < 0 {
				runStart = j
			}
			continue
		}
		if runStart >= 0 && j-runStart < lim {
			fill(out, runStart, j, !target)
		}
		runStart = -1
	}
	if runStart >= 0 && len(arr)-runStart < lim {
		fill(out, runStart, len(arr), !target)
	}
	return out
}

// MinCut removes cuts (runs of false) shorter than lim frames
func MinCut(arr []bool, lim int) []bool {
	return RemoveSmall(arr, lim, false)
}

// MinClip removes clips (runs of true) shorter than lim frames
func MinClip(arr []bool, lim int) []bool {
	return RemoveSmall(arr, lim, true)
}

// Cook drops short clips and then fills short cuts.
func Cook(arr []bool, minClip, minCut int) []bool {
	return MinCut(MinClip(arr, minClip), minCut)
}

// Mark returns a copy of arr with frames [start, end) set to keep. The
// range is clamped to the array; an empty range changes nothing.
func Mark(arr []bool, start, end int, keep bool) []bool {
	out := make([]bool, len(arr))
	copy(out, arr)
	fill(out, max(start, 0), min(end, len(out)), keep)
	return out
}

// Chunks splits arr into maximal runs of equal value
func Chunks(arr []bool) []Chunk {
	var chunks []Chunk
	for i := 0; i < len(arr); {
		j := i + 1
		for j < len(arr) && arr[j] == arr[i] {
			j++
		}
		chunks = append(chunks, Chunk{Start: i, End: j, Keep: arr[i]})
		i = j
	}
	return chunks
}

// String renders arr as a boolarr literal, e.g. "(boolarr 1 0 1)"
func String(arr []bool) string {
	var b strings.Builder
	b.WriteString("(boolarr")
	for _, v := range arr {
		if v {
			b.WriteString(" 1")
		} else {
			b.WriteString(" 0")
		}
	}
	b.WriteString(")")
	return b.String()
}

func fill(arr []bool, from, to int, v bool) {
	for i := from; i < to; i++ {
		arr[i] = v
	}
}
