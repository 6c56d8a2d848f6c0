package ffmpeg

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// FilterBuilder helps construct ffmpeg filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// Scale adds a scale filter
func (fb *FilterBuilder) Scale(width, height int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		// Return self without adding filter - allows chaining to continue
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("scale=%d:%d", width, height))
	return fb
}

// FrameRate adds an fps filter at an exact rational rate
func (fb *FilterBuilder) FrameRate(rate *big.Rat) *FilterBuilder {
	if rate == nil || rate.Sign() <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, "fps="+rate.RatString())
	return fb
}

// Format adds a pixel format conversion
func (fb *FilterBuilder) Format(pixFmt string) *FilterBuilder {
	if pixFmt == "" {
		return fb
	}
	fb.filters = append(fb.filters, "format="+pixFmt)
	return fb
}

// GaussianBlur adds a gblur filter
func (fb *FilterBuilder) GaussianBlur(sigma float64) *FilterBuilder {
	if !(sigma > 0) {
		return fb
	}
	fb.filters = append(fb.filters, "gblur=sigma="+strconv.FormatFloat(sigma, 'f', -1, 64))
	return fb
}

// Custom adds a custom filter string
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	fb.filters = append(fb.filters, filter)
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}
