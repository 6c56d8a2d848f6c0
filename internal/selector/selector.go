// Package selector parses array-selector atoms such as "audio:threshold=0.04"
// into typed option records.
package selector

import (
	"fmt"
	"strings"
)

// Method names a per-frame level source
type Method string

const (
	Audio     Method = "audio"
	Motion    Method = "motion"
	Pixeldiff Method = "pixeldiff"
	Random    Method = "random"
	None      Method = "none"
	All       Method = "all"
)

// Methods lists every selector method
var Methods = []Method{Audio, Motion, Pixeldiff, Random, None, All}

const attrsSep = ":"

// Lookup reports whether word is a selector: a method name on its own or
// followed by ":" and an attribute string.
func Lookup(word string) (Method, bool) {
	for _, m := range Methods {
		if word == string(m) || strings.HasPrefix(word, string(m)+attrsSep) {
			return m, true
		}
	}
	return "", false
}

// Split separates a raw selector into its method and attribute text
func Split(raw string) (Method, string, error) {
	name, attrs, _ := strings.Cut(raw, attrsSep)
	m, ok := Lookup(name)
	if !ok {
		return "", "", &ConfigError{Method: Method(name), Msg: "unknown selector method"}
	}
	return m, attrs, nil
}

// ConfigError reports a selector attribute that failed to parse
type ConfigError struct {
	Method Method
	Option string
	Msg    string
}

func (e *ConfigError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("%s: %s", e.Method, e.Msg)
	}
	return fmt.Sprintf("%s: option %q: %s", e.Method, e.Option, e.Msg)
}

// Vars holds named integers an attribute value may reference, e.g. "width"
type Vars map[string]int

// Options is implemented by every parsed option record
type Options interface {
	Method() Method
}

// Stream selects one stream by index, or every stream of a kind
type Stream struct {
	All   bool
	Index int
}

func (s Stream) String() string {
	if s.All {
		return "all"
	}
	return fmt.Sprint(s.Index)
}

// AudioOptions configures the audio loudness selector
type AudioOptions struct {
	Threshold float64
	Stream    Stream
}

// MotionOptions configures the motion selector
type MotionOptions struct {
	Threshold float64
	Stream    int
	Blur      int
	Width     int
}

// PixeldiffOptions configures the pixel difference selector
type PixeldiffOptions struct {
	Threshold int
	Stream    int
}

// RandomOptions configures the random selector. A negative seed means
// time-based.
type RandomOptions struct {
	Threshold float64
	Seed      int64
}

// NoOptions is returned for none and all
type NoOptions struct {
	M Method
}

func (AudioOptions) Method() Method     { return Audio }
func (MotionOptions) Method() Method    { return Motion }
func (PixeldiffOptions) Method() Method { return Pixeldiff }
func (RandomOptions) Method() Method    { return Random }
func (o NoOptions) Method() Method      { return o.M }

// Parse validates attrs against the schema of m and returns its options
func Parse(m Method, attrs string, vars Vars) (Options, error) {
	raw, err := collect(m, attrs)
	if err != nil {
		return nil, err
	}
	p := &reader{method: m, raw: raw, vars: vars}

	var opts Options
	switch m {
	case Audio:
		opts = AudioOptions{
			Threshold: p.fraction("threshold"),
			Stream:    p.stream("stream", true),
		}
	case Motion:
		opts = MotionOptions{
			Threshold: p.fraction("threshold"),
			Stream:    p.stream("stream", false).Index,
			Blur:      p.integer("blur", 0),
			Width:     p.integer("width", 1),
		}
	case Pixeldiff:
		opts = PixeldiffOptions{
			Threshold: p.integer("threshold", 0),
			Stream:    p.stream("stream", false).Index,
		}
	case Random:
		opts = RandomOptions{
			Threshold: p.fraction("threshold"),
			Seed:      int64(p.integer("seed", -1)),
		}
	case None, All:
		opts = NoOptions{M: m}
	default:
		return nil, &ConfigError{Method: m, Msg: "unknown selector method"}
	}
	if p.err != nil {
		return nil, p.err
	}
	return opts, nil
}

// ParseRaw is Split followed by Parse
func ParseRaw(raw string, vars Vars) (Options, error) {
	m, attrs, err := Split(raw)
	if err != nil {
		return nil, err
	}
	return Parse(m, attrs, vars)
}
