package selector

import (
	"fmt"
	"strconv"
	"strings"
)

// Option declares one attribute accepted by a method
type Option struct {
	Name    string
	Default string
}

// Schemas holds the declared options of every method, in positional order
var Schemas = map[Method][]Option{
	Audio: {
		{Name: "threshold", Default: "0.04"},
		{Name: "stream", Default: "0"},
	},
	Motion: {
		{Name: "threshold", Default: "0.02"},
		{Name: "stream", Default: "0"},
		{Name: "blur", Default: "9"},
		{Name: "width", Default: "400"},
	},
	Pixeldiff: {
		{Name: "threshold", Default: "1"},
		{Name: "stream", Default: "0"},
	},
	Random: {
		{Name: "threshold", Default: "0.5"},
		{Name: "seed", Default: "-1"},
	},
	None: nil,
	All:  nil,
}

// collect maps every declared option to its raw text, applying defaults.
func collect(m Method, attrs string) (map[string]string, error) {
	schema, ok := Schemas[m]
	if !ok {
		return nil, &ConfigError{Method: m, Msg: "unknown selector method"}
	}

	raw := make(map[string]string, len(schema))
	for _, o := range schema {
		raw[o.Name] = o.Default
	}
	if attrs == "" {
		return raw, nil
	}
	if len(schema) == 0 {
		return nil, &ConfigError{Method: m, Msg: "takes no attributes"}
	}

	seen := make(map[string]bool)
	keyword := false
	for i, part := range strings.Split(attrs, ",") {
		key, val, hasKey := strings.Cut(part, "=")
		if !hasKey {
			if keyword {
				return nil, &ConfigError{Method: m, Msg: fmt.Sprintf("positional argument %q follows keyword argument", part)}
			}
			if i >= len(schema) {
				return nil, &ConfigError{Method: m, Msg: fmt.Sprintf("too many arguments, takes at most %d", len(schema))}
			}
			key, val = schema[i].Name, part
		} else {
			keyword = true
			if _, ok := raw[key]; !ok {
				return nil, &ConfigError{Method: m, Option: key, Msg: "unknown option"}
			}
		}
		if val == "" {
			return nil, &ConfigError{Method: m, Option: key, Msg: "missing value"}
		}
		if seen[key] {
			return nil, &ConfigError{Method: m, Option: key, Msg: "given more than once"}
		}
		seen[key] = true
		raw[key] = val
	}
	return raw, nil
}

// reader converts raw attribute text into typed values, keeping the first
// error it meets.
type reader struct {
	method Method
	raw    map[string]string
	vars   Vars
	err    error
}

func (r *reader) fail(name, format string, args ...any) {
	if r.err == nil {
		r.err = &ConfigError{Method: r.method, Option: name, Msg: fmt.Sprintf(format, args...)}
	}
}

// fraction reads a float in [0, 1]; a trailing "%" divides by 100.
func (r *reader) fraction(name string) float64 {
	s := r.raw[name]
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 100
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(name, "%q is not a number", r.raw[name])
		return 0
	}
	f /= scale
	if !(f >= 0 && f <= 1) {
		r.fail(name, "%v must be between 0 and 1", f)
		return 0
	}
	return f
}

// integer reads an int >= lo, resolving variable names through vars.
func (r *reader) integer(name string, lo int) int {
	s := r.raw[name]
	n, err := strconv.Atoi(s)
	if err != nil {
		v, ok := r.vars[s]
		if !ok {
			r.fail(name, "%q is not an integer", s)
			return 0
		}
		n = v
	}
	if n < lo {
		r.fail(name, "%d must be at least %d", n, lo)
		return 0
	}
	return n
}

func (r *reader) stream(name string, allowAll bool) Stream {
	if r.raw[name] == "all" {
		if !allowAll {
			r.fail(name, `"all" is not allowed here`)
			return Stream{}
		}
		return Stream{All: true}
	}
	return Stream{Index: r.integer(name, 0)}
}
