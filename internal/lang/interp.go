package lang

import (
	"context"
	"errors"
	"io"
	"math"
	"math/big"
	"os"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/autocut/internal/boolarr"
	"github.com/kikiluvv/autocut/internal/selector"
)

// Options configures an Interpreter
type Options struct {
	Source   Source
	Provider LevelProvider
	// Stdout receives display output. Defaults to os.Stdout.
	Stdout io.Writer
	Logger zerolog.Logger
}

// Interpreter evaluates parsed programs against one source. Its environment
// lives as long as the Interpreter.
type Interpreter struct {
	logger   zerolog.Logger
	src      Source
	provider LevelProvider
	out      io.Writer
	env      *Env
}

// New creates an interpreter with a freshly seeded environment
func New(opts Options) *Interpreter {
	if opts.Source.Timebase == nil {
		opts.Source.Timebase = big.NewRat(30, 1)
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	ip := &Interpreter{
		logger:   opts.Logger,
		src:      opts.Source,
		provider: opts.Provider,
		out:      opts.Stdout,
		env:      NewEnv(),
	}
	ip.env.Define("true", Bool(true))
	ip.env.Define("false", Bool(false))
	ip.env.Define("pi", Float(math.Pi))
	ip.env.Define("timebase", exactRat(new(big.Rat).Set(opts.Source.Timebase)))
	return ip
}

// Env returns the interpreter's environment
func (ip *Interpreter) Env() *Env {
	return ip.env
}

// Eval parses text and evaluates every top-level expression, returning
// their values in order.
func (ip *Interpreter) Eval(ctx context.Context, text string) ([]Value, error) {
	prog, err := Parse(text)
	if err != nil {
		return nil, err
	}
	if e := ip.logger.Debug(); e.Enabled() {
		e.Str("edit", prog.String()).Msg("parsed edit expression")
	}
	return ip.EvalProgram(ctx, prog)
}

// EvalProgram evaluates an already parsed program
func (ip *Interpreter) EvalProgram(ctx context.Context, prog *Compound) ([]Value, error) {
	results := make([]Value, 0, len(prog.Children))
	for _, child := range prog.Children {
		v, err := ip.visit(ctx, child)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}

func (ip *Interpreter) visit(ctx context.Context, node Node) (Value, error) {
	switch n := node.(type) {
	case *NumLit:
		return n.Val, nil
	case *StrLit:
		return Str(n.Val), nil
	case *BoolLit:
		return Bool(n.Val), nil
	case *Var:
		v, ok := ip.env.Get(n.Name)
		if !ok {
			return nil, newError(EvalError, "%s is undefined", n.Name)
		}
		return v, nil
	case *SelectorLit:
		return ip.resolveSelector(ctx, n.Raw)
	case *ManyOp:
		return ip.apply(ctx, n)
	case *Compound:
		results, err := ip.EvalProgram(ctx, n)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return None{}, nil
		}
		return results[len(results)-1], nil
	}
	return nil, newError(EvalError, "unknown node %T", node)
}

func (ip *Interpreter) apply(ctx context.Context, n *ManyOp) (Value, error) {
	if n.Op.Type == TokDefine || n.Op.Type == TokSet {
		return ip.assign(ctx, n)
	}

	prim, ok := primitives[n.Op.Type]
	if !ok {
		return nil, newError(EvalError, "%s is not a procedure", n.Op.Text)
	}

	args := make([]Value, len(n.Children))
	for i, child := range n.Children {
		v, err := ip.visit(ctx, child)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if err := checkArgs(n.Op, prim, args); err != nil {
		return nil, err
	}
	return prim.call(ip, n.Op, args)
}

func (ip *Interpreter) assign(ctx context.Context, n *ManyOp) (Value, error) {
	if len(n.Children) != 2 {
		return nil, newError(EvalError, "%s needs a name and a value, got %d forms", n.Op.Text, len(n.Children))
	}
	target, ok := n.Children[0].(*Var)
	if !ok {
		return nil, newError(EvalError, "Variable must be set with a symbol, got %s", n.Children[0])
	}
	if n.Op.Type == TokSet && !ip.env.Has(target.Name) {
		return nil, newError(EvalError, "Cannot set variable %s before definition", target.Name)
	}
	v, err := ip.visit(ctx, n.Children[1])
	if err != nil {
		return nil, err
	}
	ip.env.Define(target.Name, v)
	return None{}, nil
}

func (ip *Interpreter) resolveSelector(ctx context.Context, raw string) (Value, error) {
	width := 1
	if len(ip.src.Videos) > 0 {
		width = ip.src.Videos[0].Width
	}
	opts, err := selector.ParseRaw(raw, selector.Vars{"width": width})
	if err != nil {
		var ce *selector.ConfigError
		if errors.As(err, &ce) {
			return nil, &Error{Kind: ConfigError, Msg: ce.Error()}
		}
		return nil, &Error{Kind: ConfigError, Msg: raw, Err: err}
	}

	total := ip.src.TotalFrames
	switch o := opts.(type) {
	case selector.NoOptions:
		return BoolArr(boolarr.Filled(total, o.M == selector.All)), nil
	case selector.AudioOptions:
		return ip.audio(ctx, o)
	case selector.MotionOptions:
		if err := ip.checkStream("video", o.Stream, len(ip.src.Videos)); err != nil {
			return ip.missing(err)
		}
		levels, err := ip.levels(func(p LevelProvider) ([]float64, error) { return p.MotionLevels(ctx, o) })
		if err != nil {
			return nil, err
		}
		return threshold(levels, o.Threshold), nil
	case selector.PixeldiffOptions:
		if err := ip.checkStream("video", o.Stream, len(ip.src.Videos)); err != nil {
			return ip.missing(err)
		}
		levels, err := ip.levels(func(p LevelProvider) ([]float64, error) { return p.PixeldiffLevels(ctx, o.Stream) })
		if err != nil {
			return nil, err
		}
		return threshold(levels, float64(o.Threshold)), nil
	case selector.RandomOptions:
		levels, err := ip.levels(func(p LevelProvider) ([]float64, error) { return p.RandomLevels(ctx, o.Seed) })
		if err != nil {
			return nil, err
		}
		return threshold(levels, o.Threshold), nil
	}
	return nil, newError(EvalError, "unhandled selector %s", raw)
}

func (ip *Interpreter) audio(ctx context.Context, o selector.AudioOptions) (Value, error) {
	streams := []int{o.Stream.Index}
	if o.Stream.All {
		if ip.src.AudioStreams == 0 {
			return ip.missing(newError(EvalError, "Input has no audio streams"))
		}
		streams = streams[:0]
		for s := 0; s < ip.src.AudioStreams; s++ {
			streams = append(streams, s)
		}
	} else if err := ip.checkStream("audio", o.Stream.Index, ip.src.AudioStreams); err != nil {
		return ip.missing(err)
	}

	var result []bool
	for _, s := range streams {
		levels, err := ip.levels(func(p LevelProvider) ([]float64, error) { return p.AudioLevels(ctx, s) })
		if err != nil {
			return nil, err
		}
		arr := threshold(levels, o.Threshold)
		if result == nil {
			result = arr
		} else {
			result = boolarr.Or(result, arr)
		}
	}
	return BoolArr(result), nil
}

func (ip *Interpreter) checkStream(kind string, index, count int) error {
	if index >= count {
		return newError(EvalError, "%s stream %d does not exist (input has %d)", kind, index, count)
	}
	return nil
}

// missing fails in strict mode and otherwise keeps every frame.
func (ip *Interpreter) missing(err error) (Value, error) {
	if ip.src.Strict {
		return nil, err
	}
	ip.logger.Warn().Err(err).Msg("keeping all frames")
	return BoolArr(boolarr.Filled(ip.src.TotalFrames, true)), nil
}

func (ip *Interpreter) levels(fn func(LevelProvider) ([]float64, error)) ([]float64, error) {
	if ip.provider == nil {
		return nil, newError(EvalError, "no level provider for this input")
	}
	levels, err := fn(ip.provider)
	if err != nil {
		return nil, &Error{Kind: EvalError, Msg: "level analysis failed", Err: err}
	}
	return levels, nil
}

func threshold(levels []float64, t float64) BoolArr {
	arr := make(BoolArr, len(levels))
	for i, l := range levels {
		arr[i] = l >= t
	}
	return arr
}
