package lang

import "context"

// Run evaluates an edit program against a fresh environment and returns the
// per-frame keep decision produced by its last expression.
func Run(ctx context.Context, text string, opts Options) ([]bool, error) {
	return New(opts).Decide(ctx, text)
}

// Decide evaluates text in the interpreter's environment and requires its
// last expression to be a boolarr.
func (ip *Interpreter) Decide(ctx context.Context, text string) ([]bool, error) {
	results, err := ip.Eval(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, newError(EvalError, "Expression in --edit must return a boolarr, got an empty program")
	}
	arr, ok := results[len(results)-1].(BoolArr)
	if !ok {
		return nil, newError(EvalError, "Expression in --edit must return a boolarr")
	}
	return arr, nil
}
