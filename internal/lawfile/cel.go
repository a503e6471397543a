package lawfile

import (
	"fmt"
	"log/slog"
	"sort"

	"cuelang.org/go/cue/token"
	"github.com/google/cel-go/cel"

	"github.com/paracosm-io/paracosm/internal/ops"
	"github.com/paracosm-io/paracosm/internal/prop"
)

// exprEnv is the CEL environment shared by every expression in one
// lawfile. The entity's property bag is bound as `props`.
type exprEnv struct {
	env *cel.Env
}

func newExprEnv() (*exprEnv, error) {
	env, err := cel.NewEnv(
		cel.Variable("props", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, err
	}
	return &exprEnv{env: env}, nil
}

func (e *exprEnv) compile(field, expr string, pos token.Pos) (cel.Program, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("invalid CEL expression %q: %v", expr, issues.Err()),
			Pos:     pos,
		}
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("building CEL program for %q: %v", expr, err),
			Pos:     pos,
		}
	}
	return prg, nil
}

// predicate compiles a boolean CEL expression. Runtime evaluation
// failures (missing key, type mismatch) are logged and treated as false,
// consistent with the engine's fail-soft policy.
func (e *exprEnv) predicate(field, expr string, pos token.Pos) (ops.Predicate, error) {
	prg, err := e.compile(field, expr, pos)
	if err != nil {
		return nil, err
	}

	return func(p prop.Object) bool {
		out, _, err := prg.Eval(map[string]any{"props": p.ToMap()})
		if err != nil {
			slog.Warn("lawfile predicate evaluation failed",
				"expr", expr,
				"error", err,
			)
			return false
		}
		b, ok := out.Value().(bool)
		if !ok {
			slog.Warn("lawfile predicate returned non-bool",
				"expr", expr,
				"value", out.Value(),
			)
			return false
		}
		return b
	}, nil
}

// mutator compiles a struct of per-field CEL expressions into a single
// mutator that evaluates every expression against the current bag and
// writes the results into a clone. A field whose expression fails at
// runtime is logged and left unchanged.
func (e *exprEnv) mutator(field string, exprs map[string]string, pos token.Pos) (ops.Mutator, error) {
	keys := make([]string, 0, len(exprs))
	for k := range exprs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	programs := make(map[string]cel.Program, len(exprs))
	for _, k := range keys {
		prg, err := e.compile(field+"."+k, exprs[k], pos)
		if err != nil {
			return nil, err
		}
		programs[k] = prg
	}

	return func(p prop.Object) prop.Object {
		out := p.Clone()
		input := map[string]any{"props": p.ToMap()}
		for _, k := range keys {
			val, _, err := programs[k].Eval(input)
			if err != nil {
				slog.Warn("lawfile mutator field evaluation failed",
					"field", k,
					"expr", exprs[k],
					"error", err,
				)
				continue
			}
			pv, err := prop.FromAny(val.Value())
			if err != nil {
				slog.Warn("lawfile mutator produced unsupported value",
					"field", k,
					"error", err,
				)
				continue
			}
			out[k] = pv
		}
		return out
	}, nil
}
