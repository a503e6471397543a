// Package lawfile compiles CUE lawfiles into executable operator lists.
//
// A lawfile is the external-collaborator surface of the engine: a .cue
// document declaring seeds, transforms, boundaries, and relocations,
// with CEL expressions over the entity's property bag (bound as `props`).
// Compilation happens in two stages: the CUE SDK loads and decodes the
// document (position-aware errors, no CLI subprocess), then every CEL
// expression is compiled up front so an invalid law fails at compile
// time rather than mid-pass.
package lawfile

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/paracosm-io/paracosm/internal/ops"
	"github.com/paracosm-io/paracosm/internal/prop"
)

// DefaultTimeline is the home timeline used when a scenario does not
// declare one.
const DefaultTimeline = "timeline:main"

// CompileError is a lawfile compilation failure with a CUE position when
// one is available.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Lawfile is a compiled scenario: a named, ordered operator list ready
// to stage on an engine. Operators run in declaration order within each
// list; the lists themselves run seeds, transforms, boundaries, then
// relocations.
type Lawfile struct {
	Name      string
	Timeline  string
	Operators []ops.Operator
}

// Compile loads a .cue lawfile and compiles it into a Lawfile.
func Compile(path string) (*Lawfile, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("lawfile %s: %w", path, err)
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: filepath.Dir(path)}
	instances := load.Instances([]string{filepath.Base(path)}, cfg)
	if len(instances) == 0 {
		return nil, &CompileError{Field: "scenario", Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &CompileError{Field: "scenario", Message: fmt.Sprintf("loading CUE file: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &CompileError{Field: "scenario", Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	return compileValue(value)
}

// CompileString compiles a lawfile from source text. Used by tests and
// embedded scenarios.
func CompileString(src string) (*Lawfile, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(src)
	if err := value.Err(); err != nil {
		return nil, &CompileError{Field: "scenario", Message: fmt.Sprintf("compiling CUE source: %v", err)}
	}
	return compileValue(value)
}

func compileValue(value cue.Value) (*Lawfile, error) {
	scenario := value.LookupPath(cue.ParsePath("scenario"))
	if !scenario.Exists() {
		return nil, &CompileError{
			Field:   "scenario",
			Message: "scenario struct is required",
			Pos:     value.Pos(),
		}
	}

	nameVal := scenario.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "scenario.name",
			Message: "name is required",
			Pos:     scenario.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, &CompileError{Field: "scenario.name", Message: err.Error(), Pos: nameVal.Pos()}
	}

	lf := &Lawfile{Name: name, Timeline: DefaultTimeline}

	if tlVal := scenario.LookupPath(cue.ParsePath("timeline")); tlVal.Exists() {
		tl, err := tlVal.String()
		if err != nil {
			return nil, &CompileError{Field: "scenario.timeline", Message: err.Error(), Pos: tlVal.Pos()}
		}
		lf.Timeline = tl
	}

	env, err := newExprEnv()
	if err != nil {
		return nil, fmt.Errorf("lawfile: building expression environment: %w", err)
	}

	if err := compileList(scenario, "seed", func(v cue.Value) error {
		op, err := compileSeed(v)
		if err != nil {
			return err
		}
		lf.Operators = append(lf.Operators, op)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := compileList(scenario, "transform", func(v cue.Value) error {
		op, err := compileTransform(env, v)
		if err != nil {
			return err
		}
		lf.Operators = append(lf.Operators, op)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := compileList(scenario, "boundary", func(v cue.Value) error {
		op, err := compileBoundary(env, v)
		if err != nil {
			return err
		}
		lf.Operators = append(lf.Operators, op)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := compileList(scenario, "relocate", func(v cue.Value) error {
		op, err := compileRelocate(env, v)
		if err != nil {
			return err
		}
		lf.Operators = append(lf.Operators, op)
		return nil
	}); err != nil {
		return nil, err
	}

	return lf, nil
}

// compileList iterates an optional list field, invoking fn per element.
func compileList(scenario cue.Value, field string, fn func(cue.Value) error) error {
	listVal := scenario.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil
	}
	iter, err := listVal.List()
	if err != nil {
		return &CompileError{
			Field:   "scenario." + field,
			Message: fmt.Sprintf("must be a list: %v", err),
			Pos:     listVal.Pos(),
		}
	}
	for iter.Next() {
		if err := fn(iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func requireString(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: err.Error(), Pos: fieldVal.Pos()}
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, bool, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", false, nil
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", false, &CompileError{Field: field, Message: err.Error(), Pos: fieldVal.Pos()}
	}
	return s, true, nil
}

func compileSeed(v cue.Value) (ops.Seed, error) {
	entity, err := requireString(v, "entity")
	if err != nil {
		return ops.Seed{}, err
	}

	propsVal := v.LookupPath(cue.ParsePath("props"))
	if !propsVal.Exists() {
		return ops.Seed{}, &CompileError{Field: "props", Message: "props is required", Pos: v.Pos()}
	}
	var raw map[string]any
	if err := propsVal.Decode(&raw); err != nil {
		return ops.Seed{}, &CompileError{Field: "props", Message: err.Error(), Pos: propsVal.Pos()}
	}
	props, err := prop.ObjectFromAny(raw)
	if err != nil {
		return ops.Seed{}, &CompileError{Field: "props", Message: err.Error(), Pos: propsVal.Pos()}
	}

	note, _, err := optionalString(v, "note")
	if err != nil {
		return ops.Seed{}, err
	}

	return ops.Seed{EntityID: entity, Props: props, Note: note}, nil
}

func compileTransform(env *exprEnv, v cue.Value) (ops.Transform, error) {
	entity, err := requireString(v, "entity")
	if err != nil {
		return ops.Transform{}, err
	}

	apply, ok, err := compileFieldExprs(env, v, "apply")
	if err != nil {
		return ops.Transform{}, err
	}
	if !ok {
		return ops.Transform{}, &CompileError{Field: "apply", Message: "apply is required", Pos: v.Pos()}
	}

	var gate ops.Predicate
	if expr, ok, err := optionalString(v, "gate"); err != nil {
		return ops.Transform{}, err
	} else if ok {
		gate, err = env.predicate("gate", expr, v.Pos())
		if err != nil {
			return ops.Transform{}, err
		}
	}

	note, _, err := optionalString(v, "note")
	if err != nil {
		return ops.Transform{}, err
	}

	return ops.Transform{EntityID: entity, Apply: apply, Gate: gate, Note: note}, nil
}

// actionFromString maps the lawfile action strings onto the typed enum.
// Exhaustiveness is pushed to this edge: the engine itself never sees an
// unknown action.
func actionFromString(s string, pos token.Pos) (ops.Action, error) {
	switch s {
	case "terminate":
		return ops.ActionTerminate, nil
	case "repair":
		return ops.ActionRepair, nil
	case "fork":
		return ops.ActionFork, nil
	default:
		return 0, &CompileError{
			Field:   "action",
			Message: fmt.Sprintf("unknown action %q (want terminate, repair, or fork)", s),
			Pos:     pos,
		}
	}
}

func compileBoundary(env *exprEnv, v cue.Value) (ops.Boundary, error) {
	entity, err := requireString(v, "entity")
	if err != nil {
		return ops.Boundary{}, err
	}
	name, err := requireString(v, "name")
	if err != nil {
		return ops.Boundary{}, err
	}

	whenExpr, err := requireString(v, "when")
	if err != nil {
		return ops.Boundary{}, err
	}
	when, err := env.predicate("when", whenExpr, v.Pos())
	if err != nil {
		return ops.Boundary{}, err
	}

	actionStr, err := requireString(v, "action")
	if err != nil {
		return ops.Boundary{}, err
	}
	action, err := actionFromString(actionStr, v.Pos())
	if err != nil {
		return ops.Boundary{}, err
	}

	repair, _, err := compileFieldExprs(env, v, "repair")
	if err != nil {
		return ops.Boundary{}, err
	}

	note, _, err := optionalString(v, "note")
	if err != nil {
		return ops.Boundary{}, err
	}

	return ops.Boundary{
		EntityID: entity,
		Name:     name,
		When:     when,
		Action:   action,
		Repair:   repair,
		Note:     note,
	}, nil
}

func compileRelocate(env *exprEnv, v cue.Value) (ops.Relocate, error) {
	entity, err := requireString(v, "entity")
	if err != nil {
		return ops.Relocate{}, err
	}
	dest, err := requireString(v, "dest")
	if err != nil {
		return ops.Relocate{}, err
	}

	guardExpr, err := requireString(v, "guard")
	if err != nil {
		return ops.Relocate{}, err
	}
	guard, err := env.predicate("guard", guardExpr, v.Pos())
	if err != nil {
		return ops.Relocate{}, err
	}

	remap, _, err := compileFieldExprs(env, v, "remap")
	if err != nil {
		return ops.Relocate{}, err
	}

	note, _, err := optionalString(v, "note")
	if err != nil {
		return ops.Relocate{}, err
	}

	return ops.Relocate{
		EntityID:     entity,
		DestTimeline: dest,
		Guard:        guard,
		Remap:        remap,
		Note:         note,
	}, nil
}

// compileFieldExprs compiles an optional struct of per-field CEL
// expressions (apply/repair/remap) into a mutator. Returns ok=false when
// the field is absent.
func compileFieldExprs(env *exprEnv, v cue.Value, field string) (ops.Mutator, bool, error) {
	structVal := v.LookupPath(cue.ParsePath(field))
	if !structVal.Exists() {
		return nil, false, nil
	}

	iter, err := structVal.Fields()
	if err != nil {
		return nil, false, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be a struct of CEL expressions: %v", err),
			Pos:     structVal.Pos(),
		}
	}

	exprs := make(map[string]string)
	for iter.Next() {
		expr, err := iter.Value().String()
		if err != nil {
			return nil, false, &CompileError{
				Field:   field + "." + iter.Label(),
				Message: fmt.Sprintf("expression must be a string: %v", err),
				Pos:     iter.Value().Pos(),
			}
		}
		exprs[iter.Label()] = expr
	}

	m, err := env.mutator(field, exprs, structVal.Pos())
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}
