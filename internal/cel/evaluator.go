// Package cel compiles CEL predicates that filter option records. Each
// record is bound to the variable "_".
package cel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	celext "github.com/google/cel-go/ext"
)

// ErrNotBoolean is returned when an expression cannot yield a bool.
var ErrNotBoolean = errors.New("expression must evaluate to a bool")

// Evaluator holds the shared CEL environment.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the strings, lists and math
// extensions loaded.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("_", cel.MapType(cel.StringType, cel.DynType)),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Predicate is a compiled boolean expression. It is safe for concurrent use.
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr.
func (e *Evaluator) Compile(expr string) (*Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("empty expression")
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	switch out := ast.OutputType().String(); out {
	case "bool", "dyn":
	default:
		return nil, fmt.Errorf("%w, got %s", ErrNotBoolean, out)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// Match evaluates the predicate against rec.
func (p *Predicate) Match(rec map[string]any) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{"_": rec})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w, got %T", ErrNotBoolean, out.Value())
	}
	return b, nil
}

func (p *Predicate) String() string { return p.expr }
