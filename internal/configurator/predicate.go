package configurator

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// predicates компилирует и хранит CEL-условия видимости опций.
// Выражение видит переменную sel: категория -> id выбранной опции.
type predicates struct {
	env      *cel.Env
	programs map[string]cel.Program
}

func newPredicates() (*predicates, error) {
	env, err := cel.NewEnv(
		cel.Variable("sel", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &predicates{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

func (p *predicates) compile(expr string) error {
	if _, ok := p.programs[expr]; ok {
		return nil
	}
	ast, issues := p.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("CEL compile error in %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return fmt.Errorf("CEL expression %q must return bool", expr)
	}
	prg, err := p.env.Program(ast)
	if err != nil {
		return fmt.Errorf("CEL program error in %q: %w", expr, err)
	}
	p.programs[expr] = prg
	return nil
}

// allows возвращает false и для ложного условия, и для ошибки вычисления.
func (p *predicates) allows(expr string, sel map[string]string) bool {
	prg, ok := p.programs[expr]
	if !ok {
		return false
	}
	out, _, err := prg.Eval(map[string]interface{}{"sel": sel})
	if err != nil {
		return false
	}
	v, ok := out.Value().(bool)
	return ok && v
}
