package services

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ProfileEnv defines the variables available during filter expression evaluation.
type ProfileEnv struct {
	ID        string    `expr:"id"`
	Name      string    `expr:"name"`
	Active    bool      `expr:"active"`
	CreatedAt time.Time `expr:"created_at"`
}

// ProfileFilter selects profile listing entries with an expr program,
// e.g. `active || name startsWith "Gruvbox"`.
type ProfileFilter struct {
	program *vm.Program
}

// CompileProfileFilter compiles expression against ProfileEnv.
// An empty expression yields a filter that matches everything.
func CompileProfileFilter(expression string) (*ProfileFilter, error) {
	if expression == "" {
		return &ProfileFilter{}, nil
	}
	program, err := expr.Compile(expression, expr.Env(ProfileEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return &ProfileFilter{program: program}, nil
}

// Matches evaluates the filter against one entry.
func (f *ProfileFilter) Matches(env ProfileEnv) (bool, error) {
	if f.program == nil {
		return true, nil
	}

	output, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("filter expression error: %w", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("filter expression did not return boolean: %v", output)
	}
	return result, nil
}
