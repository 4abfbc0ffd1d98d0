// Package filter selects archive entries with CEL expressions.
//
// An expression sees three variables: name (the entry path as stored),
// dir (true for directories) and size (content length in bytes, 0 for
// directories). It must evaluate to a bool, for example:
//
//	!dir && name.endsWith(".txt") && size < 1024
package filter

import (
	"fmt"
	"sync"

	"github.com/chrontax/cra/internal/engine"
	"github.com/google/cel-go/cel"
)

type Filter struct {
	expr    string
	program cel.Program
}

var env = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("dir", cel.BoolType),
		cel.Variable("size", cel.IntType),
	)
})

// Compile parses and type-checks expr. An empty expression matches everything.
func Compile(expr string) (*Filter, error) {
	if expr == "" {
		return &Filter{}, nil
	}

	e, err := env()
	if err != nil {
		return nil, fmt.Errorf("failed to create filter environment: %w", err)
	}

	ast, iss := e.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	program, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build filter program %q: %w", expr, err)
	}

	return &Filter{expr: expr, program: program}, nil
}

func (f *Filter) String() string {
	return f.expr
}

// Match reports whether entry passes the filter.
func (f *Filter) Match(entry engine.Entry) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}

	vars := map[string]any{
		"name": entry.Path(),
		"dir":  false,
		"size": int64(0),
	}
	switch e := entry.(type) {
	case engine.File:
		vars["size"] = int64(len(e.Data))
	case engine.Directory:
		vars["dir"] = true
	}

	out, _, err := f.program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter on %s: %w", entry.Path(), err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter on %s returned %T, want bool", entry.Path(), out.Value())
	}
	return matched, nil
}

// Apply returns the entries that pass the filter, in their original order.
func (f *Filter) Apply(entries []engine.Entry) ([]engine.Entry, error) {
	out := make([]engine.Entry, 0, len(entries))
	for _, entry := range entries {
		ok, err := f.Match(entry)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, entry)
		}
	}
	return out, nil
}
