package plait

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/devashishdxt/plait/internal/plait/ast"
)

// scope is a linked frame of named values. Loop bodies, if-let branches
// and component invocations each push a frame; lookup walks outward.
type scope struct {
	parent *scope
	vars   map[string]any
	comp   *componentFrame
}

// componentFrame carries what a component body's slots resolve to: the
// caller's merged extra attributes and the caller's children, which
// execute against the caller's own scope.
type componentFrame struct {
	attrs      *Attributes
	children   []instr
	childScope *scope
}

func (s *scope) child(vars map[string]any) *scope {
	return &scope{parent: s, vars: vars}
}

func (s *scope) lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *scope) frame() *componentFrame {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.comp != nil {
			return cur.comp
		}
	}
	return nil
}

// eval resolves an expression against the scope: literals evaluate to
// themselves, paths walk maps, struct fields and producer functions.
func eval(s *scope, e *ast.Expr) (any, error) {
	if e.IsLiteral() {
		switch e.Lit.Kind {
		case ast.LitString:
			return e.Lit.Str, nil
		case ast.LitInt:
			return e.Lit.Int, nil
		case ast.LitFloat:
			return e.Lit.Flt, nil
		case ast.LitBool:
			return e.Lit.Bool, nil
		default:
			return nil, nil
		}
	}

	v, ok := s.lookup(e.Path[0])
	if !ok {
		return nil, &RenderError{Path: e.Path[0], Msg: "no binding with this name"}
	}
	for i := 1; i < len(e.Path); i++ {
		var err error
		v, err = field(v, e.Path[i])
		if err != nil {
			return nil, &RenderError{Path: strings.Join(e.Path[:i+1], "."), Msg: err.Error()}
		}
	}
	return resolve(v), nil
}

// field steps one path segment into v.
func field(v any, name string) (any, error) {
	v = resolve(v)
	if v == nil {
		return nil, fmt.Errorf("cannot access %q on nil", name)
	}

	switch m := v.(type) {
	case map[string]any:
		inner, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("no entry %q", name)
		}
		return inner, nil
	case map[string]string:
		inner, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("no entry %q", name)
		}
		return inner, nil
	case Bindings:
		inner, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("no entry %q", name)
		}
		return inner, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("cannot access %q on nil", name)
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		f := rv.FieldByNameFunc(func(fn string) bool {
			return strings.EqualFold(fn, name)
		})
		if f.IsValid() && f.CanInterface() {
			return f.Interface(), nil
		}
		return nil, fmt.Errorf("no field %q on %s", name, rv.Type())
	}
	return nil, fmt.Errorf("cannot access %q on %s", name, rv.Type())
}

// resolve invokes producer functions until a plain value remains.
func resolve(v any) any {
	for {
		fn, ok := v.(func() any)
		if !ok {
			return v
		}
		v = fn()
	}
}
