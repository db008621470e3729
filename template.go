package plait

import (
	"fmt"
	"reflect"

	"github.com/devashishdxt/plait/internal/plait/ast"
)

// Template is a compiled renderable unit. It is immutable after Compile
// and safe for concurrent Render calls; each render owns its buffer.
type Template struct {
	prog []instr
}

// Render executes the template against a fresh buffer with the given
// bindings and returns the accumulated markup. The only failure mode is
// a host-binding problem, reported as *RenderError.
func (t *Template) Render(b Bindings) (Html, error) {
	rc := &renderContext{
		buf:   &Buffer{},
		scope: &scope{vars: b},
	}
	if err := runProg(rc, t.prog); err != nil {
		return "", err
	}
	return rc.buf.Html(), nil
}

// MustRender is Render that panics on error, for templates whose
// bindings are known good.
func (t *Template) MustRender(b Bindings) Html {
	h, err := t.Render(b)
	if err != nil {
		panic(err)
	}
	return h
}

type renderContext struct {
	buf   *Buffer
	scope *scope
}

type instr interface {
	exec(rc *renderContext) error
}

func runProg(rc *renderContext, prog []instr) error {
	for _, in := range prog {
		if err := in.exec(rc); err != nil {
			return err
		}
	}
	return nil
}

// writeLit appends a precomputed chunk: tags, literal attributes and
// text are escaped once at compile time and coalesced into single
// writes.
type writeLit struct {
	s string
}

func (w writeLit) exec(rc *renderContext) error {
	rc.buf.WriteString(w.s)
	return nil
}

// writeExpr evaluates an expression and renders the value, escaped
// unless the splice was marked raw.
type writeExpr struct {
	expr *ast.Expr
	raw  bool
}

func (w writeExpr) exec(rc *renderContext) error {
	v, err := eval(rc.scope, w.expr)
	if err != nil {
		return err
	}
	return renderValue(rc.buf, v, w.raw)
}

// writeAttrDynamic writes ` name="value"` with the evaluated value
// escaped, scheme-sanitized first for URL-bearing names.
type writeAttrDynamic struct {
	name string
	expr *ast.Expr
	url  bool
}

func (w writeAttrDynamic) exec(rc *renderContext) error {
	v, err := eval(rc.scope, w.expr)
	if err != nil {
		return err
	}
	s, pre := attrText(v)
	writeAttrValue(rc.buf, w.name, s, pre, w.url)
	return nil
}

// writeAttrOptional skips the whole attribute when the value is absent,
// and otherwise behaves like writeAttrDynamic.
type writeAttrOptional struct {
	name string
	expr *ast.Expr
	url  bool
}

func (w writeAttrOptional) exec(rc *renderContext) error {
	v, err := eval(rc.scope, w.expr)
	if err != nil {
		return err
	}
	if inner, ok := unwrapOption(v); ok {
		s, pre := attrText(inner)
		writeAttrValue(rc.buf, w.name, s, pre, w.url)
	}
	return nil
}

// writeAttrToggle writes the bare attribute name when the condition is
// truthy and nothing otherwise.
type writeAttrToggle struct {
	name string
	expr *ast.Expr
}

func (w writeAttrToggle) exec(rc *renderContext) error {
	v, err := eval(rc.scope, w.expr)
	if err != nil {
		return err
	}
	if truthy(v) {
		rc.buf.WriteString(" ")
		rc.buf.WriteString(w.name)
	}
	return nil
}

// writeAttrSpread evaluates an Attributes collection and writes it out.
type writeAttrSpread struct {
	expr *ast.Expr
}

func (w writeAttrSpread) exec(rc *renderContext) error {
	v, err := eval(rc.scope, w.expr)
	if err != nil {
		return err
	}
	attrs, err := asAttributes(v)
	if err != nil {
		return &RenderError{Path: w.expr.Root(), Msg: err.Error()}
	}
	attrs.writeTo(rc.buf)
	return nil
}

func asAttributes(v any) (*Attributes, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case *Attributes:
		return v, nil
	case Attributes:
		return &v, nil
	default:
		return nil, fmt.Errorf("attribute spread needs an Attributes value, got %T", v)
	}
}

// writeAttrValue emits ` name="val"`. Pre-escaped values pass through
// verbatim, even for URL-bearing names: the Html wrapper vouches for
// them. Everything else is scheme-sanitized or escaped.
func writeAttrValue(b *Buffer, name, val string, pre, url bool) {
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString(`="`)
	switch {
	case pre:
		b.WriteString(val)
	case url:
		b.WriteURL(val)
	default:
		b.WriteEscaped(val)
	}
	b.WriteString(`"`)
}

// branch executes exactly one arm: the first truthy branch, or the else
// body. A branch with a binding takes when its value is present and runs
// its body with the inner value bound.
type branch struct {
	arms []branchArm
	els  []instr
}

type branchArm struct {
	cond    *ast.Expr
	binding string
	body    []instr
}

func (br branch) exec(rc *renderContext) error {
	for _, arm := range br.arms {
		v, err := eval(rc.scope, arm.cond)
		if err != nil {
			return err
		}
		if arm.binding != "" {
			inner, ok := unwrapOption(v)
			if !ok {
				continue
			}
			return rc.inScope(rc.scope.child(map[string]any{arm.binding: inner}), arm.body)
		}
		if truthy(v) {
			return runProg(rc, arm.body)
		}
	}
	return runProg(rc, br.els)
}

// unwrapOption treats nil and absent options as absent; any other value
// binds as itself.
func unwrapOption(v any) (any, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false
	case Option:
		return v.Get()
	default:
		return v, true
	}
}

func (rc *renderContext) inScope(s *scope, prog []instr) error {
	saved := rc.scope
	rc.scope = s
	err := runProg(rc, prog)
	rc.scope = saved
	return err
}

// iterate runs the body once per element in iteration order with the
// element bound under the loop name.
type iterate struct {
	binding string
	expr    *ast.Expr
	body    []instr
}

func (it iterate) exec(rc *renderContext) error {
	v, err := eval(rc.scope, it.expr)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	frame := map[string]any{}
	inner := rc.scope.child(frame)

	if items, ok := v.([]any); ok {
		for _, item := range items {
			frame[it.binding] = item
			if err := rc.inScope(inner, it.body); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			frame[it.binding] = rv.Index(i).Interface()
			if err := rc.inScope(inner, it.body); err != nil {
				return err
			}
		}
		return nil
	default:
		return &RenderError{Path: it.expr.Root(), Msg: fmt.Sprintf("cannot iterate %T", v)}
	}
}

// matchOp checks arms in order and runs the first that matches; with no
// matching arm it renders nothing.
type matchOp struct {
	expr *ast.Expr
	arms []matchArm
}

type matchArm struct {
	pat  ast.Pattern
	body []instr
}

func (m matchOp) exec(rc *renderContext) error {
	v, err := eval(rc.scope, m.expr)
	if err != nil {
		return err
	}
	for _, arm := range m.arms {
		switch arm.pat.Kind {
		case ast.PatWildcard:
			return runProg(rc, arm.body)
		case ast.PatNone:
			if isAbsent(v) {
				return runProg(rc, arm.body)
			}
		case ast.PatSome:
			if inner, ok := unwrapOption(v); ok {
				return rc.inScope(rc.scope.child(map[string]any{arm.pat.Bind: inner}), arm.body)
			}
		case ast.PatLiteral:
			if literalMatches(arm.pat.Value, v) {
				return runProg(rc, arm.body)
			}
		}
	}
	return nil
}

func isAbsent(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case Option:
		return !v.IsSome()
	default:
		return false
	}
}

func literalMatches(lit ast.Literal, v any) bool {
	if o, ok := v.(Option); ok {
		inner, present := o.Get()
		if !present {
			return false
		}
		v = inner
	}
	switch lit.Kind {
	case ast.LitString:
		s, ok := v.(string)
		return ok && s == lit.Str
	case ast.LitBool:
		b, ok := v.(bool)
		return ok && b == lit.Bool
	case ast.LitInt:
		n, ok := asInt64(v)
		return ok && n == lit.Int
	case ast.LitFloat:
		f, ok := asFloat64(v)
		return ok && f == lit.Flt
	}
	return false
}

func asInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	if n, ok := asInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}

// attrsSlot writes the invoking caller's merged extra attributes where a
// component template says #attrs.
type attrsSlot struct{}

func (attrsSlot) exec(rc *renderContext) error {
	if f := rc.scope.frame(); f != nil {
		f.attrs.writeTo(rc.buf)
	}
	return nil
}

// childrenSlot splices the caller's children where a component template
// says #children. The children run against the caller's own scope.
type childrenSlot struct{}

func (childrenSlot) exec(rc *renderContext) error {
	f := rc.scope.frame()
	if f == nil || len(f.children) == 0 {
		return nil
	}
	return rc.inScope(f.childScope, f.children)
}

// invoke runs an inlined component: props evaluate in the caller's
// scope, the body runs in a fresh scope seeded with them.
type invoke struct {
	name     string
	props    []propBinding
	attrs    []attrInstr
	body     []instr
	children []instr
}

type propBinding struct {
	name string
	expr *ast.Expr
	lit  any
}

// attrInstr builds one entry of the invocation's extra-attribute
// collection at run time.
type attrInstr struct {
	kind  ast.AttrKind
	name  string
	value string
	expr  *ast.Expr
}

func (iv invoke) exec(rc *renderContext) error {
	vars := make(map[string]any, len(iv.props))
	for _, p := range iv.props {
		if p.expr == nil {
			vars[p.name] = p.lit
			continue
		}
		v, err := eval(rc.scope, p.expr)
		if err != nil {
			return err
		}
		vars[p.name] = v
	}

	attrs, err := iv.collectAttrs(rc)
	if err != nil {
		return err
	}

	compScope := &scope{
		vars: vars,
		comp: &componentFrame{
			attrs:      attrs,
			children:   iv.children,
			childScope: rc.scope,
		},
	}
	return rc.inScope(compScope, iv.body)
}

// collectAttrs merges the invocation's extra attributes: spreads first,
// then explicit entries, so an explicit attribute wins over a spread one
// and the last explicit write wins among explicits.
func (iv invoke) collectAttrs(rc *renderContext) (*Attributes, error) {
	out := &Attributes{}
	for _, a := range iv.attrs {
		if a.kind != ast.AttrSpread {
			continue
		}
		v, err := eval(rc.scope, a.expr)
		if err != nil {
			return nil, err
		}
		spread, err := asAttributes(v)
		if err != nil {
			return nil, &RenderError{Path: a.expr.Root(), Msg: err.Error()}
		}
		out.Merge(spread)
	}
	for _, a := range iv.attrs {
		switch a.kind {
		case ast.AttrSpread:
		case ast.AttrLiteral:
			out.Set(a.name, a.value)
		case ast.AttrFlag:
			out.SetFlag(a.name)
		case ast.AttrDynamic:
			v, err := eval(rc.scope, a.expr)
			if err != nil {
				return nil, err
			}
			s, pre := attrText(v)
			out.setValue(a.name, s, pre)
		case ast.AttrOptional:
			v, err := eval(rc.scope, a.expr)
			if err != nil {
				return nil, err
			}
			if inner, ok := unwrapOption(v); ok {
				s, pre := attrText(inner)
				out.setValue(a.name, s, pre)
			}
		case ast.AttrToggle:
			v, err := eval(rc.scope, a.expr)
			if err != nil {
				return nil, err
			}
			if truthy(v) {
				out.SetFlag(a.name)
			}
		}
	}
	return out, nil
}
