package plait

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/devashishdxt/plait/internal/plait/ast"
	"github.com/devashishdxt/plait/internal/plait/escape"
	"github.com/devashishdxt/plait/internal/plait/token"
	"github.com/devashishdxt/plait/internal/plait/validate"
)

// compiler lowers a validated AST to the instruction sequence a Template
// executes. Lowering is deterministic: instructions follow source order
// with no reordering or hoisting, and adjacent literal output is
// coalesced into single writes.
type compiler struct {
	reg    *Registry
	bodies map[string][]instr
	stack  []string
}

func newCompiler(reg *Registry) *compiler {
	return &compiler{reg: reg, bodies: map[string][]instr{}}
}

// emitter accumulates instructions, buffering literal output so runs of
// static markup become one write.
type emitter struct {
	prog []instr
	lit  strings.Builder
}

func (e *emitter) literal(s string) {
	e.lit.WriteString(s)
}

func (e *emitter) push(in instr) {
	e.flush()
	e.prog = append(e.prog, in)
}

func (e *emitter) flush() {
	if e.lit.Len() > 0 {
		e.prog = append(e.prog, writeLit{s: e.lit.String()})
		e.lit.Reset()
	}
}

func (e *emitter) finish() []instr {
	e.flush()
	return e.prog
}

func (c *compiler) lower(nodes []ast.Node) ([]instr, error) {
	e := &emitter{}
	if err := c.lowerNodes(e, nodes); err != nil {
		return nil, err
	}
	return e.finish(), nil
}

func (c *compiler) lowerNodes(e *emitter, nodes []ast.Node) error {
	for _, n := range nodes {
		if err := c.lowerNode(e, n); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) lowerNode(e *emitter, n ast.Node) error {
	switch n := n.(type) {
	case *ast.Text:
		e.literal(escape.HTMLString(n.Value))
		return nil
	case *ast.Doctype:
		e.literal(string(Doctype))
		return nil
	case *ast.Splice:
		return c.lowerSplice(e, n)
	case *ast.Element:
		return c.lowerElement(e, n)
	case *ast.If:
		return c.lowerIf(e, n)
	case *ast.For:
		return c.lowerFor(e, n)
	case *ast.Match:
		return c.lowerMatch(e, n)
	case *ast.Component:
		return c.lowerComponent(e, n)
	case *ast.Children:
		e.push(childrenSlot{})
		return nil
	default:
		return fmt.Errorf("cannot lower node type %T", n)
	}
}

func (c *compiler) lowerSplice(e *emitter, sp *ast.Splice) error {
	// Literal splices fold into the surrounding static chunk.
	if sp.Expr.IsLiteral() {
		s := literalString(sp.Expr.Lit)
		if sp.Raw {
			e.literal(s)
		} else {
			e.literal(escape.HTMLString(s))
		}
		return nil
	}
	e.push(writeExpr{expr: sp.Expr, raw: sp.Raw})
	return nil
}

func (c *compiler) lowerElement(e *emitter, el *ast.Element) error {
	e.literal("<")
	e.literal(el.Name)
	if err := c.lowerAttrs(e, el.Attrs); err != nil {
		return err
	}
	e.literal(">")
	if el.Void {
		return nil
	}
	if err := c.lowerNodes(e, el.Children); err != nil {
		return err
	}
	e.literal("</")
	e.literal(el.Name)
	e.literal(">")
	return nil
}

func (c *compiler) lowerAttrs(e *emitter, attrs []ast.Attr) error {
	for _, a := range attrs {
		switch a.Kind {
		case ast.AttrLiteral:
			e.literal(" ")
			e.literal(a.Name)
			e.literal(`="`)
			e.literal(escape.HTMLString(a.Value))
			e.literal(`"`)
		case ast.AttrFlag:
			e.literal(" ")
			e.literal(a.Name)
		case ast.AttrDynamic:
			url := escape.IsURLAttribute(a.Name)
			if a.Expr.IsLiteral() {
				e.literal(" ")
				e.literal(a.Name)
				e.literal(`="`)
				if url {
					e.literal(escape.URLString(literalString(a.Expr.Lit)))
				} else {
					e.literal(escape.HTMLString(literalString(a.Expr.Lit)))
				}
				e.literal(`"`)
				continue
			}
			e.push(writeAttrDynamic{name: a.Name, expr: a.Expr, url: url})
		case ast.AttrOptional:
			e.push(writeAttrOptional{name: a.Name, expr: a.Expr, url: escape.IsURLAttribute(a.Name)})
		case ast.AttrToggle:
			e.push(writeAttrToggle{name: a.Name, expr: a.Expr})
		case ast.AttrSpread:
			e.push(writeAttrSpread{expr: a.Expr})
		case ast.AttrSlot:
			e.push(attrsSlot{})
		}
	}
	return nil
}

func (c *compiler) lowerIf(e *emitter, n *ast.If) error {
	br := branch{}
	for _, arm := range n.Branches {
		body, err := c.lower(arm.Body)
		if err != nil {
			return err
		}
		br.arms = append(br.arms, branchArm{cond: arm.Cond, binding: arm.Binding, body: body})
	}
	if n.Else != nil {
		els, err := c.lower(n.Else)
		if err != nil {
			return err
		}
		br.els = els
	}
	e.push(br)
	return nil
}

func (c *compiler) lowerFor(e *emitter, n *ast.For) error {
	body, err := c.lower(n.Body)
	if err != nil {
		return err
	}
	e.push(iterate{binding: n.Binding, expr: n.Expr, body: body})
	return nil
}

func (c *compiler) lowerMatch(e *emitter, n *ast.Match) error {
	m := matchOp{expr: n.Expr}
	for _, arm := range n.Arms {
		body, err := c.lower(arm.Body)
		if err != nil {
			return err
		}
		m.arms = append(m.arms, matchArm{pat: arm.Pattern, body: body})
	}
	e.push(m)
	return nil
}

func (c *compiler) lowerComponent(e *emitter, n *ast.Component) error {
	body, err := c.componentBody(n.Name, n.Pos)
	if err != nil {
		return err
	}

	def, _ := c.reg.Lookup(n.Name)
	iv := invoke{name: n.Name, body: body}

	given := map[string]bool{}
	for _, p := range n.Props {
		given[p.Name] = true
		iv.props = append(iv.props, propBinding{name: p.Name, expr: p.Expr})
	}
	for _, p := range def.Props {
		if !given[p.Name] {
			iv.props = append(iv.props, propBinding{name: p.Name, lit: p.Default})
		}
	}

	for _, a := range n.Attrs {
		iv.attrs = append(iv.attrs, attrInstr{kind: a.Kind, name: a.Name, value: a.Value, expr: a.Expr})
	}

	if n.Children != nil {
		children, err := c.lower(n.Children)
		if err != nil {
			return err
		}
		iv.children = children
	}

	e.push(iv)
	return nil
}

// componentBody compiles a component definition once per Compile call,
// rejecting recursive invocation chains.
func (c *compiler) componentBody(name string, at token.Pos) ([]instr, error) {
	if body, ok := c.bodies[name]; ok {
		return body, nil
	}
	for _, active := range c.stack {
		if active == name {
			return nil, &validate.Error{Pos: at, Msg: fmt.Sprintf("recursive component %s", name)}
		}
	}
	def, ok := c.reg.Lookup(name)
	if !ok {
		return nil, &validate.Error{Pos: at, Msg: fmt.Sprintf("unknown component %s", name)}
	}

	nodes, err := c.reg.parseComponent(def)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", name, err)
	}

	c.stack = append(c.stack, name)
	body, err := c.lower(nodes)
	c.stack = c.stack[:len(c.stack)-1]
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", name, err)
	}
	c.bodies[name] = body
	return body, nil
}

func literalString(lit ast.Literal) string {
	switch lit.Kind {
	case ast.LitString:
		return lit.Str
	case ast.LitInt:
		return strconv.FormatInt(lit.Int, 10)
	case ast.LitFloat:
		return strconv.FormatFloat(lit.Flt, 'g', -1, 64)
	case ast.LitBool:
		return strconv.FormatBool(lit.Bool)
	}
	return ""
}
