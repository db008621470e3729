// Package gomponents generates Go source from plait template files. The
// emitted code builds a maragu.dev/gomponents node tree, so generated
// views compose with hand-written gomponents code and inherit its
// escaping on render.
package gomponents

import (
	"fmt"
	goast "go/ast"
	gotoken "go/token"
	"strings"

	"github.com/devashishdxt/plait/internal/plait/ast"
)

// Context carries the declared parameter types of the template function
// being lowered, as Go type strings ("string", "[]string", "bool").
type Context struct {
	VarTypes map[string]string
}

func (c Context) typeOf(name string) string {
	return c.VarTypes[name]
}

func (c Context) with(name, typ string) Context {
	vars := make(map[string]string, len(c.VarTypes)+1)
	for k, v := range c.VarTypes {
		vars[k] = v
	}
	vars[name] = typ
	return Context{VarTypes: vars}
}

// LowerNodes lowers a node sequence to one Go expression of type g.Node.
func LowerNodes(nodes []ast.Node, ctx Context) (goast.Expr, error) {
	if len(nodes) == 0 {
		return goast.NewIdent("nil"), nil
	}
	if len(nodes) == 1 {
		return lowerNode(nodes[0], ctx)
	}
	var elts []goast.Expr
	for _, n := range nodes {
		ex, err := lowerNode(n, ctx)
		if err != nil {
			return nil, err
		}
		elts = append(elts, ex)
	}
	return gcall("Group", &goast.CompositeLit{
		Type: &goast.ArrayType{Elt: sel("g", "Node")},
		Elts: elts,
	}), nil
}

func lowerNode(n ast.Node, ctx Context) (goast.Expr, error) {
	switch n := n.(type) {
	case *ast.Text:
		return gcall("Text", strLit(n.Value)), nil
	case *ast.Doctype:
		return gcall("Raw", strLit("<!DOCTYPE html>")), nil
	case *ast.Splice:
		return lowerSplice(n, ctx)
	case *ast.Element:
		return lowerElement(n, ctx)
	case *ast.If:
		return lowerIf(n, ctx)
	case *ast.For:
		return lowerFor(n, ctx)
	case *ast.Match, *ast.Component, *ast.Children:
		return nil, fmt.Errorf("%s is not supported by the gomponents backend; render it with a runtime template", describe(n))
	default:
		return nil, fmt.Errorf("unsupported node type %T", n)
	}
}

func describe(n ast.Node) string {
	switch n.(type) {
	case *ast.Match:
		return "@match"
	case *ast.Component:
		return "component invocation"
	case *ast.Children:
		return "#children"
	}
	return "this construct"
}

func lowerSplice(sp *ast.Splice, ctx Context) (goast.Expr, error) {
	ex, err := valueExpr(sp.Expr, ctx)
	if err != nil {
		return nil, err
	}
	if sp.Raw {
		return gcall("Raw", ex), nil
	}
	if isStringTyped(sp.Expr, ctx) {
		return gcall("Text", ex), nil
	}
	return gcall("Textf", strLit("%v"), ex), nil
}

func lowerElement(el *ast.Element, ctx Context) (goast.Expr, error) {
	var args []goast.Expr

	for _, a := range el.Attrs {
		ax, err := lowerAttr(a, ctx)
		if err != nil {
			return nil, err
		}
		args = append(args, ax)
	}
	for _, c := range el.Children {
		cx, err := lowerNode(c, ctx)
		if err != nil {
			return nil, err
		}
		args = append(args, cx)
	}

	if fn := htmlElementFunc(el.Name); fn != "" {
		return hcall(fn, args...), nil
	}
	return gcall("El", append([]goast.Expr{strLit(el.Name)}, args...)...), nil
}

func lowerAttr(a ast.Attr, ctx Context) (goast.Expr, error) {
	switch a.Kind {
	case ast.AttrFlag:
		if fn := htmlBoolAttrFunc(a.Name); fn != "" {
			return hcall(fn), nil
		}
		return gcall("Attr", strLit(a.Name)), nil
	case ast.AttrLiteral:
		if fn := htmlStringAttrFunc(a.Name); fn != "" {
			return hcall(fn, strLit(a.Value)), nil
		}
		return gcall("Attr", strLit(a.Name), strLit(a.Value)), nil
	case ast.AttrDynamic:
		ex, err := valueExpr(a.Expr, ctx)
		if err != nil {
			return nil, err
		}
		if !isStringTyped(a.Expr, ctx) {
			return nil, fmt.Errorf("attribute %s needs a string-typed value", a.Name)
		}
		if fn := htmlStringAttrFunc(a.Name); fn != "" {
			return hcall(fn, ex), nil
		}
		return gcall("Attr", strLit(a.Name), ex), nil
	case ast.AttrToggle:
		cond, err := condExpr(a.Expr, ctx)
		if err != nil {
			return nil, err
		}
		var attr goast.Expr
		if fn := htmlBoolAttrFunc(a.Name); fn != "" {
			attr = hcall(fn)
		} else {
			attr = gcall("Attr", strLit(a.Name))
		}
		return gcall("If", cond, attr), nil
	case ast.AttrOptional:
		ex, err := valueExpr(a.Expr, ctx)
		if err != nil {
			return nil, err
		}
		if !isStringTyped(a.Expr, ctx) {
			return nil, fmt.Errorf("optional attribute %s needs a string-typed value", a.Name)
		}
		// Empty string stands in for absence in generated code.
		cond := &goast.BinaryExpr{X: ex, Op: gotoken.NEQ, Y: strLit("")}
		var attr goast.Expr
		if fn := htmlStringAttrFunc(a.Name); fn != "" {
			attr = hcall(fn, ex)
		} else {
			attr = gcall("Attr", strLit(a.Name), ex)
		}
		return gcall("If", cond, attr), nil
	case ast.AttrSpread, ast.AttrSlot:
		return nil, fmt.Errorf("attribute spreads are not supported by the gomponents backend; render them with a runtime template")
	default:
		return nil, fmt.Errorf("unknown attribute kind %v", a.Kind)
	}
}

// lowerIf wraps the chain in an immediately invoked function so else-if
// ladders and bindings stay ordinary Go.
func lowerIf(n *ast.If, ctx Context) (goast.Expr, error) {
	var body []goast.Stmt
	for _, br := range n.Branches {
		if br.Binding != "" {
			return nil, fmt.Errorf("@if let is not supported by the gomponents backend; render it with a runtime template")
		}
		cond, err := condExpr(br.Cond, ctx)
		if err != nil {
			return nil, err
		}
		ret, err := LowerNodes(br.Body, ctx)
		if err != nil {
			return nil, err
		}
		body = append(body, &goast.IfStmt{
			Cond: cond,
			Body: &goast.BlockStmt{List: []goast.Stmt{&goast.ReturnStmt{Results: []goast.Expr{ret}}}},
		})
	}
	els, err := LowerNodes(n.Else, ctx)
	if err != nil {
		return nil, err
	}
	body = append(body, &goast.ReturnStmt{Results: []goast.Expr{els}})

	return iife(body), nil
}

func lowerFor(n *ast.For, ctx Context) (goast.Expr, error) {
	iter, err := valueExpr(n.Expr, ctx)
	if err != nil {
		return nil, err
	}
	elemType := "string"
	if t := ctx.typeOf(n.Expr.Root()); strings.HasPrefix(t, "[]") {
		elemType = strings.TrimPrefix(t, "[]")
	}
	body, err := LowerNodes(n.Body, ctx.with(n.Binding, elemType))
	if err != nil {
		return nil, err
	}

	cb := &goast.FuncLit{
		Type: &goast.FuncType{
			Params: &goast.FieldList{List: []*goast.Field{{
				Names: []*goast.Ident{goast.NewIdent(n.Binding)},
				Type:  goast.NewIdent(elemType),
			}}},
			Results: &goast.FieldList{List: []*goast.Field{{Type: sel("g", "Node")}}},
		},
		Body: &goast.BlockStmt{List: []goast.Stmt{&goast.ReturnStmt{Results: []goast.Expr{body}}}},
	}
	return gcall("Group", gcall("Map", iter, cb)), nil
}

// valueExpr turns a template expression into a Go expression. Only
// declared parameters and literals survive into generated code.
func valueExpr(e *ast.Expr, ctx Context) (goast.Expr, error) {
	if e.IsLiteral() {
		switch e.Lit.Kind {
		case ast.LitString:
			return strLit(e.Lit.Str), nil
		case ast.LitInt:
			return &goast.BasicLit{Kind: gotoken.INT, Value: fmt.Sprintf("%d", e.Lit.Int)}, nil
		case ast.LitFloat:
			return &goast.BasicLit{Kind: gotoken.FLOAT, Value: fmt.Sprintf("%g", e.Lit.Flt)}, nil
		case ast.LitBool:
			return goast.NewIdent(fmt.Sprintf("%t", e.Lit.Bool)), nil
		}
	}
	if len(e.Path) > 1 {
		return nil, fmt.Errorf("dotted path %s is not supported by the gomponents backend; pass the value as its own parameter", strings.Join(e.Path, "."))
	}
	name := e.Path[0]
	if _, ok := ctx.VarTypes[name]; !ok {
		return nil, fmt.Errorf("%s is not a declared parameter", name)
	}
	return goast.NewIdent(name), nil
}

func condExpr(e *ast.Expr, ctx Context) (goast.Expr, error) {
	ex, err := valueExpr(e, ctx)
	if err != nil {
		return nil, err
	}
	if e.IsLiteral() {
		if e.Lit.Kind != ast.LitBool {
			return nil, fmt.Errorf("condition needs a bool value")
		}
	} else if ctx.typeOf(e.Root()) != "bool" {
		return nil, fmt.Errorf("condition %s needs a bool parameter", e.Root())
	}
	return ex, nil
}

func isStringTyped(e *ast.Expr, ctx Context) bool {
	if e.IsLiteral() {
		return e.Lit.Kind == ast.LitString
	}
	return len(e.Path) == 1 && ctx.typeOf(e.Path[0]) == "string"
}

// iife wraps statements in `func() g.Node { ... }()`.
func iife(body []goast.Stmt) goast.Expr {
	return &goast.CallExpr{
		Fun: &goast.FuncLit{
			Type: &goast.FuncType{
				Params:  &goast.FieldList{},
				Results: &goast.FieldList{List: []*goast.Field{{Type: sel("g", "Node")}}},
			},
			Body: &goast.BlockStmt{List: body},
		},
	}
}

func gcall(fn string, args ...goast.Expr) *goast.CallExpr {
	return &goast.CallExpr{Fun: sel("g", fn), Args: args}
}

func hcall(fn string, args ...goast.Expr) *goast.CallExpr {
	return &goast.CallExpr{Fun: sel("h", fn), Args: args}
}

func sel(pkg, name string) goast.Expr {
	return &goast.SelectorExpr{X: goast.NewIdent(pkg), Sel: goast.NewIdent(name)}
}

func strLit(s string) goast.Expr {
	return &goast.BasicLit{Kind: gotoken.STRING, Value: fmt.Sprintf("%q", s)}
}

func htmlElementFunc(tag string) string {
	switch tag {
	case "a":
		return "A"
	case "body":
		return "Body"
	case "button":
		return "Button"
	case "div":
		return "Div"
	case "em":
		return "Em"
	case "footer":
		return "Footer"
	case "form":
		return "Form"
	case "h1":
		return "H1"
	case "h2":
		return "H2"
	case "h3":
		return "H3"
	case "h4":
		return "H4"
	case "h5":
		return "H5"
	case "h6":
		return "H6"
	case "head":
		return "Head"
	case "header":
		return "Header"
	case "html":
		return "HTML"
	case "img":
		return "Img"
	case "input":
		return "Input"
	case "label":
		return "Label"
	case "li":
		return "Li"
	case "main":
		return "Main"
	case "nav":
		return "Nav"
	case "ol":
		return "Ol"
	case "p":
		return "P"
	case "section":
		return "Section"
	case "span":
		return "Span"
	case "strong":
		return "Strong"
	case "table":
		return "Table"
	case "td":
		return "Td"
	case "th":
		return "Th"
	case "title":
		return "TitleEl"
	case "tr":
		return "Tr"
	case "ul":
		return "Ul"
	default:
		return ""
	}
}

func htmlStringAttrFunc(key string) string {
	switch key {
	case "action":
		return "Action"
	case "class":
		return "Class"
	case "href":
		return "Href"
	case "id":
		return "ID"
	case "name":
		return "Name"
	case "placeholder":
		return "Placeholder"
	case "src":
		return "Src"
	case "style":
		return "Style"
	case "type":
		return "Type"
	case "value":
		return "Value"
	default:
		return ""
	}
}

func htmlBoolAttrFunc(key string) string {
	switch key {
	case "checked":
		return "Checked"
	case "disabled":
		return "Disabled"
	case "required":
		return "Required"
	case "selected":
		return "Selected"
	default:
		return ""
	}
}
