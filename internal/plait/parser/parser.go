// Package parser builds the plait AST from template source.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/devashishdxt/plait/internal/plait/ast"
	"github.com/devashishdxt/plait/internal/plait/lexer"
	"github.com/devashishdxt/plait/internal/plait/token"
)

// SyntaxError reports a malformed construct with its source position.
// Parsing is all-or-nothing: on error no partial AST is returned.
type SyntaxError struct {
	Pos token.Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Msg)
}

// voidElements is the fixed HTML5 void element set. Void elements end
// with ';' and can never hold children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// IsVoidElement reports whether name is an HTML5 void element.
func IsVoidElement(name string) bool {
	return voidElements[name]
}

// Parse lexes and parses a whole template.
func Parse(src string) ([]ast.Node, error) {
	toks, err := lexer.New(src).All()
	if err != nil {
		lerr := err.(*lexer.Error)
		return nil, &SyntaxError{Pos: lerr.Pos, Msg: lerr.Msg}
	}
	p := &parser{toks: toks}
	nodes, err := p.nodes(token.EOF)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

type parser struct {
	toks []token.Token
	idx  int
}

func (p *parser) peek() token.Token {
	return p.toks[p.idx]
}

func (p *parser) peekAt(n int) token.Token {
	if p.idx+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.idx+n]
}

func (p *parser) next() token.Token {
	t := p.toks[p.idx]
	if t.Kind != token.EOF {
		p.idx++
	}
	return t
}

func (p *parser) accept(k token.Kind) (token.Token, bool) {
	if p.peek().Kind == k {
		return p.next(), true
	}
	return token.Token{}, false
}

func (p *parser) expect(k token.Kind, where string) (token.Token, error) {
	t := p.peek()
	if t.Kind != k {
		return token.Token{}, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("expected %s %s, found %s", k, where, t)}
	}
	return p.next(), nil
}

// nodes parses a node sequence up to (but not consuming) the end kind.
func (p *parser) nodes(end token.Kind) ([]ast.Node, error) {
	var out []ast.Node
	for {
		t := p.peek()
		if t.Kind == end {
			return out, nil
		}
		if t.Kind == token.EOF {
			return nil, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("unexpected end of input, expected %s", end)}
		}
		n, err := p.node()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
}

func (p *parser) node() (ast.Node, error) {
	t := p.peek()
	switch t.Kind {
	case token.String:
		p.next()
		return &ast.Text{Value: t.Text, Pos: t.Pos}, nil
	case token.LParen:
		return p.splice()
	case token.At:
		return p.atNode()
	case token.Hash:
		return p.hashNode()
	case token.Ident:
		return p.element()
	default:
		return nil, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("expected a node, found %s", t)}
	}
}

// splice parses `(expr)` or `(expr : raw)`.
func (p *parser) splice() (ast.Node, error) {
	open := p.next()
	expr, err := p.expr()
	if err != nil {
		return nil, err
	}
	raw := false
	if _, ok := p.accept(token.Colon); ok {
		mod, err := p.expect(token.Ident, "after ':' in splice")
		if err != nil {
			return nil, err
		}
		if mod.Text != "raw" {
			return nil, &SyntaxError{Pos: mod.Pos, Msg: fmt.Sprintf("unknown splice modifier %q, only raw is supported", mod.Text)}
		}
		raw = true
	}
	if _, err := p.expect(token.RParen, "to close splice"); err != nil {
		return nil, err
	}
	return &ast.Splice{Expr: expr, Raw: raw, Pos: open.Pos}, nil
}

func (p *parser) hashNode() (ast.Node, error) {
	hash := p.next()
	name, err := p.expect(token.Ident, "after '#'")
	if err != nil {
		return nil, err
	}
	if name.Text != "children" {
		return nil, &SyntaxError{Pos: name.Pos, Msg: fmt.Sprintf("unknown placeholder #%s in node position, expected #children", name.Text)}
	}
	return &ast.Children{Pos: hash.Pos}, nil
}

func (p *parser) atNode() (ast.Node, error) {
	at := p.next()
	name, err := p.expect(token.Ident, "after '@'")
	if err != nil {
		return nil, err
	}
	switch name.Text {
	case "doctype":
		return &ast.Doctype{Pos: at.Pos}, nil
	case "if":
		return p.ifChain(at.Pos)
	case "for":
		return p.forLoop(at.Pos)
	case "match":
		return p.match(at.Pos)
	case "else":
		return nil, &SyntaxError{Pos: at.Pos, Msg: "@else without a preceding @if"}
	}
	if isComponentName(name.Text) {
		return p.component(name)
	}
	return nil, &SyntaxError{Pos: name.Pos, Msg: fmt.Sprintf("unknown construct @%s", name.Text)}
}

func isComponentName(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func (p *parser) ifChain(pos token.Pos) (ast.Node, error) {
	out := &ast.If{Pos: pos}
	for {
		br, err := p.ifBranch()
		if err != nil {
			return nil, err
		}
		out.Branches = append(out.Branches, br)

		// `@else` continues the chain only immediately after the branch body.
		if p.peek().Kind != token.At || p.peekAt(1).Kind != token.Ident || p.peekAt(1).Text != "else" {
			return out, nil
		}
		p.next() // @
		p.next() // else
		if kw := p.peek(); kw.Kind == token.Ident && kw.Text == "if" {
			p.next()
			continue
		}
		body, err := p.bracedNodes("after @else")
		if err != nil {
			return nil, err
		}
		out.Else = body
		return out, nil
	}
}

// ifBranch parses the condition and body after an `if` keyword, handling
// the `let Some(name) = expr` binding form.
func (p *parser) ifBranch() (ast.IfBranch, error) {
	br := ast.IfBranch{Pos: p.peek().Pos}
	if kw := p.peek(); kw.Kind == token.Ident && kw.Text == "let" {
		p.next()
		some, err := p.expect(token.Ident, "after let")
		if err != nil {
			return br, err
		}
		if some.Text != "Some" {
			return br, &SyntaxError{Pos: some.Pos, Msg: fmt.Sprintf("expected Some(name) after let, found %q", some.Text)}
		}
		if _, err := p.expect(token.LParen, "after Some"); err != nil {
			return br, err
		}
		bind, err := p.expect(token.Ident, "inside Some(...)")
		if err != nil {
			return br, err
		}
		if _, err := p.expect(token.RParen, "to close Some(...)"); err != nil {
			return br, err
		}
		if _, err := p.expect(token.Eq, "after Some(name)"); err != nil {
			return br, err
		}
		br.Binding = bind.Text
	}
	cond, err := p.expr()
	if err != nil {
		return br, err
	}
	br.Cond = cond
	body, err := p.bracedNodes("for @if body")
	if err != nil {
		return br, err
	}
	br.Body = body
	return br, nil
}

func (p *parser) forLoop(pos token.Pos) (ast.Node, error) {
	bind, err := p.expect(token.Ident, "after @for")
	if err != nil {
		return nil, err
	}
	kw, err := p.expect(token.Ident, "after loop variable")
	if err != nil {
		return nil, err
	}
	if kw.Text != "in" {
		return nil, &SyntaxError{Pos: kw.Pos, Msg: fmt.Sprintf("expected in after loop variable, found %q", kw.Text)}
	}
	expr, err := p.expr()
	if err != nil {
		return nil, err
	}
	body, err := p.bracedNodes("for @for body")
	if err != nil {
		return nil, err
	}
	return &ast.For{Binding: bind.Text, Expr: expr, Body: body, Pos: pos}, nil
}

func (p *parser) match(pos token.Pos) (ast.Node, error) {
	expr, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "to open @match body"); err != nil {
		return nil, err
	}
	out := &ast.Match{Expr: expr, Pos: pos}
	for {
		if _, ok := p.accept(token.RBrace); ok {
			return out, nil
		}
		arm, err := p.matchArm()
		if err != nil {
			return nil, err
		}
		out.Arms = append(out.Arms, arm)
		p.accept(token.Comma)
	}
}

func (p *parser) matchArm() (ast.MatchArm, error) {
	pat, err := p.pattern()
	if err != nil {
		return ast.MatchArm{}, err
	}
	if _, err := p.expect(token.Arrow, "after match pattern"); err != nil {
		return ast.MatchArm{}, err
	}
	arm := ast.MatchArm{Pattern: pat, Pos: pat.Pos}
	if p.peek().Kind == token.LBrace {
		body, err := p.bracedNodes("for match arm")
		if err != nil {
			return ast.MatchArm{}, err
		}
		arm.Body = body
		return arm, nil
	}
	n, err := p.node()
	if err != nil {
		return ast.MatchArm{}, err
	}
	arm.Body = []ast.Node{n}
	return arm, nil
}

func (p *parser) pattern() (ast.Pattern, error) {
	t := p.peek()
	switch t.Kind {
	case token.String:
		p.next()
		return ast.Pattern{Kind: ast.PatLiteral, Value: ast.Literal{Kind: ast.LitString, Str: t.Text}, Pos: t.Pos}, nil
	case token.Int:
		p.next()
		n, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return ast.Pattern{}, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("invalid integer literal %q", t.Text)}
		}
		return ast.Pattern{Kind: ast.PatLiteral, Value: ast.Literal{Kind: ast.LitInt, Int: n}, Pos: t.Pos}, nil
	case token.Ident:
		switch t.Text {
		case "_":
			p.next()
			return ast.Pattern{Kind: ast.PatWildcard, Pos: t.Pos}, nil
		case "None":
			p.next()
			return ast.Pattern{Kind: ast.PatNone, Pos: t.Pos}, nil
		case "Some":
			p.next()
			if _, err := p.expect(token.LParen, "after Some"); err != nil {
				return ast.Pattern{}, err
			}
			bind, err := p.expect(token.Ident, "inside Some(...)")
			if err != nil {
				return ast.Pattern{}, err
			}
			if _, err := p.expect(token.RParen, "to close Some(...)"); err != nil {
				return ast.Pattern{}, err
			}
			return ast.Pattern{Kind: ast.PatSome, Bind: bind.Text, Pos: t.Pos}, nil
		case "true", "false":
			p.next()
			return ast.Pattern{Kind: ast.PatLiteral, Value: ast.Literal{Kind: ast.LitBool, Bool: t.Text == "true"}, Pos: t.Pos}, nil
		}
	}
	return ast.Pattern{}, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("expected a match pattern, found %s", t)}
}

// component parses `@Name(prop: expr, ...; attr*) { children }`. The paren
// group and the children block are both optional.
func (p *parser) component(name token.Token) (ast.Node, error) {
	out := &ast.Component{Name: name.Text, Pos: name.Pos}
	if _, ok := p.accept(token.LParen); ok {
		// Props: name: expr, ...
		for p.peek().Kind == token.Ident && p.peekAt(1).Kind == token.Colon {
			prop := p.next()
			p.next() // :
			expr, err := p.expr()
			if err != nil {
				return nil, err
			}
			out.Props = append(out.Props, ast.PropArg{Name: prop.Text, Expr: expr, Pos: prop.Pos})
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		if _, ok := p.accept(token.Semi); ok {
			attrs, err := p.attrs(token.RParen)
			if err != nil {
				return nil, err
			}
			out.Attrs = attrs
		}
		if _, err := p.expect(token.RParen, "to close component invocation"); err != nil {
			return nil, err
		}
	}
	if p.peek().Kind == token.LBrace {
		body, err := p.bracedNodes("for component children")
		if err != nil {
			return nil, err
		}
		out.Children = body
	}
	return out, nil
}

func (p *parser) element() (ast.Node, error) {
	name := p.next()
	el := &ast.Element{
		Name: canonicalName(name.Text),
		Pos:  name.Pos,
	}
	el.Void = voidElements[el.Name]

	attrs, err := p.attrs(token.EOF)
	if err != nil {
		return nil, err
	}
	el.Attrs = attrs

	switch t := p.peek(); t.Kind {
	case token.Semi:
		p.next()
		return el, nil
	case token.LBrace:
		body, err := p.bracedNodes("for element body")
		if err != nil {
			return nil, err
		}
		el.HasBody = true
		el.Children = body
		return el, nil
	default:
		return nil, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("expected '{' or ';' after element %s, found %s", el.Name, t)}
	}
}

// attrs parses an attribute sequence. It stops at '{', ';', the stop kind,
// or anything that cannot start an attribute.
func (p *parser) attrs(stop token.Kind) ([]ast.Attr, error) {
	var out []ast.Attr
	for {
		t := p.peek()
		if t.Kind == stop || t.Kind == token.LBrace || t.Kind == token.Semi {
			return out, nil
		}
		switch t.Kind {
		case token.DotDot:
			p.next()
			if _, err := p.expect(token.LParen, "after '..'"); err != nil {
				return nil, err
			}
			expr, err := p.expr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RParen, "to close attribute spread"); err != nil {
				return nil, err
			}
			out = append(out, ast.Attr{Kind: ast.AttrSpread, Expr: expr, Pos: t.Pos})
		case token.Hash:
			p.next()
			name, err := p.expect(token.Ident, "after '#'")
			if err != nil {
				return nil, err
			}
			if name.Text != "attrs" {
				return nil, &SyntaxError{Pos: name.Pos, Msg: fmt.Sprintf("unknown placeholder #%s in attribute position, expected #attrs", name.Text)}
			}
			out = append(out, ast.Attr{Kind: ast.AttrSlot, Pos: t.Pos})
		case token.Ident:
			attr, err := p.attr()
			if err != nil {
				return nil, err
			}
			out = append(out, attr)
		default:
			return out, nil
		}
	}
}

func (p *parser) attr() (ast.Attr, error) {
	name := p.next()
	attr := ast.Attr{Name: canonicalName(name.Text), Pos: name.Pos}

	switch p.peek().Kind {
	case token.Eq:
		p.next()
		switch t := p.peek(); t.Kind {
		case token.String:
			p.next()
			attr.Kind = ast.AttrLiteral
			attr.Value = t.Text
		case token.LParen:
			p.next()
			expr, err := p.expr()
			if err != nil {
				return attr, err
			}
			if _, err := p.expect(token.RParen, "to close attribute value"); err != nil {
				return attr, err
			}
			attr.Kind = ast.AttrDynamic
			attr.Expr = expr
		case token.LBracket:
			p.next()
			expr, err := p.expr()
			if err != nil {
				return attr, err
			}
			if _, err := p.expect(token.RBracket, "to close optional attribute value"); err != nil {
				return attr, err
			}
			attr.Kind = ast.AttrOptional
			attr.Expr = expr
		default:
			return attr, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("expected a value after %s=, found %s", attr.Name, t)}
		}
	case token.Question:
		p.next()
		if _, err := p.expect(token.LBracket, "after '?'"); err != nil {
			return attr, err
		}
		expr, err := p.expr()
		if err != nil {
			return attr, err
		}
		if _, err := p.expect(token.RBracket, "to close boolean attribute condition"); err != nil {
			return attr, err
		}
		attr.Kind = ast.AttrToggle
		attr.Expr = expr
	default:
		attr.Kind = ast.AttrFlag
	}
	return attr, nil
}

// expr parses an expression position: a literal or a dotted identifier path.
func (p *parser) expr() (*ast.Expr, error) {
	t := p.peek()
	switch t.Kind {
	case token.String:
		p.next()
		return &ast.Expr{Lit: ast.Literal{Kind: ast.LitString, Str: t.Text}, Pos: t.Pos}, nil
	case token.Int:
		p.next()
		n, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("invalid integer literal %q", t.Text)}
		}
		return &ast.Expr{Lit: ast.Literal{Kind: ast.LitInt, Int: n}, Pos: t.Pos}, nil
	case token.Float:
		p.next()
		f, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("invalid float literal %q", t.Text)}
		}
		return &ast.Expr{Lit: ast.Literal{Kind: ast.LitFloat, Flt: f}, Pos: t.Pos}, nil
	case token.Ident:
		switch t.Text {
		case "true", "false":
			p.next()
			return &ast.Expr{Lit: ast.Literal{Kind: ast.LitBool, Bool: t.Text == "true"}, Pos: t.Pos}, nil
		}
		p.next()
		path := []string{t.Text}
		for p.peek().Kind == token.Dot {
			p.next()
			seg, err := p.expect(token.Ident, "after '.'")
			if err != nil {
				return nil, err
			}
			path = append(path, seg.Text)
		}
		return &ast.Expr{Path: path, Pos: t.Pos}, nil
	default:
		return nil, &SyntaxError{Pos: t.Pos, Msg: fmt.Sprintf("expected an expression, found %s", t)}
	}
}

func (p *parser) bracedNodes(where string) ([]ast.Node, error) {
	if _, err := p.expect(token.LBrace, where); err != nil {
		return nil, err
	}
	nodes, err := p.nodes(token.RBrace)
	if err != nil {
		return nil, err
	}
	p.next() // }
	return nodes, nil
}

// canonicalName normalizes an element or attribute name: lowercased, with
// underscores written in source mapped to hyphens (data_value -> data-value).
func canonicalName(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}
