// Package ast defines the syntax tree produced by the plait parser.
package ast

import "github.com/devashishdxt/plait/internal/plait/token"

type Node interface {
	node()
}

// Text is a literal text node, escaped on write.
type Text struct {
	Value string
	Pos   token.Pos
}

func (*Text) node() {}

// Splice interpolates an expression value. Raw splices skip escaping.
type Splice struct {
	Expr *Expr
	Raw  bool
	Pos  token.Pos
}

func (*Splice) node() {}

// Doctype is the @doctype node, emitting the HTML5 doctype.
type Doctype struct {
	Pos token.Pos
}

func (*Doctype) node() {}

type AttrKind int

const (
	// AttrLiteral is name="value".
	AttrLiteral AttrKind = iota
	// AttrDynamic is name=(expr).
	AttrDynamic
	// AttrOptional is name=[expr]: emitted only when the value is present.
	AttrOptional
	// AttrToggle is name?[expr]: valueless, emitted only when truthy.
	AttrToggle
	// AttrFlag is a bare name: valueless, always emitted.
	AttrFlag
	// AttrSpread is ..(expr): splices an attribute collection.
	AttrSpread
	// AttrSlot is #attrs inside a component template.
	AttrSlot
)

// Attr is one attribute in source order. Name is empty for AttrSpread and
// AttrSlot. Value is the literal string for AttrLiteral, Expr carries the
// expression for the dynamic kinds.
type Attr struct {
	Kind  AttrKind
	Name  string
	Value string
	Expr  *Expr
	Pos   token.Pos
}

// Element is a single HTML element. Void elements are terminated with a
// semicolon; HasBody records that a braced body was written anyway so the
// validator can reject it with a proper message.
type Element struct {
	Name     string
	Void     bool
	HasBody  bool
	Attrs    []Attr
	Children []Node
	Pos      token.Pos
}

func (*Element) node() {}

// If is a full conditional chain. Branches are evaluated in order; the
// first truthy branch renders. Else holds the trailing @else body, if any.
type If struct {
	Branches []IfBranch
	Else     []Node
	Pos      token.Pos
}

func (*If) node() {}

// IfBranch is one @if or @else-if arm. Binding is non-empty for the
// `@if let Some(name) = expr` form, in which case the branch is taken when
// the expression is present and the inner value is bound under Binding.
type IfBranch struct {
	Cond    *Expr
	Binding string
	Body    []Node
	Pos     token.Pos
}

// For iterates a bound collection, rendering Body once per item with the
// item bound under Binding.
type For struct {
	Binding string
	Expr    *Expr
	Body    []Node
	Pos     token.Pos
}

func (*For) node() {}

type PatternKind int

const (
	PatLiteral PatternKind = iota
	PatSome
	PatNone
	PatWildcard
)

// Pattern is a @match arm pattern. Value holds the literal for PatLiteral
// and the binding name for PatSome.
type Pattern struct {
	Kind  PatternKind
	Value Literal
	Bind  string
	Pos   token.Pos
}

// Match dispatches on a value. Arms are checked in order; the first
// matching arm renders and no other arm is considered.
type Match struct {
	Expr *Expr
	Arms []MatchArm
	Pos  token.Pos
}

func (*Match) node() {}

type MatchArm struct {
	Pattern Pattern
	Body    []Node
	Pos     token.Pos
}

// Component is an invocation of a named component: @Name(props; attrs) { }.
type Component struct {
	Name     string
	Props    []PropArg
	Attrs    []Attr
	Children []Node
	Pos      token.Pos
}

func (*Component) node() {}

type PropArg struct {
	Name string
	Expr *Expr
	Pos  token.Pos
}

// Children is the #children placeholder inside a component template.
type Children struct {
	Pos token.Pos
}

func (*Children) node() {}

type LiteralKind int

const (
	LitNone LiteralKind = iota
	LitString
	LitInt
	LitFloat
	LitBool
)

// Literal is a self-evaluating constant.
type Literal struct {
	Kind LiteralKind
	Str  string
	Int  int64
	Flt  float64
	Bool bool
}

// Expr is an expression position: either a literal or a dotted identifier
// path resolved against the render-time bindings.
type Expr struct {
	Path []string
	Lit  Literal
	Pos  token.Pos
}

// IsLiteral reports whether the expression is a constant.
func (e *Expr) IsLiteral() bool {
	return len(e.Path) == 0
}

// Root returns the first path segment, or "" for literals.
func (e *Expr) Root() string {
	if len(e.Path) == 0 {
		return ""
	}
	return e.Path[0]
}
