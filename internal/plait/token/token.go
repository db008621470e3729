// Package token defines the lexical tokens of the plait template grammar.
package token

import "fmt"

type Kind int

const (
	EOF Kind = iota
	Ident
	String
	Int
	Float

	LBrace   // {
	RBrace   // }
	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]
	Semi     // ;
	Eq       // =
	Question // ?
	At       // @
	Hash     // #
	Colon    // :
	Comma    // ,
	Dot      // .
	DotDot   // ..
	Arrow    // =>
)

var kindNames = map[Kind]string{
	EOF:      "end of input",
	Ident:    "identifier",
	String:   "string literal",
	Int:      "integer literal",
	Float:    "float literal",
	LBrace:   "'{'",
	RBrace:   "'}'",
	LParen:   "'('",
	RParen:   "')'",
	LBracket: "'['",
	RBracket: "']'",
	Semi:     "';'",
	Eq:       "'='",
	Question: "'?'",
	At:       "'@'",
	Hash:     "'#'",
	Colon:    "':'",
	Comma:    "','",
	Dot:      "'.'",
	DotDot:   "'..'",
	Arrow:    "'=>'",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical token. Text holds the raw source text for
// identifiers and numbers, and the decoded value for string literals.
type Token struct {
	Kind Kind
	Text string
	Pos  Pos
}

func (t Token) String() string {
	switch t.Kind {
	case Ident, Int, Float:
		return fmt.Sprintf("%q", t.Text)
	case String:
		return "string literal"
	default:
		return t.Kind.String()
	}
}
