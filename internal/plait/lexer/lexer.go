// Package lexer turns plait template source into a token stream.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/devashishdxt/plait/internal/plait/token"
)

// Error is a lexical error with its source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Lexer scans template source one token at a time.
type Lexer struct {
	src  string
	off  int
	line int
	col  int
}

func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

func (l *Lexer) pos() token.Pos {
	return token.Pos{Line: l.line, Column: l.col}
}

func (l *Lexer) peekByte() byte {
	if l.off >= len(l.src) {
		return 0
	}
	return l.src[l.off]
}

func (l *Lexer) peekByteAt(n int) byte {
	if l.off+n >= len(l.src) {
		return 0
	}
	return l.src[l.off+n]
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipSpaceAndComments() {
	for l.off < len(l.src) {
		switch b := l.src[l.off]; {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		case b == '/' && l.peekByteAt(1) == '/':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// Next returns the next token, or an *Error on malformed input.
func (l *Lexer) Next() (token.Token, error) {
	l.skipSpaceAndComments()

	pos := l.pos()
	if l.off >= len(l.src) {
		return token.Token{Kind: token.EOF, Pos: pos}, nil
	}

	switch b := l.peekByte(); b {
	case '{':
		l.advance()
		return token.Token{Kind: token.LBrace, Pos: pos}, nil
	case '}':
		l.advance()
		return token.Token{Kind: token.RBrace, Pos: pos}, nil
	case '(':
		l.advance()
		return token.Token{Kind: token.LParen, Pos: pos}, nil
	case ')':
		l.advance()
		return token.Token{Kind: token.RParen, Pos: pos}, nil
	case '[':
		l.advance()
		return token.Token{Kind: token.LBracket, Pos: pos}, nil
	case ']':
		l.advance()
		return token.Token{Kind: token.RBracket, Pos: pos}, nil
	case ';':
		l.advance()
		return token.Token{Kind: token.Semi, Pos: pos}, nil
	case '?':
		l.advance()
		return token.Token{Kind: token.Question, Pos: pos}, nil
	case '@':
		l.advance()
		return token.Token{Kind: token.At, Pos: pos}, nil
	case '#':
		l.advance()
		return token.Token{Kind: token.Hash, Pos: pos}, nil
	case ':':
		l.advance()
		return token.Token{Kind: token.Colon, Pos: pos}, nil
	case ',':
		l.advance()
		return token.Token{Kind: token.Comma, Pos: pos}, nil
	case '=':
		l.advance()
		if l.peekByte() == '>' {
			l.advance()
			return token.Token{Kind: token.Arrow, Pos: pos}, nil
		}
		return token.Token{Kind: token.Eq, Pos: pos}, nil
	case '.':
		l.advance()
		if l.peekByte() == '.' {
			l.advance()
			return token.Token{Kind: token.DotDot, Pos: pos}, nil
		}
		return token.Token{Kind: token.Dot, Pos: pos}, nil
	case '"':
		return l.scanString(pos)
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	switch {
	case isIdentStart(r):
		return l.scanIdent(pos), nil
	case unicode.IsDigit(r):
		return l.scanNumber(pos)
	}
	return token.Token{}, &Error{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", r)}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) scanIdent(pos token.Pos) token.Token {
	start := l.off
	l.advance()
	for l.off < len(l.src) {
		r, _ := utf8.DecodeRuneInString(l.src[l.off:])
		if isIdentPart(r) {
			l.advance()
			continue
		}
		// Hyphenated segment: data-value, aria-label. Only consume the
		// hyphen when an identifier character follows, so `x-}` still
		// fails cleanly in the parser.
		if r == '-' {
			next, _ := utf8.DecodeRuneInString(l.src[l.off+1:])
			if isIdentPart(next) {
				l.advance()
				continue
			}
		}
		break
	}
	return token.Token{Kind: token.Ident, Text: l.src[start:l.off], Pos: pos}
}

func (l *Lexer) scanNumber(pos token.Pos) (token.Token, error) {
	start := l.off
	kind := token.Int
	for l.off < len(l.src) && l.src[l.off] >= '0' && l.src[l.off] <= '9' {
		l.advance()
	}
	if l.peekByte() == '.' && l.peekByteAt(1) >= '0' && l.peekByteAt(1) <= '9' {
		kind = token.Float
		l.advance()
		for l.off < len(l.src) && l.src[l.off] >= '0' && l.src[l.off] <= '9' {
			l.advance()
		}
	}
	return token.Token{Kind: kind, Text: l.src[start:l.off], Pos: pos}, nil
}

func (l *Lexer) scanString(pos token.Pos) (token.Token, error) {
	l.advance() // opening quote

	var sb strings.Builder
	for {
		if l.off >= len(l.src) {
			return token.Token{}, &Error{Pos: pos, Msg: "unterminated string literal"}
		}
		r := l.advance()
		switch r {
		case '"':
			return token.Token{Kind: token.String, Text: sb.String(), Pos: pos}, nil
		case '\n':
			return token.Token{}, &Error{Pos: pos, Msg: "unterminated string literal"}
		case '\\':
			if l.off >= len(l.src) {
				return token.Token{}, &Error{Pos: pos, Msg: "unterminated string literal"}
			}
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				return token.Token{}, &Error{Pos: l.pos(), Msg: fmt.Sprintf("unknown escape sequence \\%c", esc)}
			}
		default:
			sb.WriteRune(r)
		}
	}
}

// All scans the whole input, mostly useful in tests.
func (l *Lexer) All() ([]token.Token, error) {
	var out []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}
