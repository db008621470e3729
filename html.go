// Package plait compiles a compact HTML template grammar into renderable
// units and renders them with automatic contextual escaping.
package plait

import (
	"strings"

	"github.com/devashishdxt/plait/internal/plait/escape"
)

// Html is a fragment of markup that is already escaped. Rendering an Html
// value writes it through verbatim.
type Html string

func (h Html) String() string { return string(h) }

// RenderInto writes the fragment into b without further escaping.
func (h Html) RenderInto(b *Buffer) error {
	b.WriteHtml(h)
	return nil
}

// Raw marks s as pre-escaped markup. The caller vouches for its safety.
func Raw(s string) Html { return Html(s) }

// Doctype is the HTML5 doctype declaration.
const Doctype Html = "<!DOCTYPE html>"

// Buffer is the growable output buffer a render run appends to. Each
// render owns its own Buffer; a Buffer must not be shared across
// goroutines.
type Buffer struct {
	sb strings.Builder
}

// WriteString appends s verbatim.
func (b *Buffer) WriteString(s string) {
	b.sb.WriteString(s)
}

// WriteEscaped appends s with HTML special characters escaped.
func (b *Buffer) WriteEscaped(s string) {
	escape.HTML(&b.sb, s)
}

// WriteURL appends s as a URL attribute value: scheme-sanitized, then
// escaped.
func (b *Buffer) WriteURL(s string) {
	escape.URL(&b.sb, s)
}

// WriteHtml appends a pre-escaped fragment.
func (b *Buffer) WriteHtml(h Html) {
	b.sb.WriteString(string(h))
}

// Len returns the number of bytes accumulated so far.
func (b *Buffer) Len() int { return b.sb.Len() }

// Html returns everything written so far.
func (b *Buffer) Html() Html { return Html(b.sb.String()) }

// Renderable is the single polymorphic rendering capability: a value
// that knows how to write itself into an output buffer. Strings, numbers,
// Html, Option and plain values all render through renderValue; implement
// Renderable to plug in custom types.
type Renderable interface {
	RenderInto(b *Buffer) error
}

// RenderFunc adapts a function to the Renderable interface.
type RenderFunc func(b *Buffer) error

func (f RenderFunc) RenderInto(b *Buffer) error { return f(b) }
