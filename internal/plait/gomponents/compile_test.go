package gomponents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileOne(t *testing.T, src string) string {
	t.Helper()
	out, err := CompileFile("views/page.plait", []byte(src))
	require.NoError(t, err)
	return string(out)
}

func TestCompileFileBasic(t *testing.T) {
	out := compileOne(t, `
package views

func Greeting(name string) {
	div { h1 { "Hello, " (name) "!" } }
}
`)
	assert.Contains(t, out, "// Code generated by plait; DO NOT EDIT.")
	assert.Contains(t, out, "package views")
	assert.Contains(t, out, `g "maragu.dev/gomponents"`)
	assert.Contains(t, out, `h "maragu.dev/gomponents/html"`)
	assert.Contains(t, out, "func Greeting(name string) g.Node {")
	assert.Contains(t, out, `h.Div(h.H1(g.Text("Hello, "), g.Text(name), g.Text("!")))`)
}

func TestCompileFilePackageFromPath(t *testing.T) {
	out := compileOne(t, `func Empty() { div { } }`)
	assert.Contains(t, out, "package views")
}

func TestCompileFileAttrs(t *testing.T) {
	out := compileOne(t, `
func Field(id string, disabled bool) {
	input type="text" id=(id) disabled?[disabled];
}
`)
	assert.Contains(t, out, `h.Input(h.Type("text"), h.ID(id), g.If(disabled, h.Disabled()))`)
}

func TestCompileFileOptionalAttr(t *testing.T) {
	out := compileOne(t, `
func Link(title string) {
	a href="/home" title=[title] { "home" }
}
`)
	assert.Contains(t, out, `g.If(title != "", g.Attr("title", title))`)
}

func TestCompileFileFor(t *testing.T) {
	out := compileOne(t, `
func List(items []string) {
	ul { @for item in items { li { (item) } } }
}
`)
	assert.Contains(t, out, "g.Group(g.Map(items, func(item string) g.Node {")
	assert.Contains(t, out, "h.Li(g.Text(item))")
}

func TestCompileFileIfElse(t *testing.T) {
	out := compileOne(t, `
func Status(ok bool) {
	@if ok { span { "up" } } @else { span { "down" } }
}
`)
	assert.Contains(t, out, "func() g.Node {")
	assert.Contains(t, out, "if ok {")
	assert.Contains(t, out, `h.Span(g.Text("up"))`)
	assert.Contains(t, out, `h.Span(g.Text("down"))`)
}

func TestCompileFileNonStringSplice(t *testing.T) {
	out := compileOne(t, `
func Count(n int) {
	span { (n) }
}
`)
	assert.Contains(t, out, `g.Textf("%v", n)`)
}

func TestCompileFileUnknownElement(t *testing.T) {
	out := compileOne(t, `func Custom() { my-widget { "x" } }`)
	assert.Contains(t, out, `g.El("my-widget", g.Text("x"))`)
}

func TestCompileFileMultipleFuncs(t *testing.T) {
	out := compileOne(t, `
func One() { div { "1" } }

// a comment between functions
func Two() { div { "2" } }
`)
	assert.Contains(t, out, "func One() g.Node {")
	assert.Contains(t, out, "func Two() g.Node {")
}

func TestCompileFileErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"undeclared", `func F() { div { (nope) } }`, "not a declared parameter"},
		{"dotted", `func F(u string) { div { (u.name) } }`, "not supported by the gomponents backend"},
		{"match", `func F(s string) { @match s { _ => "x" } }`, "@match is not supported"},
		{"iflet", `func F(v string) { @if let Some(x) = v { (x) } }`, "@if let is not supported"},
		{"unterminated", `func F() { div {`, "unterminated function body"},
		{"badsig", `func F(name) { div { } }`, "invalid signature"},
		{"invalid", `func F() { br { "x" } }`, "void element br"},
		{"empty", ``, "no template functions"},
		{"junk", `blah`, "expected package or func"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompileFile("x.plait", []byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
