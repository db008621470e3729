package plait_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devashishdxt/plait"
)

func render(t *testing.T, src string, b plait.Bindings) string {
	t.Helper()
	tpl, err := plait.Compile(src)
	require.NoError(t, err)
	out, err := tpl.Render(b)
	require.NoError(t, err)
	return string(out)
}

func TestHelloWorld(t *testing.T) {
	out := render(t, `div{ h1{ "Hello, " (name) "!" } }`, plait.Bindings{"name": "World"})
	assert.Equal(t, "<div><h1>Hello, World!</h1></div>", out)
}

func TestVoidElement(t *testing.T) {
	out := render(t, `input type="text" name="field";`, nil)
	assert.Equal(t, `<input type="text" name="field">`, out)
}

func TestCombinedAttributeForms(t *testing.T) {
	src := `div class="literal" data-value=(x) id=[maybe] disabled?[flag]{ "content" }`

	out := render(t, src, plait.Bindings{
		"x":     "container",
		"maybe": plait.Some("main"),
		"flag":  true,
	})
	assert.Equal(t, `<div class="literal" data-value="container" id="main" disabled>content</div>`, out)

	out = render(t, src, plait.Bindings{
		"x":     "container",
		"maybe": plait.None(),
		"flag":  false,
	})
	assert.Equal(t, `<div class="literal" data-value="container">content</div>`, out)
}

func TestTextEscaping(t *testing.T) {
	out := render(t, `p{ (content) }`, plait.Bindings{"content": `<script>alert("x") & 'y'</script>`})
	assert.Equal(t, "<p>&lt;script&gt;alert(&quot;x&quot;) &amp; &#39;y&#39;&lt;/script&gt;</p>", out)
}

func TestRawSplice(t *testing.T) {
	out := render(t, `div{ (markup : raw) }`, plait.Bindings{"markup": "<em>hi</em>"})
	assert.Equal(t, "<div><em>hi</em></div>", out)
}

func TestRawValuePassesThrough(t *testing.T) {
	out := render(t, `div{ (markup) }`, plait.Bindings{"markup": plait.Raw("<em>hi</em>")})
	assert.Equal(t, "<div><em>hi</em></div>", out)
}

func TestRawValueInDynamicAttribute(t *testing.T) {
	out := render(t, `div title=(markup) { }`, plait.Bindings{"markup": plait.Raw("a&amp;b")})
	assert.Equal(t, `<div title="a&amp;b"></div>`, out)

	out = render(t, `a href=(link) { "x" }`, plait.Bindings{"link": plait.Raw("/p?a=1&amp;b=2")})
	assert.Equal(t, `<a href="/p?a=1&amp;b=2">x</a>`, out)
}

func TestOptionValueInDynamicAttribute(t *testing.T) {
	src := `div data-x=(opt) { }`

	out := render(t, src, plait.Bindings{"opt": plait.Some("hi")})
	assert.Equal(t, `<div data-x="hi"></div>`, out)

	out = render(t, src, plait.Bindings{"opt": plait.None()})
	assert.Equal(t, `<div data-x=""></div>`, out)

	out = render(t, `div data-x=[opt] { }`, plait.Bindings{"opt": plait.Some(plait.Raw("a&amp;b"))})
	assert.Equal(t, `<div data-x="a&amp;b"></div>`, out)
}

func TestIfLet(t *testing.T) {
	src := `@if let Some(v) = value { span{(v)} } @else { span{"No value"} }`

	out := render(t, src, plait.Bindings{"value": plait.None()})
	assert.Equal(t, "<span>No value</span>", out)

	out = render(t, src, plait.Bindings{"value": plait.Some("hi")})
	assert.Equal(t, "<span>hi</span>", out)
}

func TestIfElseChain(t *testing.T) {
	src := `@if a { "A" } @else if b { "B" } @else { "C" }`

	assert.Equal(t, "A", render(t, src, plait.Bindings{"a": true, "b": true}))
	assert.Equal(t, "B", render(t, src, plait.Bindings{"a": false, "b": true}))
	assert.Equal(t, "C", render(t, src, plait.Bindings{"a": false, "b": false}))
}

func TestForLoop(t *testing.T) {
	src := `@for item in items { li{(item)} }`

	out := render(t, src, plait.Bindings{"items": []string{"one", "two"}})
	assert.Equal(t, "<li>one</li><li>two</li>", out)

	out = render(t, src, plait.Bindings{"items": []string{}})
	assert.Equal(t, "", out)
}

func TestForLoopNested(t *testing.T) {
	src := `@for row in rows { tr{ @for cell in row { td{(cell)} } } }`
	out := render(t, src, plait.Bindings{"rows": [][]int{{1, 2}, {3}}})
	assert.Equal(t, "<tr><td>1</td><td>2</td></tr><tr><td>3</td></tr>", out)
}

func TestMatch(t *testing.T) {
	src := `@match status {
		"active" => span class="on" { "Active" },
		"idle" => span class="off" { "Idle" },
		_ => span { "Unknown" },
	}`

	assert.Equal(t, `<span class="on">Active</span>`, render(t, src, plait.Bindings{"status": "active"}))
	assert.Equal(t, `<span class="off">Idle</span>`, render(t, src, plait.Bindings{"status": "idle"}))
	assert.Equal(t, `<span>Unknown</span>`, render(t, src, plait.Bindings{"status": "gone"}))
}

func TestMatchOption(t *testing.T) {
	src := `@match value { Some(v) => (v), None => "nothing" }`

	assert.Equal(t, "hi", render(t, src, plait.Bindings{"value": plait.Some("hi")}))
	assert.Equal(t, "nothing", render(t, src, plait.Bindings{"value": plait.None()}))
}

func TestMatchNoArmRendersNothing(t *testing.T) {
	out := render(t, `@match x { "a" => "A" }`, plait.Bindings{"x": "b"})
	assert.Equal(t, "", out)
}

func TestDoctype(t *testing.T) {
	out := render(t, `@doctype html{ body{ "hi" } }`, nil)
	assert.Equal(t, "<!DOCTYPE html><html><body>hi</body></html>", out)
}

func TestURLAttributeSanitized(t *testing.T) {
	src := `a href=(url) { "link" }`

	out := render(t, src, plait.Bindings{"url": "https://example.com?q=1&r=2"})
	assert.Equal(t, `<a href="https://example.com?q=1&amp;r=2">link</a>`, out)

	out = render(t, src, plait.Bindings{"url": "javascript:alert(1)"})
	assert.Equal(t, `<a href="about:invalid">link</a>`, out)
	assert.NotContains(t, out, "javascript:")
}

func TestNonURLAttributeNotSanitized(t *testing.T) {
	out := render(t, `div title=(v) { }`, plait.Bindings{"v": "javascript:fine here"})
	assert.Equal(t, `<div title="javascript:fine here"></div>`, out)
}

func TestAttributeSpread(t *testing.T) {
	out := render(t, `div ..(extra) { "x" }`, plait.Bindings{
		"extra": plait.Attrs("class", "btn", "id", "save").SetFlag("disabled"),
	})
	assert.Equal(t, `<div class="btn" id="save" disabled>x</div>`, out)
}

func TestDottedPaths(t *testing.T) {
	type profile struct {
		Name string
	}
	type user struct {
		Profile profile
	}

	out := render(t, `p{ (user.profile.name) }`, plait.Bindings{"user": user{Profile: profile{Name: "Ada"}}})
	assert.Equal(t, "<p>Ada</p>", out)

	out = render(t, `p{ (user.name) }`, plait.Bindings{"user": map[string]any{"name": "Ada"}})
	assert.Equal(t, "<p>Ada</p>", out)
}

func TestProducerFunctions(t *testing.T) {
	calls := 0
	out := render(t, `p{ (now) }`, plait.Bindings{"now": func() any {
		calls++
		return "later"
	}})
	assert.Equal(t, "<p>later</p>", out)
	assert.Equal(t, 1, calls)
}

func TestCompileErrors(t *testing.T) {
	_, err := plait.Compile(`div {`)
	var serr *plait.SyntaxError
	require.ErrorAs(t, err, &serr)

	_, err = plait.Compile(`br { "x" }`)
	var verr *plait.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "void element br")
}

func TestRenderErrors(t *testing.T) {
	tpl := plait.MustCompile(`p{ (missing) }`)
	_, err := tpl.Render(plait.Bindings{})
	var rerr *plait.RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, err.Error(), "missing")

	tpl = plait.MustCompile(`@for x in xs { (x) }`)
	_, err = tpl.Render(plait.Bindings{"xs": 42})
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, err.Error(), "cannot iterate")
}

func TestDeterministicLowering(t *testing.T) {
	src := `div id=(id) { @for x in xs { span{(x)} } }`
	b := plait.Bindings{"id": "a", "xs": []int{1, 2, 3}}

	t1 := plait.MustCompile(src)
	t2 := plait.MustCompile(src)
	o1, err := t1.Render(b)
	require.NoError(t, err)
	o2, err := t2.Render(b)
	require.NoError(t, err)
	assert.Equal(t, o1, o2)
}

func TestConcurrentRenders(t *testing.T) {
	tpl := plait.MustCompile(`ul{ @for n in items { li{(n)} } }`)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := tpl.Render(plait.Bindings{"items": []int{1, 2, 3}})
			assert.NoError(t, err)
			assert.Equal(t, plait.Html("<ul><li>1</li><li>2</li><li>3</li></ul>"), out)
		}()
	}
	wg.Wait()
}

func TestRenderHelper(t *testing.T) {
	out, err := plait.Render("a <b>")
	require.NoError(t, err)
	assert.Equal(t, plait.Html("a &lt;b&gt;"), out)

	out, err = plait.Render(plait.Raw("<b>"))
	require.NoError(t, err)
	assert.Equal(t, plait.Html("<b>"), out)

	out, err = plait.Render(plait.Some(42))
	require.NoError(t, err)
	assert.Equal(t, plait.Html("42"), out)

	out, err = plait.Render(plait.None())
	require.NoError(t, err)
	assert.Equal(t, plait.Html(""), out)

	out, err = plait.Render(plait.RenderFunc(func(b *plait.Buffer) error {
		b.WriteEscaped("<x>")
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, plait.Html("&lt;x&gt;"), out)
}

func TestLiteralFolding(t *testing.T) {
	out := render(t, `p{ ("a<b") (42) (3.5) (true) }`, nil)
	assert.Equal(t, "<p>a&lt;b423.5true</p>", out)
}

func TestSanitizeFragment(t *testing.T) {
	h := plait.SanitizeFragment(`<p>ok</p><script>alert(1)</script>`)
	assert.Equal(t, plait.Html("<p>ok</p>"), h)
	assert.False(t, strings.Contains(string(h), "script"))
}
