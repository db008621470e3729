package plait_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devashishdxt/plait"
)

func spreadOut(t *testing.T, attrs *plait.Attributes) string {
	t.Helper()
	tpl := plait.MustCompile(`div ..(a) { }`)
	out, err := tpl.Render(plait.Bindings{"a": attrs})
	require.NoError(t, err)
	return string(out)
}

func TestAttrsOrderPreserved(t *testing.T) {
	out := spreadOut(t, plait.Attrs("c", "1", "a", "2", "b", "3"))
	assert.Equal(t, `<div c="1" a="2" b="3"></div>`, out)
}

func TestAttrsLastWriteWins(t *testing.T) {
	a := plait.Attrs("id", "first", "title", "x")
	a.Set("id", "second")
	out := spreadOut(t, a)
	assert.Equal(t, `<div id="second" title="x"></div>`, out)
}

func TestAttrsClassConcatenates(t *testing.T) {
	a := plait.Attrs("class", "btn")
	a.Set("class", "primary")
	out := spreadOut(t, a)
	assert.Equal(t, `<div class="btn primary"></div>`, out)
}

func TestAttrsMerge(t *testing.T) {
	a := plait.Attrs("class", "btn", "id", "x")
	b := plait.Attrs("class", "wide", "id", "y", "title", "t")
	a.Merge(b)
	out := spreadOut(t, a)
	assert.Equal(t, `<div class="btn wide" id="y" title="t"></div>`, out)
}

func TestAttrsValuesEscaped(t *testing.T) {
	out := spreadOut(t, plait.Attrs("title", `a"b<c`))
	assert.Equal(t, `<div title="a&quot;b&lt;c"></div>`, out)
}

func TestAttrsURLSanitized(t *testing.T) {
	out := spreadOut(t, plait.Attrs("href", "javascript:alert(1)"))
	assert.Equal(t, `<div href="about:invalid"></div>`, out)
}

func TestAttrsSetHtmlWritesVerbatim(t *testing.T) {
	a := plait.Attrs("title", "plain")
	a.SetHtml("data-meta", plait.Raw("a&amp;b"))
	out := spreadOut(t, a)
	assert.Equal(t, `<div title="plain" data-meta="a&amp;b"></div>`, out)
}

func TestAttrsClassConcatMixesPreEscaped(t *testing.T) {
	a := plait.Attrs("class", `x<y`)
	a.SetHtml("class", plait.Raw("a&amp;b"))
	out := spreadOut(t, a)
	assert.Equal(t, `<div class="x&lt;y a&amp;b"></div>`, out)
}

func TestAttrsGetAndLen(t *testing.T) {
	a := plait.Attrs("id", "x").SetFlag("hidden")
	assert.Equal(t, 2, a.Len())

	v, ok := a.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	v, ok = a.Get("hidden")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok = a.Get("nope")
	assert.False(t, ok)
}

func TestAttrsClone(t *testing.T) {
	a := plait.Attrs("id", "x")
	b := a.Clone()
	b.Set("id", "y")

	v, _ := a.Get("id")
	assert.Equal(t, "x", v)
}

func TestAttrsOddArgsPanics(t *testing.T) {
	assert.Panics(t, func() { plait.Attrs("only") })
}
