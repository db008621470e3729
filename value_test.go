package plait

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderedValue(t *testing.T, v any, raw bool) string {
	t.Helper()
	b := &Buffer{}
	require.NoError(t, renderValue(b, v, raw))
	return string(b.Html())
}

func TestRenderValueKinds(t *testing.T) {
	assert.Equal(t, "", renderedValue(t, nil, false))
	assert.Equal(t, "a&lt;b", renderedValue(t, "a<b", false))
	assert.Equal(t, "a<b", renderedValue(t, "a<b", true))
	assert.Equal(t, "<b>", renderedValue(t, Html("<b>"), false))
	assert.Equal(t, "42", renderedValue(t, 42, false))
	assert.Equal(t, "-7", renderedValue(t, int64(-7), false))
	assert.Equal(t, "7", renderedValue(t, uint8(7), false))
	assert.Equal(t, "2.5", renderedValue(t, 2.5, false))
	assert.Equal(t, "true", renderedValue(t, true, false))
	assert.Equal(t, "inner", renderedValue(t, Some("inner"), false))
	assert.Equal(t, "", renderedValue(t, None(), false))
	assert.Equal(t, "late", renderedValue(t, func() any { return "late" }, false))
}

func TestRenderValueNestedOption(t *testing.T) {
	assert.Equal(t, "deep", renderedValue(t, Some(Some("deep")), false))
	assert.Equal(t, "", renderedValue(t, Some(None()), false))
}

func TestTruthiness(t *testing.T) {
	assert.False(t, truthy(nil))
	assert.False(t, truthy(false))
	assert.True(t, truthy(true))
	assert.False(t, truthy(""))
	assert.True(t, truthy("x"))
	assert.False(t, truthy(0))
	assert.True(t, truthy(3))
	assert.False(t, truthy(None()))
	assert.True(t, truthy(Some(1)))
	assert.True(t, truthy(struct{}{}))
}

func TestBufferAppendOnly(t *testing.T) {
	b := &Buffer{}
	b.WriteString("<p>")
	b.WriteEscaped("a&b")
	b.WriteURL("javascript:x")
	b.WriteHtml("</p>")
	assert.Equal(t, Html("<p>a&amp;babout:invalid</p>"), b.Html())
	assert.Equal(t, len("<p>a&amp;babout:invalid</p>"), b.Len())
}
