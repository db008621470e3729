package escape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLPassThrough(t *testing.T) {
	var sb strings.Builder
	HTML(&sb, "Hello, World!")
	assert.Equal(t, "Hello, World!", sb.String())
}

func TestHTMLSpecials(t *testing.T) {
	assert.Equal(t, "He said &quot;hello&quot;", HTMLString(`He said "hello"`))
	assert.Equal(t, "It&#39;s fine", HTMLString("It's fine"))
	assert.Equal(t, "&lt;&quot;&#39;&gt;&amp;", HTMLString(`<"'>&`))
	assert.Equal(t, "Hello &lt;世界&gt;", HTMLString("Hello <世界>"))
	assert.Equal(t, "", HTMLString(""))
}

func TestHTMLNoDoubleEscape(t *testing.T) {
	assert.Equal(t, "&amp;amp;", HTMLString("&amp;"))
}

func TestIsSafeURLAllowed(t *testing.T) {
	for _, url := range []string{
		"http://example.com",
		"http://example.com/path?query=1",
		"http://example.com/path#fragment",
		"https://example.com/path?query=1#fragment",
		"mailto:test@example.com",
		"tel:+1234567890",
		"path/to/page",
		"/path/to/page",
		"./relative/path",
		"../relative/path",
		"?query=value",
		"#section",
		`https://example.com/path?a=1&b="2"`,
	} {
		assert.True(t, IsSafeURL(url), url)
	}
}

func TestIsSafeURLBlocked(t *testing.T) {
	for _, url := range []string{
		"",
		"javascript:alert(1)",
		"  javascript:alert(1)",
		"javascript  :alert(1)",
		"java\x00script:alert(1)",
		"java\nscript:alert(1)",
		"java\tscript:alert(1)",
		"JaVaScRiPt:alert(1)",
		"JAVASCRIPT:alert(1)",
		"javascript%3Aalert(1)",
		"java&#115;cript:alert(1)",
		"%256a%2561%2576%2561%2573%2563%2572%2569%2570%2574%253aalert(1)",
		"data:text/html,<script>alert(1)</script>",
		"vbscript:msgbox(1)",
		"file:///etc/passwd",
		"blob:https://example.com/550e8400-e29b-41d4-a716-446655440000",
		"about:blank",
		"ws://example.com/socket",
		"wss://example.com/socket",
		"ftp://example.com/file",
	} {
		assert.False(t, IsSafeURL(url), url)
	}
}

func TestURLWrite(t *testing.T) {
	assert.Equal(t, "https://example.com?q=&quot;hello&quot;", URLString(`https://example.com?q="hello"`))
	assert.Equal(t, "about:invalid", URLString("javascript:alert('XSS')"))
}

func TestIsURLAttribute(t *testing.T) {
	for _, name := range []string{
		"href", "src", "action", "formaction", "poster", "cite",
		"data", "profile", "manifest", "icon", "background", "xlink:href",
	} {
		assert.True(t, IsURLAttribute(name), name)
	}
	assert.False(t, IsURLAttribute("class"))
	assert.False(t, IsURLAttribute("data-href"))
}
