// Package escape implements HTML escaping and URL scheme sanitization
// for template output.
package escape

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

// HTML writes s into dst with the five HTML special characters replaced
// by entities. Inputs with no special characters are appended in one
// write.
func HTML(dst *strings.Builder, s string) {
	last := 0
	for i := 0; i < len(s); i++ {
		var repl string
		switch s[i] {
		case '&':
			repl = "&amp;"
		case '<':
			repl = "&lt;"
		case '>':
			repl = "&gt;"
		case '"':
			repl = "&quot;"
		case '\'':
			repl = "&#39;"
		default:
			continue
		}
		dst.WriteString(s[last:i])
		dst.WriteString(repl)
		last = i + 1
	}
	dst.WriteString(s[last:])
}

// HTMLString escapes s and returns the result.
func HTMLString(s string) string {
	if !needsEscape(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	HTML(&sb, s)
	return sb.String()
}

func needsEscape(s string) bool {
	return strings.ContainsAny(s, `&<>"'`)
}

// BlockedURLFallback replaces URL attribute values that fail the safety
// check.
const BlockedURLFallback = "about:invalid"

// URL writes s into dst if it passes IsSafeURL (HTML-escaped), or the
// neutral fallback if it does not.
func URL(dst *strings.Builder, s string) {
	if IsSafeURL(s) {
		HTML(dst, s)
		return
	}
	dst.WriteString(BlockedURLFallback)
}

// URLString sanitizes and escapes s, returning the result.
func URLString(s string) string {
	var sb strings.Builder
	URL(&sb, s)
	return sb.String()
}

// urlAttributes are the attribute names that carry navigable URLs and get
// scheme sanitization on dynamic values.
var urlAttributes = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true,
	"poster": true, "cite": true, "data": true, "profile": true,
	"manifest": true, "icon": true, "background": true, "xlink:href": true,
}

// IsURLAttribute reports whether the attribute name conventionally
// carries a navigable URL.
func IsURLAttribute(name string) bool {
	return urlAttributes[name]
}

// IsSafeURL reports whether a URL value may be emitted. The value is
// percent-decoded twice (OWASP guidance for double-encoded payloads),
// entity-unescaped and stripped of control characters before its scheme
// is checked against the allowlist; relative URLs have no scheme and
// pass. The caller still HTML-escapes the original value on write.
func IsSafeURL(url string) bool {
	if url == "" {
		return false
	}

	decoded, ok := percentDecode(url)
	if !ok {
		return false
	}
	decoded, ok = percentDecode(decoded)
	if !ok {
		return false
	}
	decoded = html.UnescapeString(decoded)
	decoded = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, decoded)

	trimmed := strings.TrimSpace(decoded)
	if trimmed == "" {
		return false
	}

	scheme, ok := parseScheme(trimmed)
	if !ok {
		return true // relative URL
	}
	switch scheme {
	case "http", "https", "mailto", "tel":
		return true
	}
	return false
}

// percentDecode resolves %XX sequences, leaving malformed sequences
// untouched. It fails only when the decoded bytes are not valid UTF-8.
func percentDecode(s string) (string, bool) {
	if !strings.Contains(s, "%") {
		return s, true
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if ok1 && ok2 {
				sb.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	out := sb.String()
	if !utf8.ValidString(out) {
		return "", false
	}
	return out, true
}

func unhex(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// parseScheme extracts a lowercased scheme token, tolerating ASCII
// whitespace and control characters between the token and the colon so
// "javascript  :alert(1)" still parses as javascript. Values whose first
// '/', '?' or '#' precedes the colon are relative.
func parseScheme(s string) (string, bool) {
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return "", false
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 && i < colon {
		return "", false
	}

	prefix := s[:colon]
	if prefix == "" {
		return "", false
	}
	if !isASCIIAlpha(prefix[0]) {
		return "", false
	}

	tokenEnd := 1
	for tokenEnd < len(prefix) {
		b := prefix[tokenEnd]
		if isASCIIAlpha(b) || (b >= '0' && b <= '9') || b == '+' || b == '-' || b == '.' {
			tokenEnd++
			continue
		}
		break
	}

	for _, b := range []byte(prefix[tokenEnd:]) {
		if !isASCIISpace(b) && !isASCIIControl(b) {
			return "", false
		}
	}
	return strings.ToLower(prefix[:tokenEnd]), true
}

func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isASCIIControl(b byte) bool {
	return b < 0x20 || b == 0x7f
}
