// Package sanitize normalizes untrusted text before it is stored.
package sanitize

import (
	"regexp"
	"strings"
)

// charRef matches a character reference at the start of a string.
var charRef = regexp.MustCompile(`^&(?:[A-Za-z][A-Za-z0-9]{0,31}|#[0-9]{1,7}|#[xX][0-9A-Fa-f]{1,6});`)

// Text trims surrounding whitespace and HTML-escapes the rest.
// Text(Text(s)) == Text(s) for any s.
func Text(s string) string {
	return Escape(strings.TrimSpace(s))
}

// Escape replaces &, <, >, " and ' with character references. An & that
// already starts a character reference is kept as is, so escaped input
// passes through unchanged.
func Escape(s string) string {
	if !strings.ContainsAny(s, `&<>"'`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			if ref := charRef.FindString(s[i:]); ref != "" {
				b.WriteString(ref)
				i += len(ref) - 1
				continue
			}
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#x27;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
