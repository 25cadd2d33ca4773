package form

import (
	"html"
	"strings"
)

// Sanitize trims surrounding whitespace, removes backslash-escaping
// artifacts, and HTML-escapes the value. Validation runs on sanitized values,
// so anything that reaches the email body is already escaped.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = stripSlashes(s)
	return html.EscapeString(s)
}

// stripSlashes removes one level of backslash escaping, as left behind by
// over-eager client-side quoting. A trailing lone backslash is dropped.
func stripSlashes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
