// Package sanitize is the single trust boundary between assistant-authored
// text and anything the clients render as structure. Every string that
// originates from the completion backend passes through Clean exactly once
// before it is stored in rendering state.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every tag and attribute, keeping only inner text.
// bluemonday policies are safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// maxPasses bounds the strip/unescape loop. Real assistant output reaches
// a fixed point in one or two passes; the bound only guards against
// pathological entity nesting.
const maxPasses = 8

// Clean removes all markup from s, preserving the inner text content.
// It never fails, and it is idempotent: Clean(Clean(s)) == Clean(s).
//
// bluemonday escapes the text that survives ("&" -> "&amp;"), so the
// entity escaping is undone after each strip. Unescaping can resurrect a
// tag that arrived pre-escaped ("&lt;script&gt;"), so the pair runs until
// the string stops changing. The returned string is a fixed point of the
// strip/unescape pass, which is what makes a second Clean a no-op.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			return next
		}
		s = next
	}
	return s
}

// CleanAndTrim is Clean followed by trimming surrounding whitespace.
// Convenience for label-sized fields.
func CleanAndTrim(s string) string {
	return strings.TrimSpace(Clean(s))
}
