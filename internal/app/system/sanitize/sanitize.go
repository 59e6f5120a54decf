// internal/app/system/sanitize/sanitize.go

// Package sanitize cleans user-supplied text before it is stored.
//
// Group names are plain text: all markup is stripped. Group descriptions
// may carry basic formatting (the kind WYSIWYG editors and Markdown
// converters emit), which is filtered through bluemonday's UGC policy so
// scripts, event handlers, and javascript: URLs never reach the database.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

// Text strips all HTML from s and returns the trimmed plain text.
// Entities introduced by the stripper are unescaped, so "5 < 10" survives
// unchanged and "<b>Rookies</b>" becomes "Rookies".
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// HTML filters s down to safe user-generated markup. Safe formatting
// (paragraphs, emphasis, lists, links, code) is preserved; scripts, inline
// event handlers, iframes, and unsafe URL schemes are removed. Links gain
// rel="nofollow".
func HTML(s string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}
