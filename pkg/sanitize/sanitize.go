// Package sanitize strips unsafe markup from user-authored text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Text cleans long-form text (stories, interpretations, comments). Basic
// formatting tags survive; the result is safe to render as HTML.
func Text(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

// Plain removes every tag from short single-line fields and returns plain
// text, entities decoded.
func Plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
