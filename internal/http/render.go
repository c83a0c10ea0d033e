package httpapp

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// ugcPolicy keeps the tags the rich-text editor emits (headings, emphasis,
// quotes, lists, links) and strips everything else.
var ugcPolicy = bluemonday.UGCPolicy()

// renderMarkdown turns chapter markdown into sanitized HTML for detail views.
func renderMarkdown(src string) string {
	unsafe := blackfriday.Run([]byte(src))
	return string(ugcPolicy.SanitizeBytes(unsafe))
}

// sanitizeHTML cleans editor-produced HTML before it is stored.
func sanitizeHTML(src string) string {
	return ugcPolicy.Sanitize(src)
}
