// File path: internal/kb/sanitize.go
package kb

import (
	"html"
	"regexp"
	"strings"
)

// Only sources known to embed markup run through CleanHTML: knowledge-base
// article bodies and ticket comment bodies. Everything else is trimmed as-is.

var (
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockTags    = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|ul|ol|tr|td|th|table|blockquote|pre|section|article|figure|figcaption)[^>]*>`)
	lineBreaks   = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
)

// CleanHTML strips markup from a possibly entity-escaped HTML fragment and
// returns plain text. Block-level boundaries become newlines, every line is
// trimmed, and blank runs are collapsed. The parse is best-effort: malformed
// or partial markup never fails, whatever text is extractable comes back.
func CleanHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	text := html.UnescapeString(raw)
	text = scriptTag.ReplaceAllString(text, "")
	text = styleTag.ReplaceAllString(text, "")
	text = htmlComments.ReplaceAllString(text, "")
	text = blockTags.ReplaceAllString(text, "\n")
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = allTags.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return strings.Join(cleaned, "\n")
}
