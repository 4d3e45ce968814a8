// Package sanitize cleans free-form user text and validates AI extraction
// output into a safe shape before it becomes domain data.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	reMarkup  = regexp.MustCompile(`<[^>]*>`)
	reControl = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	reSpaces  = regexp.MustCompile(`\s+`)
)

// Text strips markup and control characters, collapses whitespace and
// truncates to maxLen runes. maxLen <= 0 means no length cap.
func Text(s string, maxLen int) string {
	s = reMarkup.ReplaceAllString(s, "")
	s = reControl.ReplaceAllString(s, "")
	s = reSpaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if maxLen > 0 {
		if r := []rune(s); len(r) > maxLen {
			s = strings.TrimSpace(string(r[:maxLen]))
		}
	}
	return s
}

// stripMarkdownFences removes a ```json ... ``` wrapper that models like to
// put around their output.
func stripMarkdownFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
