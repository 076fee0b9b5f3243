package search

import (
	"html"
	"regexp"
	"strings"
)

var (
	// HTML/XML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

	// Block-level tags that end a visual line
	htmlBreakRegex = regexp.MustCompile(`(?i)<(br|/p|/div|/tr|/li|/h[1-6])\b[^>]*>`)

	// CSS/JavaScript blocks (separate patterns since Go doesn't support backreferences)
	cssRegex = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	jsRegex  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)

	// Control characters other than tab and newline
	controlCharRegex = regexp.MustCompile(`[\x00-\x08\x0b-\x1f\x7f]`)
	spaceRunRegex    = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// stripHTML turns an HTML body into plain text, keeping one line per block.
func stripHTML(content string) string {
	content = cssRegex.ReplaceAllString(content, "")
	content = jsRegex.ReplaceAllString(content, "")
	content = htmlBreakRegex.ReplaceAllString(content, "\n")
	content = htmlTagRegex.ReplaceAllString(content, " ")
	content = html.UnescapeString(content)
	return cleanLines(content)
}

// cleanLines removes control characters, collapses horizontal whitespace and
// drops blank lines.
func cleanLines(content string) string {
	content = controlCharRegex.ReplaceAllString(content, "")

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceRunRegex.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
