package search

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ctxCheckEvery is how many lines are scanned between deadline checks.
const ctxCheckEvery = 256

// Pattern is a compiled search pattern, shared read-only by every worker.
type Pattern struct {
	source  string
	literal string         // set for case-sensitive literal search
	re      *regexp.Regexp // set for regex and case-insensitive literal search
}

// Compile validates and compiles the pattern once for the whole scan.
// Case-insensitive modes use simple Unicode case folding.
func Compile(pattern string, useRegex, caseSensitive bool) (*Pattern, error) {
	if pattern == "" {
		return nil, &PatternError{Pattern: pattern, Err: errors.New("empty pattern")}
	}

	p := &Pattern{source: pattern}
	switch {
	case useRegex:
		expr := pattern
		if !caseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Err: err}
		}
		p.re = re
	case caseSensitive:
		p.literal = pattern
	default:
		p.re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(pattern))
	}
	return p, nil
}

func (p *Pattern) String() string { return p.source }

// FindAll returns every non-overlapping occurrence in text, left to right.
// Matches never span a line break. contextWidth > 0 fills Match.Context with
// up to that many bytes on each side of the occurrence.
// It returns ErrPatternTimeout if ctx expires before the scan completes.
func (p *Pattern) FindAll(ctx context.Context, text string, contextWidth int) ([]Match, error) {
	var matches []Match

	lineStart := 0
	lineNum := 1
	for lineStart <= len(text) {
		if lineNum%ctxCheckEvery == 0 && ctx.Err() != nil {
			return nil, ErrPatternTimeout
		}

		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += lineStart
		}
		line := text[lineStart:lineEnd]

		for _, loc := range p.findInLine(line) {
			m := Match{Offset: lineStart + loc[0], Line: lineNum}
			if contextWidth > 0 {
				m.Context = contextWindow(text, lineStart+loc[0], lineStart+loc[1], contextWidth)
			}
			matches = append(matches, m)
		}

		if lineEnd == len(text) {
			break
		}
		lineStart = lineEnd + 1
		lineNum++
	}

	if ctx.Err() != nil {
		return nil, ErrPatternTimeout
	}
	return matches, nil
}

// findInLine returns [start, end) pairs for each non-empty occurrence inside line.
func (p *Pattern) findInLine(line string) [][2]int {
	if p.re != nil {
		var out [][2]int
		for _, loc := range p.re.FindAllStringIndex(line, -1) {
			// Zero-width matches (^, x*) mark a position, not an occurrence.
			if loc[0] < loc[1] {
				out = append(out, [2]int{loc[0], loc[1]})
			}
		}
		return out
	}

	var out [][2]int
	pos := 0
	for pos <= len(line)-len(p.literal) {
		i := strings.Index(line[pos:], p.literal)
		if i < 0 {
			break
		}
		start := pos + i
		out = append(out, [2]int{start, start + len(p.literal)})
		pos = start + len(p.literal)
	}
	return out
}

// contextWindow clips [start-width, end+width) to text bounds and rune
// boundaries, then flattens line breaks for single-line display.
func contextWindow(text string, start, end, width int) string {
	from := max(0, start-width)
	to := min(len(text), end+width)

	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}

	window := text[from:to]
	window = strings.ReplaceAll(window, "\r", " ")
	window = strings.ReplaceAll(window, "\n", " ")
	window = strings.ReplaceAll(window, "\t", " ")
	return strings.TrimSpace(window)
}

// Highlight wraps every occurrence in s with mark. It is meant for short
// display strings such as Match.Context.
func (p *Pattern) Highlight(s string, mark func(string) string) string {
	locs := p.findInLine(s)
	if len(locs) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(s[last:loc[0]])
		b.WriteString(mark(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
