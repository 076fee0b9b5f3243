package app

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"scour/config"
	"scour/search"
)

// Styles shared by the plain report, usage errors and the interactive browser
var (
	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7"))

	subHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a9b1d6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5")).
			Bold(true)

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bb9af7"))
)

const (
	barWidth        = 20
	maxPreviewLines = 5
)

// RenderReport writes the ranked results followed by the scan summary.
func RenderReport(w io.Writer, report *search.SearchReport, cfg config.SearchConfig, pattern *search.Pattern) {
	fmt.Fprintln(w, searchHeader(cfg, pattern))
	fmt.Fprintln(w)

	if len(report.Results) == 0 {
		fmt.Fprintln(w, warningStyle.Render("No results found."))
	}

	for i, result := range report.Results {
		fmt.Fprintln(w, renderResult(i+1, result, cfg))
		if cfg.ShowPreview {
			for _, line := range previewLines(result, pattern, maxPreviewLines) {
				fmt.Fprintln(w, "    "+line)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, renderSummary(report.Stats, len(report.Results)))
}

func searchHeader(cfg config.SearchConfig, pattern *search.Pattern) string {
	mode := "literal"
	if cfg.UseRegex {
		mode = "regex"
	}
	if cfg.CaseSensitive {
		mode += ", case-sensitive"
	}
	lines := []string{
		subHeaderStyle.Render(fmt.Sprintf("🔍 Searching: %q (%s)", pattern.String(), mode)),
		infoStyle.Render("📁 Target: " + cfg.RootDirectory + " • " + config.GetFileTypeDescription(cfg.Extensions, cfg.UseOCR)),
	}
	return strings.Join(lines, "\n")
}

func renderResult(rank int, result search.FileResult, cfg config.SearchConfig) string {
	matches := "matches"
	if result.MatchCount == 1 {
		matches = "match"
	}
	return fmt.Sprintf("%3d. %s %s %s\n     %s %3.0f%%  %s",
		rank,
		pathStyle.Render(displayPath(cfg.RootDirectory, result.Path)),
		separatorStyle.Render("•"),
		infoStyle.Render(fmt.Sprintf("%s, %s", result.Type, search.FormatFileSize(result.Size))),
		confidenceBar(result.Confidence, barWidth),
		result.Confidence*100,
		successStyle.Render(fmt.Sprintf("%d %s", result.MatchCount, matches)),
	)
}

// previewLines renders up to limit match contexts with the occurrences highlighted.
func previewLines(result search.FileResult, pattern *search.Pattern, limit int) []string {
	var lines []string
	for i, m := range result.Matches {
		if i == limit {
			lines = append(lines, separatorStyle.Render(fmt.Sprintf("… %d more", len(result.Matches)-limit)))
			break
		}
		label := separatorStyle.Render(fmt.Sprintf("L%-5d", m.Line))
		if m.Context == "" {
			lines = append(lines, label+" "+infoStyle.Render(fmt.Sprintf("offset %d", m.Offset)))
			continue
		}
		ctx := pattern.Highlight(m.Context, func(s string) string { return matchStyle.Render(s) })
		lines = append(lines, label+" "+ctx)
	}
	return lines
}

func renderSummary(stats search.ScanStats, shown int) string {
	var lines []string
	lines = append(lines, separatorStyle.Render(strings.Repeat("─", 48)))
	lines = append(lines, successStyle.Render(fmt.Sprintf("📋 Matched: %s of %s files • %s matches • showing %d",
		search.FormatNumber(stats.FilesMatched), search.FormatNumber(stats.FilesScanned), search.FormatNumber(stats.TotalMatches), shown)))
	lines = append(lines, infoStyle.Render(fmt.Sprintf("⏱️ Searched %s in %s", search.FormatFileSize(stats.BytesScanned), stats.Elapsed.Round(time.Millisecond))))

	var byType []string
	for _, ft := range config.AllFileTypes {
		if n := stats.ByType[ft]; n > 0 {
			byType = append(byType, fmt.Sprintf("%s %d", ft, n))
		}
	}
	if len(byType) > 0 {
		lines = append(lines, infoStyle.Render("📁 By type: "+strings.Join(byType, ", ")))
	}

	var skipped []string
	for _, reason := range search.AllSkipReasons {
		if n := stats.Skipped[reason]; n > 0 {
			skipped = append(skipped, fmt.Sprintf("%s %d", reason, n))
		}
	}
	if len(skipped) > 0 {
		lines = append(lines, warningStyle.Render("⚠️ Skipped: "+strings.Join(skipped, ", ")))
	}
	return strings.Join(lines, "\n")
}

// confidenceBar draws a fixed-width bar for a score in [0, 1].
func confidenceBar(confidence float64, width int) string {
	filled := int(confidence*float64(width) + 0.5)
	filled = max(0, min(width, filled))
	return barStyle.Render(strings.Repeat("█", filled)) + separatorStyle.Render(strings.Repeat("░", width-filled))
}

// displayPath shows paths relative to the search root when possible.
func displayPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func wrapTextWithIndent(prefix, text string, width int) string {
	prefixWidth := lipgloss.Width(prefix)
	indent := strings.Repeat(" ", prefixWidth)
	wrapped := lipgloss.NewStyle().Width(max(10, width-prefixWidth)).Render(text)
	return prefix + strings.ReplaceAll(wrapped, "\n", "\n"+indent)
}
