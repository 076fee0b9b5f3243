package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scour/search"
)

type model struct {
	// Results and paging
	report        *search.SearchReport
	currentPage   int
	contentScroll int

	// Session and timing
	engine    *search.SearchEngine
	ctx       context.Context
	cancel    context.CancelFunc
	startWall time.Time
	err       error
	quitting  bool
	loading   bool

	// Window size
	width  int
	height int

	memUsageText string // e.g., " • Heap XXX MB • CPU YY%"
}

// Messages for TUI updates
type searchResultMsg struct {
	report *search.SearchReport
	err    error
}

type memUsageMsg struct {
	Text string
}

type elapsedTick struct{}

func newModel(ctx context.Context, se *search.SearchEngine) model {
	ctx, cancel := context.WithCancel(ctx)
	return model{
		engine:    se,
		ctx:       ctx,
		cancel:    cancel,
		startWall: time.Now(),
		loading:   true,
	}
}

// runInteractive runs the search behind a full-screen browser and returns the
// number of files listed.
func runInteractive(ctx context.Context, se *search.SearchEngine) (int, error) {
	m := newModel(ctx, se)
	defer m.cancel()

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return 0, fmt.Errorf("interactive view: %w", err)
	}
	fm, ok := final.(model)
	if !ok {
		return 0, nil
	}
	if fm.err != nil {
		return 0, fm.err
	}
	if fm.report == nil {
		return 0, nil
	}
	return len(fm.report.Results), nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.runSearch(), tickElapsed(), memUsageTick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// While loading, only allow quit
		if m.loading {
			switch msg.String() {
			case "q", "ctrl+c", "esc":
				m.cancel()
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "n", "right", "l", "enter", " ":
			if m.currentPage < m.totalPages()-1 {
				m.currentPage++
				m.contentScroll = 0
			}
			return m, nil
		case "p", "left", "h":
			if m.currentPage > 0 {
				m.currentPage--
				m.contentScroll = 0
			}
			return m, nil
		case "home", "g":
			m.currentPage = 0
			m.contentScroll = 0
			return m, nil
		case "end", "G":
			m.currentPage = m.totalPages() - 1
			m.contentScroll = 0
			return m, nil
		case "up", "k":
			if m.contentScroll > 0 {
				m.contentScroll--
			}
			return m, nil
		case "down", "j":
			m.contentScroll++
			return m, nil
		case "pgup":
			m.contentScroll = max(0, m.contentScroll-5)
			return m, nil
		case "pgdown":
			m.contentScroll += 5
			return m, nil
		}
		return m, nil

	case searchResultMsg:
		m.loading = false
		m.report = msg.report
		m.err = msg.err
		m.currentPage = 0
		if msg.err != nil {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case elapsedTick:
		if m.loading {
			return m, tickElapsed()
		}
		return m, nil

	case memUsageMsg:
		m.memUsageText = msg.Text
		return m, memUsageTick()
	}
	return m, nil
}

func (m model) totalPages() int {
	if m.report == nil || len(m.report.Results) == 0 {
		return 1
	}
	return len(m.report.Results)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	height := m.height
	if width <= 0 {
		width = 120
	}
	if height <= 0 {
		height = 30
	}

	cfg := m.engine.Config()
	var headerLines []string
	headerLines = append(headerLines, "")
	headerLines = append(headerLines, searchHeader(cfg, m.engine.Pattern()))

	ocr := "off"
	if cfg.UseOCR && search.OCRAvailable {
		ocr = "on"
	} else if cfg.UseOCR {
		ocr = "unavailable"
	}
	engine := fmt.Sprintf("⚙️ Engine: Workers %d • OCR %s%s", cfg.Workers, ocr, m.memUsageText)
	headerLines = append(headerLines, lipgloss.NewStyle().Foreground(lipgloss.Color("#bb9af7")).Render(engine))

	var status string
	if m.loading {
		status = fmt.Sprintf("⏳ Searching... %s", time.Since(m.startWall).Round(time.Second))
	} else {
		stats := m.report.Stats
		status = fmt.Sprintf("⏱️ Searched %s files in %s • Matched %s • Skipped %s",
			search.FormatNumber(stats.FilesScanned), stats.Elapsed.Round(time.Millisecond),
			search.FormatNumber(stats.FilesMatched), search.FormatNumber(stats.FilesSkipped()))
	}
	headerLines = append(headerLines, lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")).Render(status))

	header := strings.Join(headerLines, "\n")
	headerHeight := strings.Count(header, "\n") + 1

	boxContent := m.boxContent(width)

	footerHeight := 1
	chromeHeight := 4
	contentHeight := max(1, height-headerHeight-footerHeight-chromeHeight)

	// Window the box content according to contentScroll
	lines := strings.Split(boxContent, "\n")
	maxStart := max(0, len(lines)-contentHeight)
	start := min(m.contentScroll, maxStart)
	end := min(start+contentHeight, len(lines))
	window := strings.Join(lines[start:end], "\n")

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render("n/→ next • p/← previous • ↑/↓ scroll • home/end • q quit")

	return strings.Join([]string{
		header,
		appStyle.Width(width - 4).Height(contentHeight).Render(window),
		footer,
	}, "\n")
}

func (m model) boxContent(width int) string {
	if m.loading {
		return "Searching..."
	}
	if m.report == nil {
		return warningStyle.Render("No results found.")
	}
	if len(m.report.Results) == 0 {
		return warningStyle.Render("No results found.") + "\n\n" + renderSummary(m.report.Stats, 0)
	}

	cfg := m.engine.Config()
	result := m.report.Results[m.currentPage]

	var b strings.Builder
	b.WriteString(renderResult(m.currentPage+1, result, cfg))
	b.WriteString("\n\n")

	innerWidth := max(10, width-10)
	mark := func(s string) string { return matchStyle.Render(s) }
	for _, match := range result.Matches {
		label := subHeaderStyle.Render(fmt.Sprintf("L%-5d ", match.Line))
		text := match.Context
		if text == "" {
			text = infoStyle.Render(fmt.Sprintf("offset %d", match.Offset))
		} else {
			text = m.engine.Pattern().Highlight(text, mark)
		}
		b.WriteString(wrapTextWithIndent(label, text, innerWidth))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Result %d of %d", m.currentPage+1, len(m.report.Results)))
	return b.String()
}

// Background search command
func (m model) runSearch() tea.Cmd {
	se := m.engine
	ctx := m.ctx
	return func() tea.Msg {
		report, err := se.Execute(ctx)
		return searchResultMsg{report: report, err: err}
	}
}

func tickElapsed() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return elapsedTick{}
	})
}

func memUsageTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		heap, cpu := sampleMemoryAndCPU()
		return memUsageMsg{Text: fmt.Sprintf(" • Heap %5.1f MB • CPU %5.1f%%", float64(heap)/(1024*1024), cpu)}
	})
}
