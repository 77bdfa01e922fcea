package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/casefile/notetaker/internal/guide"
	"github.com/casefile/notetaker/internal/workspace"
)

func (m *model) View() string {
	switch m.stage {
	case stageBrowser:
		return m.viewBrowser()
	case stageReading:
		return m.viewReading()
	default:
		return ""
	}
}

func (m *model) viewBrowser() string {
	parts := []string{m.heroView()}

	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Case Files"))
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render(m.currentDir))
	b.WriteRune('\n')
	if len(m.entries) == 0 {
		b.WriteString(helperStyle.Render("Nothing here. Backspace goes up a directory."))
		b.WriteRune('\n')
	}
	for idx, entry := range m.entries {
		label := entry.Name
		if entry.IsDir {
			label += "/"
		} else {
			label = fmt.Sprintf("%s  %s", label, formatSize(entry.Size))
		}
		if idx == m.dirCursor {
			b.WriteString(currentLineStyle.Render("▸ " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteRune('\n')
	}
	parts = append(parts, b.String())

	if m.browserErr != "" {
		parts = append(parts, errorStyle.Render(m.browserErr))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView(), m.guideView())
	} else {
		parts = append(parts, helperStyle.Render("Enter opens, Backspace goes up, ? shows keys, Esc quits."))
	}
	return joinNonEmpty(parts)
}

func (m *model) viewReading() string {
	m.refreshReaderIfDirty()
	m.refreshNotesIfDirty()

	parts := []string{m.heroView(), m.tabBarView(), m.statusBarView()}
	parts = append(parts, m.viewport.View())

	if m.mode == modeConfirm {
		parts = append(parts, joinNonEmpty([]string{
			sectionHeaderStyle.Render("Confirm Highlight"),
			helperStyle.Render("“" + shortenText(m.pendingSel.Text, highlightPreviewLimit) + "”"),
			m.commentInput.View(),
		}))
	}

	if section := m.highlightsSection(); section != "" {
		parts = append(parts, section)
	}
	if m.notesVisible {
		parts = append(parts, joinNonEmpty([]string{
			sectionHeaderStyle.Render("Note Outline"),
			m.notesView,
		}))
	}

	if m.readerErr != "" {
		parts = append(parts, errorStyle.Render(m.readerErr))
	}
	if m.notesErr != "" {
		parts = append(parts, errorStyle.Render(m.notesErr))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.loadingDoc || m.ocrBusy() {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView(), m.guideView())
	}
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	logo := renderLogo()
	active := m.config.Store.ActivePath()
	if active == "" || m.stage == stageBrowser {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			logo,
			taglineStyle.Render(heroTagline),
		)
	}

	title := heroTitleStyle.Render(activeDisplayName(m.config.Store))
	meta := []string{helperStyle.Render(m.sourceURL)}
	if count := len(m.visibleHighlights()); count > 0 {
		meta = append(meta, helperStyle.Render(fmt.Sprintf("Highlights: %d", count)))
	}
	content := strings.Join(append([]string{title}, meta...), "\n")
	summary := heroBoxStyle.Render(content)
	panel := lipgloss.JoinHorizontal(lipgloss.Top, logo, heroSummaryStyle.Render(summary))
	return lipgloss.JoinVertical(lipgloss.Left, panel, taglineStyle.Render(heroTagline))
}

func (m *model) tabBarView() string {
	open := m.config.Store.OpenFiles()
	if len(open) == 0 {
		return ""
	}
	active := m.config.Store.ActivePath()
	cells := make([]string, 0, len(open))
	for _, f := range open {
		if f.Path == active {
			cells = append(cells, tabActiveStyle.Render(f.Name))
		} else {
			cells = append(cells, tabInactiveStyle.Render(f.Name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *model) statusBarView() string {
	store := m.config.Store
	stats := []string{
		fmt.Sprintf("Mode %s", m.modeLabel()),
		fmt.Sprintf("Color %s", store.HighlightColor()),
		fmt.Sprintf("Nest %d", store.NestingLevel()),
		fmt.Sprintf("Zoom %.0f%%", store.Zoom()*100),
	}
	if store.AutoNote() {
		stats = append(stats, "Auto-note on")
	} else {
		stats = append(stats, "Auto-note off")
	}
	if m.ocrBusy() {
		stats = append(stats, "OCR running")
	} else if m.needsOCR {
		stats = append(stats, "OCR suggested")
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

// highlightsSection renders the most recent captures. Entries without an id
// or any captured content are skipped rather than breaking the whole list.
func (m *model) highlightsSection() string {
	highlights := m.visibleHighlights()
	if len(highlights) == 0 {
		return ""
	}
	const shown = 5
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Highlights"))
	b.WriteRune('\n')
	for idx, h := range highlights {
		if idx >= shown {
			b.WriteString(helperStyle.Render(fmt.Sprintf("…and %d more", len(highlights)-shown)))
			b.WriteRune('\n')
			break
		}
		swatch := swatchFor(h.Color)
		body := shortenText(h.Text, highlightPreviewLimit)
		if h.IsImage() {
			body = fmt.Sprintf("[area capture, page %d]", h.Page)
		}
		b.WriteString(fmt.Sprintf("%s %s", swatch, body))
		b.WriteRune('\n')
		if h.Comment != "" {
			b.WriteString(helperStyle.Render("   ↳ " + h.Comment))
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m *model) visibleHighlights() []workspace.Highlight {
	all := m.config.Store.Highlights(m.config.Store.ActivePath())
	visible := make([]workspace.Highlight, 0, len(all))
	for _, h := range all {
		if h.ID == "" {
			continue
		}
		if strings.TrimSpace(h.Text) == "" && !h.IsImage() {
			continue
		}
		visible = append(visible, h)
	}
	return visible
}

func (m *model) modeLabel() string {
	switch m.mode {
	case modeSelect:
		return "SELECT"
	case modeConfirm:
		return "CONFIRM"
	default:
		return "NORMAL"
	}
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"j/k", "Move cursor"},
		{"v", "Start selection"},
		{"Enter", "Capture selection"},
		{"a", "Toggle auto-note"},
		{"1-3", "Nesting level"},
		{"c", "Cycle color"},
		{"y", "Copy latest"},
		{"n", "Notes preview"},
		{"e", "Export markdown"},
		{"r", "Run OCR"},
		{"Tab", "Next document"},
		{"x", "Close document"},
		{"Ctrl+R ×2", "Reset workspace"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description)
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) guideView() string {
	steps := guide.Build(guide.Metadata{DocumentName: activeDisplayName(m.config.Store)})
	lines := []string{sectionHeaderStyle.Render("Review Workflow")}
	for _, step := range steps {
		lines = append(lines, keyDescStyle.Render(step.Title))
		lines = append(lines, helperStyle.Render("  "+step.Description))
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func activeDisplayName(store *workspace.Store) string {
	active := store.ActivePath()
	for _, f := range store.OpenFiles() {
		if f.Path == active {
			return f.Name
		}
	}
	return ""
}

func swatchFor(color string) string {
	style, ok := swatchStyles[color]
	if !ok {
		style = swatchStyles["yellow"]
	}
	return style.Render("▌")
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func renderLogo() string {
	if len(logoArtLines) == 0 {
		return ""
	}
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width += 1
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}

	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			if y+1 < height && x+1 < width {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}

	for y, runes := range lineRunes {
		for x, r := range runes {
			if r == ' ' {
				continue
			}
			grid[y][x] = cell{r: r, style: logoFaceStyle}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = b.String()
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	heroAccentColor        = lipgloss.Color("#3a86ff")
	heroInkColor           = lipgloss.Color("#03071e")
	heroTextColor          = lipgloss.Color("#e8f1ff")
	heroSecondaryTextColor = lipgloss.Color("#90b4f8")

	heroTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	heroBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Foreground(heroTextColor).Background(heroInkColor).Padding(1, 2)
	heroSummaryStyle   = lipgloss.NewStyle().PaddingLeft(2)
	taglineStyle       = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	selectionLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#bde0fe"))
	tabActiveStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(heroAccentColor).Padding(0, 1)
	tabInactiveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1)
	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroInkColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#020410"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)

	swatchStyles = map[string]lipgloss.Style{
		"yellow": lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		"green":  lipgloss.NewStyle().Foreground(lipgloss.Color("77")),
		"blue":   lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		"pink":   lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
		"orange": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}

	logoArtLines = []string{
		"███╗   ██╗   ██████╗   ████████╗  ███████╗  ████████╗   █████╗   ██╗  ██╗  ███████╗  ██████╗   ",
		"████╗  ██║  ██╔═══██╗  ╚══██╔══╝  ██╔════╝  ╚══██╔══╝  ██╔══██╗  ██║ ██╔╝  ██╔════╝  ██╔══██╗  ",
		"██╔██╗ ██║  ██║   ██║     ██║     █████╗       ██║     ███████║  █████╔╝   █████╗    ██████╔╝  ",
		"██║╚██╗██║  ██║   ██║     ██║     ██╔══╝       ██║     ██╔══██║  ██╔═██╗   ██╔══╝    ██╔══██╗  ",
		"██║ ╚████║  ╚██████╔╝     ██║     ███████╗     ██║     ██║  ██║  ██║  ██╗  ███████╗  ██║  ██║  ",
		"╚═╝  ╚═══╝   ╚═════╝      ╚═╝     ╚══════╝     ╚═╝     ╚═╝  ╚═╝  ╚═╝  ╚═╝  ╚══════╝  ╚═╝  ╚═╝  ",
	}
)
