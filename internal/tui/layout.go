package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
	notesWidth     int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
		notesWidth:     80,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	l.notesWidth = innerWidth

	const chrome = 14
	usable := height - chrome
	if usable < 8 {
		usable = 8
	}
	l.viewportHeight = usable
}

func (m *model) refreshReaderIfDirty() {
	if !m.readerDirty {
		return
	}
	m.viewport.SetContent(m.buildReaderContent())
	m.ensureCursorVisible()
	m.readerDirty = false
}

// buildReaderContent styles the extracted text line by line so the cursor
// and an in-progress selection stay visible while scrolling.
func (m *model) buildReaderContent() string {
	if m.loadingDoc {
		return helperStyle.Render("Extracting text…")
	}
	if len(m.docLines) == 0 {
		if m.needsOCR {
			return helperStyle.Render("No extractable text. Press r to run OCR and build a text layer.")
		}
		return helperStyle.Render("This document has no text yet.")
	}

	selStart, selEnd, hasSelection := m.selectionRange()
	wrap := m.wrapWidth(4)
	lines := make([]string, len(m.docLines))
	for idx, line := range m.docLines {
		rendered := wordwrap.String(line, wrap)
		inSelection := hasSelection && idx >= selStart && idx <= selEnd
		switch {
		case idx == m.cursorLine:
			rendered = styleMultiline(rendered, currentLineStyle)
		case inSelection:
			rendered = styleMultiline(rendered, selectionLineStyle)
		}
		lines[idx] = rendered
	}
	return strings.Join(lines, "\n")
}

func (m *model) refreshNotesIfDirty() {
	if !m.notesVisible || !m.notesDirty {
		return
	}
	active := m.config.Store.ActivePath()
	if active == "" {
		m.notesView = helperStyle.Render("Open a document to see its notes.")
		m.notesDirty = false
		return
	}
	markdown := m.noteDoc(active).Markdown()
	if strings.TrimSpace(markdown) == "" {
		m.notesView = helperStyle.Render("No notes yet. Highlights will build the outline.")
		m.notesDirty = false
		return
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.layout.notesWidth),
	)
	if err != nil {
		m.notesView = markdown
		m.notesDirty = false
		return
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		m.notesView = markdown
	} else {
		m.notesView = strings.TrimRight(rendered, "\n")
	}
	m.notesDirty = false
}

func styleMultiline(text string, style lipgloss.Style) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}
