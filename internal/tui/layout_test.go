package tui

import (
	"strings"
	"testing"
)

func TestLayoutClampsNarrowWindows(t *testing.T) {
	t.Parallel()
	l := newPageLayout()
	l.Update(20, 10)
	if l.viewportWidth < minViewportWidth {
		t.Fatalf("viewport width below minimum: %d", l.viewportWidth)
	}
	if l.viewportHeight < 8 {
		t.Fatalf("viewport height collapsed: %d", l.viewportHeight)
	}
}

func TestLayoutTracksWindowSize(t *testing.T) {
	t.Parallel()
	l := newPageLayout()
	l.Update(140, 50)
	if l.windowWidth != 140 || l.windowHeight != 50 {
		t.Fatalf("window size not recorded: %dx%d", l.windowWidth, l.windowHeight)
	}
	if l.viewportWidth != 140-viewportHorizontalPadding {
		t.Fatalf("viewport width = %d", l.viewportWidth)
	}
}

func TestReaderContentMarksSelection(t *testing.T) {
	m := newTestModel(t)
	openTestDocument(t, m, "motion.pdf")
	m.mode = modeSelect
	m.selectStart = 0
	m.cursorLine = 1

	content := m.buildReaderContent()
	if !strings.Contains(content, "Counsel objected") {
		t.Fatalf("reader content missing document text:\n%s", content)
	}
}

func TestReaderContentSuggestsOCRWhenEmpty(t *testing.T) {
	m := newTestModel(t)
	openTestDocument(t, m, "scan.pdf")
	m.docLines = nil
	m.needsOCR = true

	content := m.buildReaderContent()
	if !strings.Contains(content, "OCR") {
		t.Fatalf("empty scanned document should point at OCR:\n%s", content)
	}
}
