package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/casefile/notetaker/internal/bridge"
	"github.com/casefile/notetaker/internal/config"
	"github.com/casefile/notetaker/internal/notedoc"
	"github.com/casefile/notetaker/internal/workspace"
)

func newTestModel(t *testing.T) *model {
	t.Helper()
	store := workspace.NewStore(workspace.Options{})
	b := bridge.New("", nil, nil)
	m := newModel(Config{
		Store:    store,
		Bridge:   b,
		Settings: config.Settings{},
		StartDir: t.TempDir(),
	})
	if m.stopWatch != nil {
		t.Cleanup(m.stopWatch)
	}
	return m
}

func openTestDocument(t *testing.T, m *model, name string) string {
	t.Helper()
	path := filepath.Join("/case/docs", name)
	m.openFile(path)
	m.applyQueuedInstructions()
	m.docLines = []string{
		"The deponent stated the payment cleared on March 3.",
		"Counsel objected to the characterization.",
		"The exhibit was marked for identification.",
	}
	m.loadedPath = path
	m.stage = stageReading
	return path
}

func TestOpenFileSeedsNoteOutline(t *testing.T) {
	m := newTestModel(t)
	path := openTestDocument(t, m, "deposition.pdf")

	content := m.config.Store.NoteContent(path)
	if content == "" {
		t.Fatal("opening a fresh document should seed note content")
	}
	markdown := m.noteDoc(path).Markdown()
	if !strings.Contains(markdown, "deposition.pdf") {
		t.Fatalf("seeded outline missing document name: %q", markdown)
	}
}

func TestReopenDoesNotReseedNotes(t *testing.T) {
	m := newTestModel(t)
	path := openTestDocument(t, m, "deposition.pdf")
	before := m.config.Store.NoteContent(path)

	m.openFile(path)
	m.applyQueuedInstructions()

	if after := m.config.Store.NoteContent(path); after != before {
		t.Fatalf("reopening mutated notes:\nbefore %q\nafter  %q", before, after)
	}
}

func TestCaptureSelectionManualFlow(t *testing.T) {
	m := newTestModel(t)
	path := openTestDocument(t, m, "motion.pdf")

	m.mode = modeSelect
	m.selectStart = 0
	m.cursorLine = 1

	if _, _ = m.captureSelection(); m.mode != modeConfirm {
		t.Fatalf("manual capture should enter confirm mode, got %v", m.mode)
	}
	if _, pending := m.config.Store.PendingSelection(); !pending {
		t.Fatal("capture should leave a pending selection in the store")
	}

	m.commentInput.SetValue("key admission")
	if _, _ = m.handleConfirmKey(tea.KeyMsg{Type: tea.KeyEnter}); m.mode != modeNormal {
		t.Fatalf("confirm should return to normal mode, got %v", m.mode)
	}

	highlights := m.config.Store.Highlights(path)
	if len(highlights) != 1 {
		t.Fatalf("expected 1 highlight after confirm, got %d", len(highlights))
	}
	if highlights[0].Comment != "key admission" {
		t.Fatalf("comment not attached: %q", highlights[0].Comment)
	}
	if !strings.Contains(highlights[0].Text, "payment cleared") {
		t.Fatalf("selection text not captured: %q", highlights[0].Text)
	}
}

func TestCaptureSelectionAutoNote(t *testing.T) {
	m := newTestModel(t)
	path := openTestDocument(t, m, "motion.pdf")
	m.config.Store.SetAutoNote(true)

	m.mode = modeSelect
	m.selectStart = 0
	m.cursorLine = 0
	m.captureSelection()

	if m.mode != modeNormal {
		t.Fatalf("auto-note capture should skip confirm mode, got %v", m.mode)
	}
	if got := len(m.config.Store.Highlights(path)); got != 1 {
		t.Fatalf("auto-note should record immediately, got %d highlights", got)
	}
	if _, pending := m.config.Store.PendingSelection(); pending {
		t.Fatal("auto-note should not leave a pending selection")
	}
}

func TestEmptySelectionIsIgnored(t *testing.T) {
	m := newTestModel(t)
	path := openTestDocument(t, m, "motion.pdf")
	m.docLines = []string{"   ", ""}

	m.mode = modeSelect
	m.selectStart = 0
	m.cursorLine = 1
	m.captureSelection()

	if m.mode != modeNormal {
		t.Fatalf("empty capture should return to normal mode, got %v", m.mode)
	}
	if got := len(m.config.Store.Highlights(path)); got != 0 {
		t.Fatalf("whitespace selection should record nothing, got %d", got)
	}
}

func TestConfirmEscDismissesSelection(t *testing.T) {
	m := newTestModel(t)
	path := openTestDocument(t, m, "motion.pdf")

	m.mode = modeSelect
	m.selectStart = 0
	m.cursorLine = 0
	m.captureSelection()
	m.handleConfirmKey(tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != modeNormal {
		t.Fatalf("esc should return to normal mode, got %v", m.mode)
	}
	if got := len(m.config.Store.Highlights(path)); got != 0 {
		t.Fatalf("dismissed selection should record nothing, got %d", got)
	}
	if _, pending := m.config.Store.PendingSelection(); pending {
		t.Fatal("dismiss should clear the pending selection")
	}
}

func TestTabCyclesOpenDocuments(t *testing.T) {
	m := newTestModel(t)
	first := openTestDocument(t, m, "motion.pdf")
	second := openTestDocument(t, m, "reply.pdf")

	if got := m.config.Store.ActivePath(); got != second {
		t.Fatalf("second open should be active, got %q", got)
	}
	m.activateNeighborTab(1)
	if got := m.config.Store.ActivePath(); got != first {
		t.Fatalf("tab should wrap to first document, got %q", got)
	}
	m.activateNeighborTab(-1)
	if got := m.config.Store.ActivePath(); got != second {
		t.Fatalf("shift+tab should cycle back, got %q", got)
	}
}

func TestReloadEventRequestsFreshLoad(t *testing.T) {
	m := newTestModel(t)
	path := openTestDocument(t, m, "scan.pdf")
	tick := m.reloadTick

	cmd := m.handleStoreEvent(workspace.Event{Kind: workspace.EventReload, Path: path})
	if cmd == nil {
		t.Fatal("reload event should start a document load")
	}
	if m.reloadTick != tick+1 {
		t.Fatalf("reload should bump the cache-busting tick, got %d want %d", m.reloadTick, tick+1)
	}
	if !m.loadingDoc {
		t.Fatal("reload should mark the document as loading")
	}
}

func TestDocumentLoadedSuggestsOCR(t *testing.T) {
	m := newTestModel(t)
	openTestDocument(t, m, "scan.pdf")

	m.handleDocumentLoaded(documentLoadedMsg{path: "/case/docs/scan.pdf", text: "x", needsOCR: true})
	if !m.needsOCR {
		t.Fatal("short extraction should flag OCR")
	}
	if !strings.Contains(m.infoMessage, "OCR") {
		t.Fatalf("info message should suggest OCR, got %q", m.infoMessage)
	}
}

func TestCycleHighlightColorFollowsPalette(t *testing.T) {
	m := newTestModel(t)
	openTestDocument(t, m, "motion.pdf")

	if got := m.config.Store.HighlightColor(); got != "yellow" {
		t.Fatalf("unexpected starting color %q", got)
	}
	m.cycleHighlightColor()
	if got := m.config.Store.HighlightColor(); got != "green" {
		t.Fatalf("cycle should move to green, got %q", got)
	}
}

func TestHelpOverlayShowsWorkflow(t *testing.T) {
	m := newTestModel(t)
	openTestDocument(t, m, "motion.pdf")

	view := m.viewReading()
	if strings.Contains(view, "Review Workflow") {
		t.Fatal("workflow guide should be hidden by default")
	}

	m.handleReadingKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	view = m.viewReading()
	if !strings.Contains(view, "Review Workflow") {
		t.Fatal("workflow guide did not appear after toggling help")
	}
}

func TestWorkspaceResetNeedsSecondKeypress(t *testing.T) {
	m := newTestModel(t)
	path := openTestDocument(t, m, "motion.pdf")
	m.config.Store.RecordHighlight(path, workspace.Highlight{Text: "kept until reset"})

	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlR})
	if got := len(m.config.Store.OpenFiles()); got != 1 {
		t.Fatalf("single Ctrl+R should not reset, %d open files left", got)
	}
	if !m.resetArmed {
		t.Fatal("first Ctrl+R should arm the reset")
	}

	// Any other key cancels the armed reset.
	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.resetArmed {
		t.Fatal("unrelated key should disarm the reset")
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlR})
	if got := len(m.config.Store.OpenFiles()); got != 1 {
		t.Fatalf("re-armed Ctrl+R should not reset yet, %d open files left", got)
	}

	m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlR})
	if got := len(m.config.Store.OpenFiles()); got != 0 {
		t.Fatalf("confirmed reset left %d open files", got)
	}
	if m.stage != stageBrowser {
		t.Fatalf("reset should return to the browser, got stage %v", m.stage)
	}
	if len(m.noteDocs) != 0 {
		t.Fatalf("reset left %d cached note documents", len(m.noteDocs))
	}

	// Reopening must start from a blank document, including the note cache.
	m.openFile(path)
	m.applyQueuedInstructions()
	if got := m.config.Store.Highlights(path); len(got) != 0 {
		t.Fatalf("highlights survived reset: %+v", got)
	}
	markdown := m.noteDoc(path).Markdown()
	if strings.Contains(markdown, "kept until reset") {
		t.Fatalf("note outline kept pre-reset content: %q", markdown)
	}
}

func TestInstructionsApplyOnAnyStoreEvent(t *testing.T) {
	m := newTestModel(t)
	path := openTestDocument(t, m, "motion.pdf")

	m.config.Store.EnqueueInstruction(notedoc.Instruction{
		Type:    notedoc.InsertBullet,
		Payload: "late bullet",
		Level:   1,
	})
	// An unrelated notification must still flush the queue.
	m.handleStoreEvent(workspace.Event{Kind: workspace.EventHighlights, Path: path})

	if got := m.config.Store.DrainInstructions(); len(got) != 0 {
		t.Fatalf("queue not flushed by unrelated event: %+v", got)
	}
	if markdown := m.noteDoc(path).Markdown(); !strings.Contains(markdown, "late bullet") {
		t.Fatalf("queued bullet never reached the outline: %q", markdown)
	}
}

func TestZoomKeysStayWithinRange(t *testing.T) {
	m := newTestModel(t)
	openTestDocument(t, m, "motion.pdf")
	store := m.config.Store

	plus := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}}
	for i := 0; i < 50; i++ {
		m.handleReadingKey(plus)
	}
	if z := store.Zoom(); z > maxZoom {
		t.Fatalf("zoom grew past ceiling: %.2f", z)
	}

	minus := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}}
	for i := 0; i < 80; i++ {
		m.handleReadingKey(minus)
	}
	if z := store.Zoom(); z < minZoom {
		t.Fatalf("zoom shrank past floor: %.2f", z)
	}
}

func TestHighlightsSectionSkipsMalformedEntries(t *testing.T) {
	m := newTestModel(t)
	path := openTestDocument(t, m, "motion.pdf")
	store := m.config.Store
	store.RecordHighlight(path, workspace.Highlight{Text: "a good capture"})

	state := store.SnapshotForPersistence()
	fs := state.FileStates[path]
	fs.Highlights = append(fs.Highlights, workspace.Highlight{ID: "", Text: ""})
	state.FileStates[path] = fs
	store.LoadFromPersistedState(&state)
	store.SwitchTo(path)

	visible := m.visibleHighlights()
	if len(visible) != 1 {
		t.Fatalf("malformed entry should be skipped, got %d visible", len(visible))
	}
	if visible[0].Text != "a good capture" {
		t.Fatalf("wrong highlight surfaced: %q", visible[0].Text)
	}
}
