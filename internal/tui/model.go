package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/casefile/notetaker/internal/bridge"
	"github.com/casefile/notetaker/internal/config"
	"github.com/casefile/notetaker/internal/notedoc"
	"github.com/casefile/notetaker/internal/resourceurl"
	"github.com/casefile/notetaker/internal/workspace"
)

// Config wires runtime dependencies into the TUI program.
type Config struct {
	Store    *workspace.Store
	Bridge   *bridge.Bridge
	Settings config.Settings
	Logger   *zap.Logger
	StartDir string
}

// New returns a tea.Model ready to be mounted into a Program.
func New(cfg Config) tea.Model {
	return newModel(cfg)
}

func newModel(cfg Config) *model {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	commentInput := textinput.New()
	commentInput.Placeholder = confirmPlaceholder
	commentInput.CharLimit = 200
	commentInput.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	events := make(chan workspace.Event, 64)
	cfg.Store.Subscribe(func(event workspace.Event) {
		select {
		case events <- event:
		default:
		}
	})

	m := &model{
		config:       cfg,
		stage:        stageBrowser,
		mode:         modeNormal,
		currentDir:   cfg.StartDir,
		commentInput: commentInput,
		spinner:      spin,
		viewport:     vp,
		layout:       newPageLayout(),
		jobs:         newJobBus(cfg.Logger),
		storeEvents:  events,
		noteDocs:     map[string]*notedoc.Document{},
		selectStart:  -1,
		infoMessage:  "Pick a document to start reading.",
	}

	if cfg.StartDir != "" {
		pings, stop, err := cfg.Bridge.Watch(cfg.StartDir)
		if err != nil {
			m.browserErr = fmt.Sprintf("directory watch unavailable: %v", err)
		} else {
			m.dirPings = pings
			m.stopWatch = stop
		}
	}
	return m
}

type model struct {
	config Config
	stage  stage
	mode   interactionMode

	// browser pane
	currentDir string
	entries    []bridge.Entry
	dirCursor  int
	browserErr string
	dirPings   <-chan struct{}
	stopWatch  func()

	// reader pane
	viewport    viewport.Model
	spinner     spinner.Model
	docLines    []string
	loadedPath  string
	sourceURL   string
	reloadTick  int
	cursorLine  int
	selectStart int
	loadingDoc  bool
	needsOCR    bool
	readerErr   string
	readerDirty bool

	// note surface
	noteDocs     map[string]*notedoc.Document
	notesVisible bool
	notesView    string
	notesDirty   bool
	notesErr     string

	commentInput textinput.Model
	pendingSel   workspace.Selection

	layout      pageLayout
	jobs        *jobBus
	storeEvents <-chan workspace.Event

	infoMessage  string
	errorMessage string
	helpVisible  bool
	resetArmed   bool
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForStoreEvent(m.storeEvents),
		waitForOCR(m.config.Bridge),
	}
	if m.currentDir != "" {
		cmds = append(cmds, m.jobs.Start(jobKindList, listDirectoryJob(m.config.Bridge, m.currentDir)))
	}
	if m.dirPings != nil {
		cmds = append(cmds, waitForDirChange(m.dirPings))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.loadingDoc || m.ocrBusy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.stage == stageReading {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.readerDirty = true
		return m, nil

	case jobSignalMsg:
		return m, nil

	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)

	case directoryListedMsg:
		if msg.err != nil {
			m.browserErr = msg.err.Error()
			return m, nil
		}
		m.browserErr = ""
		m.currentDir = msg.dir
		m.entries = msg.entries
		if m.dirCursor >= len(m.entries) {
			m.dirCursor = len(m.entries) - 1
		}
		if m.dirCursor < 0 {
			m.dirCursor = 0
		}
		return m, nil

	case documentLoadedMsg:
		return m.handleDocumentLoaded(msg)

	case exportResultMsg:
		if msg.err != nil {
			m.notesErr = msg.err.Error()
			return m, nil
		}
		m.notesErr = ""
		m.infoMessage = fmt.Sprintf("Notes exported to %s", msg.path)
		return m, nil

	case storeEventMsg:
		cmd := m.handleStoreEvent(msg.event)
		return m, tea.Batch(cmd, waitForStoreEvent(m.storeEvents))

	case ocrCompletedMsg:
		m.config.Store.OCRCompleted(msg.result.Path, msg.result.Err)
		if msg.result.Err != nil {
			m.readerErr = fmt.Sprintf("OCR failed: %v", msg.result.Err)
		} else {
			m.infoMessage = fmt.Sprintf("OCR finished for %s.", filepath.Base(msg.result.Path))
			m.needsOCR = false
		}
		return m, waitForOCR(m.config.Bridge)

	case dirChangedMsg:
		cmds := []tea.Cmd{waitForDirChange(m.dirPings)}
		if m.currentDir != "" {
			cmds = append(cmds, m.jobs.Start(jobKindList, listDirectoryJob(m.config.Bridge, m.currentDir)))
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *model) handleDocumentLoaded(msg documentLoadedMsg) (tea.Model, tea.Cmd) {
	m.loadingDoc = false
	if msg.err != nil {
		m.readerErr = msg.err.Error()
		m.stage = stageReading
		return m, nil
	}
	m.readerErr = ""
	m.loadedPath = msg.path
	m.sourceURL = resourceurl.FromPath(fmt.Sprintf("%s?t=%d", msg.path, m.reloadTick))
	m.docLines = splitDocLines(msg.text)
	m.cursorLine = 0
	m.selectStart = -1
	m.needsOCR = msg.needsOCR
	m.stage = stageReading
	m.mode = modeNormal
	m.readerDirty = true
	if msg.needsOCR {
		m.infoMessage = "Little extractable text. Press r to run OCR."
	} else {
		m.infoMessage = fmt.Sprintf("Loaded %s. Press v to start a selection.", filepath.Base(msg.path))
	}
	return m, nil
}

// handleStoreEvent reacts to store notifications: dirty-marking the regions
// that render the touched slice, loading newly activated documents, and
// applying queued note instructions.
func (m *model) handleStoreEvent(event workspace.Event) tea.Cmd {
	// Drain on every notification, not just the instruction event. The
	// subscription channel sheds under backpressure, so a dropped
	// notification may only cost a repaint, never queued note content.
	m.applyQueuedInstructions()
	switch event.Kind {
	case workspace.EventOpenFiles, workspace.EventToggles, workspace.EventSelection, workspace.EventOCR:
		m.readerDirty = true
	case workspace.EventHighlights:
		m.readerDirty = true
	case workspace.EventNotes:
		m.notesDirty = true
	case workspace.EventActiveDocument:
		m.readerDirty = true
		if event.Path != "" && event.Path != m.loadedPath {
			return m.startDocumentLoad(event.Path)
		}
	case workspace.EventReload:
		m.reloadTick++
		m.loadedPath = ""
		m.infoMessage = fmt.Sprintf("Reloading %s with the searchable text layer.", filepath.Base(event.Path))
		return m.startDocumentLoad(event.Path)
	}
	return nil
}

func (m *model) startDocumentLoad(path string) tea.Cmd {
	m.loadingDoc = true
	return tea.Batch(
		m.jobs.Start(jobKindLoad, loadDocumentJob(m.config.Bridge, path)),
		m.spinner.Tick,
	)
}

// applyQueuedInstructions is the note surface consuming the store's
// instruction queue: drain atomically, apply in order, report the new
// serialized content back.
func (m *model) applyQueuedInstructions() {
	path := m.config.Store.ActivePath()
	if path == "" {
		m.config.Store.DrainInstructions()
		return
	}
	instructions := m.config.Store.DrainInstructions()
	if len(instructions) == 0 {
		return
	}
	doc := m.noteDoc(path)
	for _, ins := range instructions {
		doc.Apply(ins)
	}
	m.config.Store.UpdateNoteContent(path, doc.Serialize())
	m.notesDirty = true
}

func (m *model) noteDoc(path string) *notedoc.Document {
	if doc, ok := m.noteDocs[path]; ok {
		return doc
	}
	doc := notedoc.Parse(m.config.Store.NoteContent(path))
	m.noteDocs[path] = doc
	return doc
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeConfirm {
		return m.handleConfirmKey(key)
	}
	if key.String() == "ctrl+r" {
		return m.handleResetKey()
	}
	m.resetArmed = false
	switch m.stage {
	case stageBrowser:
		return m.handleBrowserKey(key)
	case stageReading:
		return m.handleReadingKey(key)
	}
	return m, nil
}

// handleResetKey drives the workspace wipe. Discarding every tab,
// highlight, and note is the one destructive operation in the app, so the
// first Ctrl+R only arms it and any other key disarms.
func (m *model) handleResetKey() (tea.Model, tea.Cmd) {
	if !m.resetArmed {
		m.resetArmed = true
		m.infoMessage = "Ctrl+R again wipes the whole workspace: tabs, highlights, notes. Any other key cancels."
		return m, nil
	}
	m.resetArmed = false
	m.config.Store.Reset()
	m.noteDocs = map[string]*notedoc.Document{}
	m.loadedPath = ""
	m.docLines = nil
	m.cursorLine = 0
	m.selectStart = -1
	m.needsOCR = false
	m.mode = modeNormal
	m.stage = stageBrowser
	m.readerDirty = true
	m.notesDirty = true
	m.infoMessage = "Workspace reset."
	return m, nil
}

func (m *model) handleBrowserKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.dirCursor > 0 {
			m.dirCursor--
		}
	case "down", "j":
		if m.dirCursor < len(m.entries)-1 {
			m.dirCursor++
		}
	case "enter":
		if m.dirCursor < 0 || m.dirCursor >= len(m.entries) {
			return m, nil
		}
		entry := m.entries[m.dirCursor]
		if entry.IsDir {
			return m, m.jobs.Start(jobKindList, listDirectoryJob(m.config.Bridge, entry.Path))
		}
		return m, m.openFile(entry.Path)
	case "backspace", "h":
		parent := filepath.Dir(m.currentDir)
		if parent != m.currentDir {
			return m, m.jobs.Start(jobKindList, listDirectoryJob(m.config.Bridge, parent))
		}
	case "r":
		if m.currentDir != "" {
			return m, m.jobs.Start(jobKindList, listDirectoryJob(m.config.Bridge, m.currentDir))
		}
	case "tab":
		if m.loadedPath != "" || m.config.Store.ActivePath() != "" {
			m.stage = stageReading
			m.readerDirty = true
		}
	case "?":
		m.helpVisible = !m.helpVisible
	case "esc", "q":
		return m, tea.Quit
	}
	return m, nil
}

// openFile registers the document with the store and, for a first visit,
// seeds the note outline with the title and document-name instructions.
func (m *model) openFile(path string) tea.Cmd {
	name := filepath.Base(path)
	store := m.config.Store
	store.OpenDocument(path, name)

	doc := m.noteDoc(path)
	if store.NoteContent(path) == "" && doc.IsEmpty() {
		store.EnqueueInstruction(notedoc.Instruction{Type: notedoc.InsertTitle, Payload: name})
		store.EnqueueInstruction(notedoc.Instruction{Type: notedoc.InsertPDFName, Payload: name})
	}
	return nil
}

func (m *model) handleReadingKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	store := m.config.Store
	switch key.String() {
	case "esc":
		if m.helpVisible {
			m.helpVisible = false
			return m, nil
		}
		if m.mode == modeSelect {
			m.mode = modeNormal
			m.selectStart = -1
			m.readerDirty = true
			m.infoMessage = "Selection canceled."
			return m, nil
		}
		m.stage = stageBrowser
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.viewport.Height)
	case "pgdown":
		m.moveCursor(m.viewport.Height)
	case "v":
		if m.mode == modeNormal && len(m.docLines) > 0 {
			m.mode = modeSelect
			m.selectStart = m.cursorLine
			m.readerDirty = true
			m.infoMessage = "Extend the selection with j/k, Enter to capture."
		}
	case "enter":
		if m.mode == modeSelect {
			return m.captureSelection()
		}
	case "tab":
		m.activateNeighborTab(1)
	case "shift+tab":
		m.activateNeighborTab(-1)
	case "x":
		if active := store.ActivePath(); active != "" {
			store.CloseDocument(active)
			if store.ActivePath() == "" {
				m.stage = stageBrowser
				m.loadedPath = ""
			}
		}
	case "a":
		store.SetAutoNote(!store.AutoNote())
		if store.AutoNote() {
			m.infoMessage = "Auto-note on: selections are recorded immediately."
		} else {
			m.infoMessage = "Auto-note off: selections wait for confirmation."
		}
	case "1", "2", "3":
		level := int(key.String()[0] - '0')
		store.SetNestingLevel(level)
		m.infoMessage = fmt.Sprintf("New bullets nest at level %d.", level)
	case "c":
		m.cycleHighlightColor()
	case "+", "=":
		store.SetZoom(clampZoom(store.Zoom() + 0.1))
	case "-":
		store.SetZoom(clampZoom(store.Zoom() - 0.1))
	case "y":
		m.copyLatestHighlight()
	case "n":
		m.notesVisible = !m.notesVisible
		m.notesDirty = true
	case "e":
		return m, m.exportNotes()
	case "r":
		return m, m.runOCR()
	case "b":
		m.stage = stageBrowser
	case "?":
		m.helpVisible = !m.helpVisible
	}
	return m, nil
}

// captureSelection turns the marked line range into a pending selection.
// With auto-note on the store records it straight away; otherwise the
// confirm bar opens so the user can attach a comment or dismiss.
func (m *model) captureSelection() (tea.Model, tea.Cmd) {
	text := m.selectedText()
	m.mode = modeNormal
	m.selectStart = -1
	m.readerDirty = true

	if strings.TrimSpace(text) == "" {
		m.infoMessage = "Nothing selected."
		return m, nil
	}

	sel := workspace.Selection{Text: text}
	if m.config.Store.AutoNote() {
		m.config.Store.BeginSelection(sel)
		m.infoMessage = "Highlight captured."
		return m, nil
	}

	m.pendingSel = sel
	m.config.Store.BeginSelection(sel)
	m.mode = modeConfirm
	m.commentInput.SetValue("")
	m.commentInput.Focus()
	return m, textinput.Blink
}

func (m *model) handleConfirmKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		comment := strings.TrimSpace(m.commentInput.Value())
		if comment != "" {
			// Re-begin with the comment attached; replacing a pending
			// selection is a legal transition of the selection machine.
			sel := m.pendingSel
			sel.Comment = comment
			m.config.Store.BeginSelection(sel)
		}
		if _, ok := m.config.Store.ConfirmSelection(); ok {
			m.infoMessage = "Highlight recorded."
		}
		m.mode = modeNormal
		m.commentInput.Blur()
		m.readerDirty = true
		return m, nil
	case tea.KeyEsc:
		m.config.Store.DismissSelection()
		m.mode = modeNormal
		m.commentInput.Blur()
		m.readerDirty = true
		m.infoMessage = "Selection dismissed."
		return m, nil
	}
	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(key)
	return m, cmd
}

func (m *model) activateNeighborTab(delta int) {
	store := m.config.Store
	open := store.OpenFiles()
	if len(open) < 2 {
		return
	}
	active := store.ActivePath()
	idx := 0
	for i, f := range open {
		if f.Path == active {
			idx = i
			break
		}
	}
	next := (idx + delta + len(open)) % len(open)
	store.SwitchTo(open[next].Path)
}

func (m *model) cycleHighlightColor() {
	colors := m.config.Settings.Notes.Colors
	if len(colors) == 0 {
		colors = config.DefaultColors
	}
	current := m.config.Store.HighlightColor()
	next := colors[0]
	for i, color := range colors {
		if color == current {
			next = colors[(i+1)%len(colors)]
			break
		}
	}
	m.config.Store.SetHighlightColor(next)
	m.infoMessage = fmt.Sprintf("New highlights paint %s.", next)
}

func (m *model) copyLatestHighlight() {
	active := m.config.Store.ActivePath()
	highlights := m.config.Store.Highlights(active)
	if len(highlights) == 0 {
		m.infoMessage = "No highlights to copy yet."
		return
	}
	latest := highlights[0]
	text := latest.Text
	if text == "" {
		text = latest.ImageData
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.readerErr = fmt.Sprintf("clipboard unavailable: %v", err)
		return
	}
	m.infoMessage = "Latest highlight copied."
}

func (m *model) exportNotes() tea.Cmd {
	active := m.config.Store.ActivePath()
	if active == "" {
		return nil
	}
	content := m.noteDoc(active).Markdown()
	return m.jobs.Start(jobKindExport, exportMarkdownJob(m.config.Bridge, active, content))
}

func (m *model) runOCR() tea.Cmd {
	store := m.config.Store
	active := store.ActivePath()
	if active == "" || store.OCRRunning(active) {
		return nil
	}
	store.MarkOCRStarted(active)
	if err := m.config.Bridge.RunOCR(context.Background(), active); err != nil {
		// reset the running flag; the request never started
		store.OCRCompleted(active, err)
		m.readerErr = err.Error()
		return nil
	}
	m.infoMessage = "OCR running in the background."
	return m.spinner.Tick
}

func clampZoom(zoom float64) float64 {
	if zoom < minZoom {
		return minZoom
	}
	if zoom > maxZoom {
		return maxZoom
	}
	return zoom
}

func (m *model) moveCursor(delta int) {
	if len(m.docLines) == 0 {
		return
	}
	m.cursorLine += delta
	if m.cursorLine < 0 {
		m.cursorLine = 0
	}
	if m.cursorLine >= len(m.docLines) {
		m.cursorLine = len(m.docLines) - 1
	}
	m.readerDirty = true
	m.ensureCursorVisible()
}

func (m *model) ensureCursorVisible() {
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	if m.cursorLine < top {
		m.viewport.SetYOffset(m.cursorLine)
	} else if m.cursorLine > bottom {
		m.viewport.SetYOffset(m.cursorLine - m.viewport.Height + 1)
	}
}

func (m *model) selectedText() string {
	if m.selectStart < 0 || len(m.docLines) == 0 {
		return ""
	}
	start, end := m.selectStart, m.cursorLine
	if start > end {
		start, end = end, start
	}
	if end >= len(m.docLines) {
		end = len(m.docLines) - 1
	}
	return strings.TrimSpace(strings.Join(m.docLines[start:end+1], " "))
}

func (m *model) selectionRange() (int, int, bool) {
	if m.mode != modeSelect || m.selectStart < 0 {
		return 0, 0, false
	}
	start, end := m.selectStart, m.cursorLine
	if start > end {
		start, end = end, start
	}
	return start, end, true
}

func (m *model) ocrBusy() bool {
	return m.config.Store.OCRRunning(m.config.Store.ActivePath())
}

func splitDocLines(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
