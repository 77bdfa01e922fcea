package workspace

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/casefile/notetaker/internal/notedoc"
)

const (
	defaultSaveDelay    = time.Second
	defaultZoomDelay    = 300 * time.Millisecond
	defaultNestingLevel = 1
	defaultColor        = "yellow"
	defaultZoom         = 1.0
)

// Selection is a reported text or area selection awaiting a decision.
type Selection struct {
	Text      string
	ImageData string
	Page      int
	Rect      *Rect
	Comment   string
}

func (sel Selection) empty() bool {
	return strings.TrimSpace(sel.Text) == "" && sel.ImageData == ""
}

// Options configures a Store. Zero values fall back to production defaults;
// tests inject manual schedulers and an in-memory gateway.
type Options struct {
	Gateway        Gateway
	SaveScheduler  Scheduler
	ZoomScheduler  Scheduler
	SaveDelay      time.Duration
	ZoomDelay      time.Duration
	Logger         *zap.Logger
	AutoNote       bool
	NestingLevel   int
	HighlightColor string
}

// Store is the single source of truth for the reading session. Every read
// and write of documents, highlights, and toggles passes through it; other
// components observe derived views or send it instructions, never mutating
// document state directly.
type Store struct {
	mu        sync.Mutex
	gateway   Gateway
	saveSched Scheduler
	zoomSched Scheduler
	saveDelay time.Duration
	zoomDelay time.Duration
	log       *zap.Logger

	openFiles   []OpenFile
	fileStates  map[string]*FileState
	currentPath string
	loaded      bool

	autoNote       bool
	nestingLevel   int
	highlightColor string
	zoom           float64
	debouncedZoom  float64

	pending    *Selection
	queue      []notedoc.Instruction
	ocrRunning map[string]bool

	subs    map[int]func(Event)
	nextSub int
}

// NewStore builds a Store around the given persistence gateway.
func NewStore(opts Options) *Store {
	s := &Store{
		gateway:        opts.Gateway,
		saveSched:      opts.SaveScheduler,
		zoomSched:      opts.ZoomScheduler,
		saveDelay:      opts.SaveDelay,
		zoomDelay:      opts.ZoomDelay,
		log:            opts.Logger,
		fileStates:     map[string]*FileState{},
		autoNote:       opts.AutoNote,
		nestingLevel:   clampNesting(opts.NestingLevel),
		highlightColor: opts.HighlightColor,
		zoom:           defaultZoom,
		debouncedZoom:  defaultZoom,
		ocrRunning:     map[string]bool{},
		subs:           map[int]func(Event){},
	}
	if s.saveSched == nil {
		s.saveSched = NewTimerScheduler()
	}
	if s.zoomSched == nil {
		s.zoomSched = NewTimerScheduler()
	}
	if s.saveDelay <= 0 {
		s.saveDelay = defaultSaveDelay
	}
	if s.zoomDelay <= 0 {
		s.zoomDelay = defaultZoomDelay
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.highlightColor == "" {
		s.highlightColor = defaultColor
	}
	return s
}

// Subscribe registers a synchronous observer. The returned function removes
// the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// OpenDocument registers path and makes it the active document. Reopening an
// already-open path only switches to it; any retained highlights and note
// content come back untouched.
func (s *Store) OpenDocument(path, displayName string) {
	if path == "" {
		return
	}
	s.mu.Lock()
	events := make([]Event, 0, 3)
	if _, ok := s.fileStates[path]; !ok {
		s.fileStates[path] = &FileState{Highlights: []Highlight{}}
	}
	if !s.isOpenLocked(path) {
		s.openFiles = append(s.openFiles, OpenFile{Path: path, Name: displayName})
		events = append(events, Event{Kind: EventOpenFiles})
	}
	events = append(events, s.switchLocked(path)...)
	s.mu.Unlock()

	s.notify(events)
	s.scheduleSave()
}

// SwitchTo activates an open document. An unknown path is a silent no-op.
// The document's stored highlight set becomes the visible one; nothing is
// cleared by switching.
func (s *Store) SwitchTo(path string) {
	s.mu.Lock()
	if !s.isOpenLocked(path) {
		s.mu.Unlock()
		return
	}
	events := s.switchLocked(path)
	s.mu.Unlock()

	if len(events) == 0 {
		return
	}
	s.notify(events)
	s.scheduleSave()
}

func (s *Store) switchLocked(path string) []Event {
	if s.currentPath == path {
		return nil
	}
	s.currentPath = path
	return []Event{
		{Kind: EventActiveDocument, Path: path},
		{Kind: EventHighlights, Path: path},
	}
}

// CloseDocument removes path from the visible tab list only. The document's
// highlights and note content stay cached for a cheap reopen.
func (s *Store) CloseDocument(path string) {
	s.mu.Lock()
	idx := -1
	for i, f := range s.openFiles {
		if f.Path == path {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.openFiles = append(s.openFiles[:idx], s.openFiles[idx+1:]...)
	events := []Event{{Kind: EventOpenFiles}}
	if s.currentPath == path {
		next := ""
		if len(s.openFiles) > 0 {
			at := idx
			if at >= len(s.openFiles) {
				at = len(s.openFiles) - 1
			}
			next = s.openFiles[at].Path
		}
		s.currentPath = next
		events = append(events,
			Event{Kind: EventActiveDocument, Path: next},
			Event{Kind: EventHighlights, Path: next},
		)
	}
	s.mu.Unlock()

	s.notify(events)
	s.scheduleSave()
}

// Reset discards the whole workspace: the open tab list, every cached
// document's highlights and notes, and anything pending. Closing tabs never
// shrinks persisted state; this is the one operation that does.
func (s *Store) Reset() {
	s.mu.Lock()
	s.openFiles = nil
	s.fileStates = map[string]*FileState{}
	s.currentPath = ""
	s.pending = nil
	s.queue = nil
	s.ocrRunning = map[string]bool{}
	s.mu.Unlock()

	s.notify([]Event{
		{Kind: EventOpenFiles},
		{Kind: EventActiveDocument},
		{Kind: EventHighlights},
		{Kind: EventNotes},
	})
	s.scheduleSave()
}

// RecordHighlight stamps the highlight with the current global color,
// prepends it to the document's highlight list (most-recent-first), and
// queues the matching note-insertion instruction carrying the highlight id
// as a back-reference. Empty selections record nothing.
func (s *Store) RecordHighlight(path string, h Highlight) (Highlight, bool) {
	if path == "" {
		return Highlight{}, false
	}
	if strings.TrimSpace(h.Text) == "" && h.ImageData == "" {
		return Highlight{}, false
	}

	s.mu.Lock()
	if h.ID == "" {
		h.ID = newID()
	}
	h.Color = s.highlightColor
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	fs, ok := s.fileStates[path]
	if !ok {
		fs = &FileState{}
		s.fileStates[path] = fs
	}
	fs.Highlights = append([]Highlight{h}, fs.Highlights...)

	ins := notedoc.Instruction{
		Type:        notedoc.InsertBullet,
		Payload:     strings.TrimSpace(h.Text),
		HighlightID: h.ID,
		Level:       s.nestingLevel,
	}
	if h.IsImage() {
		ins.Type = notedoc.InsertImage
		ins.Payload = h.ImageData
	}
	s.queue = append(s.queue, ins)
	s.mu.Unlock()

	s.notify([]Event{
		{Kind: EventHighlights, Path: path},
		{Kind: EventInstructions, Path: path},
	})
	s.scheduleSave()
	return h, true
}

// BeginSelection moves the selection machine to SelectionPending, replacing
// any earlier pending selection. With auto-note on the selection is recorded
// immediately against the active document, no confirmation required.
func (s *Store) BeginSelection(sel Selection) {
	if sel.empty() {
		return
	}
	s.mu.Lock()
	auto := s.autoNote
	path := s.currentPath
	if auto {
		s.pending = nil
	} else {
		pending := sel
		s.pending = &pending
	}
	s.mu.Unlock()

	if auto {
		s.RecordHighlight(path, highlightFromSelection(sel))
		return
	}
	s.notify([]Event{{Kind: EventSelection, Path: path}})
}

// ConfirmSelection records the pending selection against the active
// document. Without a pending selection it does nothing.
func (s *Store) ConfirmSelection() (Highlight, bool) {
	s.mu.Lock()
	pending := s.pending
	path := s.currentPath
	s.pending = nil
	s.mu.Unlock()

	if pending == nil {
		return Highlight{}, false
	}
	s.notify([]Event{{Kind: EventSelection, Path: path}})
	return s.RecordHighlight(path, highlightFromSelection(*pending))
}

// DismissSelection abandons the pending selection without recording it.
func (s *Store) DismissSelection() {
	s.mu.Lock()
	had := s.pending != nil
	path := s.currentPath
	s.pending = nil
	s.mu.Unlock()
	if had {
		s.notify([]Event{{Kind: EventSelection, Path: path}})
	}
}

// PendingSelection returns the selection awaiting a decision, if any.
func (s *Store) PendingSelection() (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Selection{}, false
	}
	return *s.pending, true
}

func highlightFromSelection(sel Selection) Highlight {
	return Highlight{
		Text:      sel.Text,
		ImageData: sel.ImageData,
		Page:      sel.Page,
		Rect:      sel.Rect,
		Comment:   sel.Comment,
	}
}

// UpdateNoteContent replaces the stored note content for path verbatim.
// Called on every edit event from the note surface; last write wins.
func (s *Store) UpdateNoteContent(path, serialized string) {
	if path == "" {
		return
	}
	s.mu.Lock()
	fs, ok := s.fileStates[path]
	if !ok {
		fs = &FileState{}
		s.fileStates[path] = fs
	}
	fs.NotesContent = serialized
	s.mu.Unlock()

	s.notify([]Event{{Kind: EventNotes, Path: path}})
	s.scheduleSave()
}

// EnqueueInstruction appends a note-editing instruction for the note surface
// to apply.
func (s *Store) EnqueueInstruction(ins notedoc.Instruction) {
	s.mu.Lock()
	s.queue = append(s.queue, ins)
	path := s.currentPath
	s.mu.Unlock()
	s.notify([]Event{{Kind: EventInstructions, Path: path}})
}

// DrainInstructions empties the outgoing queue atomically and returns the
// instructions in enqueue order. Nothing is applied twice, nothing skipped.
func (s *Store) DrainInstructions() []notedoc.Instruction {
	s.mu.Lock()
	defer s.mu.Unlock()
	drained := s.queue
	s.queue = nil
	return drained
}

// SetAutoNote toggles automatic recording of selections. It affects
// subsequent selections only.
func (s *Store) SetAutoNote(on bool) {
	s.mu.Lock()
	s.autoNote = on
	s.mu.Unlock()
	s.notify([]Event{{Kind: EventToggles}})
}

// SetNestingLevel sets the indentation depth (1-3) for newly inserted note
// bullets. Existing note content is never touched.
func (s *Store) SetNestingLevel(level int) {
	s.mu.Lock()
	s.nestingLevel = clampNesting(level)
	s.mu.Unlock()
	s.notify([]Event{{Kind: EventToggles}})
}

// SetHighlightColor changes the paint color for new highlights only.
func (s *Store) SetHighlightColor(color string) {
	if color == "" {
		return
	}
	s.mu.Lock()
	s.highlightColor = color
	s.mu.Unlock()
	s.notify([]Event{{Kind: EventToggles}})
}

// SetZoom updates the zoom immediately and arms the settle timer that feeds
// the debounced zoom, so the reader re-renders once per gesture instead of
// on every tick.
func (s *Store) SetZoom(zoom float64) {
	if zoom <= 0 {
		return
	}
	s.mu.Lock()
	s.zoom = zoom
	delay := s.zoomDelay
	s.mu.Unlock()

	s.notify([]Event{{Kind: EventToggles}})
	s.zoomSched.Arm(delay, func() {
		s.mu.Lock()
		s.debouncedZoom = s.zoom
		s.mu.Unlock()
		s.notify([]Event{{Kind: EventToggles}})
	})
}

func (s *Store) AutoNote() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoNote
}

func (s *Store) NestingLevel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nestingLevel
}

func (s *Store) HighlightColor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlightColor
}

func (s *Store) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

func (s *Store) DebouncedZoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debouncedZoom
}

// OpenFiles returns a copy of the visible tab list in insertion order.
func (s *Store) OpenFiles() []OpenFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]OpenFile(nil), s.openFiles...)
}

// ActivePath returns the path of the active document, or "".
func (s *Store) ActivePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPath
}

// Highlights returns a copy of a document's highlight list,
// most-recent-first.
func (s *Store) Highlights(path string) []Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	fs, ok := s.fileStates[path]
	if !ok {
		return nil
	}
	return append([]Highlight(nil), fs.Highlights...)
}

// NoteContent returns the stored serialized note content for path.
func (s *Store) NoteContent(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	fs, ok := s.fileStates[path]
	if !ok {
		return ""
	}
	return fs.NotesContent
}

// LoadFromPersistedState hydrates the store once at startup. A nil state
// (first run or corrupted file) initializes empty; either way the store is
// marked loaded so saving is never blocked.
func (s *Store) LoadFromPersistedState(state *State) {
	s.mu.Lock()
	s.loaded = true
	if state != nil {
		restored := state.Clone()
		s.openFiles = restored.OpenFiles
		s.fileStates = make(map[string]*FileState, len(restored.FileStates))
		for path, fs := range restored.FileStates {
			copied := fs
			s.fileStates[path] = &copied
		}
		if _, ok := s.fileStates[restored.CurrentFilePath]; ok {
			s.currentPath = restored.CurrentFilePath
		} else {
			s.currentPath = ""
		}
	}
	path := s.currentPath
	s.mu.Unlock()

	s.notify([]Event{
		{Kind: EventOpenFiles},
		{Kind: EventActiveDocument, Path: path},
		{Kind: EventHighlights, Path: path},
	})
}

// SnapshotForPersistence returns a value snapshot of the workspace,
// unaffected by any mutation that happens after it is taken.
func (s *Store) SnapshotForPersistence() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	state := State{
		OpenFiles:       append([]OpenFile(nil), s.openFiles...),
		FileStates:      make(map[string]FileState, len(s.fileStates)),
		CurrentFilePath: s.currentPath,
	}
	for path, fs := range s.fileStates {
		state.FileStates[path] = fs.clone()
	}
	return state
}

// MarkOCRStarted records an in-flight OCR request for path. Completion is
// correlated back by path, not by which document was active at request time.
func (s *Store) MarkOCRStarted(path string) {
	s.mu.Lock()
	s.ocrRunning[path] = true
	s.mu.Unlock()
	s.notify([]Event{{Kind: EventOCR, Path: path}})
}

// OCRRunning reports whether an OCR request for path is still in flight.
func (s *Store) OCRRunning(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ocrRunning[path]
}

// OCRCompleted handles the out-of-band completion notification. When the
// finished path is active right now, a reload event replaces the stale
// render with the text-searchable version; otherwise nothing visible changes
// until the document is next opened.
func (s *Store) OCRCompleted(path string, err error) {
	s.mu.Lock()
	delete(s.ocrRunning, path)
	active := s.currentPath == path
	s.mu.Unlock()

	events := []Event{{Kind: EventOCR, Path: path}}
	if err != nil {
		s.log.Warn("ocr failed", zap.String("path", path), zap.Error(err))
	} else if active {
		events = append(events, Event{Kind: EventReload, Path: path})
	}
	s.notify(events)
}

// Flush stops the debounce timers and writes the current state synchronously.
// Called on teardown.
func (s *Store) Flush() {
	s.saveSched.Stop()
	s.zoomSched.Stop()
	s.persistNow()
}

func (s *Store) scheduleSave() {
	s.saveSched.Arm(s.saveDelay, s.persistNow)
}

// persistNow writes a snapshot through the gateway. Failures are logged and
// left for the next debounce window; in-memory state is never touched.
func (s *Store) persistNow() {
	s.mu.Lock()
	if !s.loaded || s.gateway == nil {
		s.mu.Unlock()
		return
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.gateway.Save(snapshot); err != nil {
		s.log.Warn("workspace save failed", zap.Error(err))
	}
}

func (s *Store) notify(events []Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, event := range events {
		for _, fn := range fns {
			fn(event)
		}
	}
}

func (s *Store) isOpenLocked(path string) bool {
	for _, f := range s.openFiles {
		if f.Path == path {
			return true
		}
	}
	return false
}

func clampNesting(level int) int {
	if level < 1 {
		return defaultNestingLevel
	}
	if level > 3 {
		return 3
	}
	return level
}

func newID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))[:16]
	}
	return hex.EncodeToString(buf)
}
