package workspace

// EventKind names the slice of store state a mutation touched. Components
// subscribe and react only to the slices they render.
type EventKind int

const (
	// EventOpenFiles fires when the visible tab list changes.
	EventOpenFiles EventKind = iota
	// EventActiveDocument fires when the active path changes.
	EventActiveDocument
	// EventHighlights fires when a document's highlight set changes.
	EventHighlights
	// EventNotes fires when a document's note content is replaced.
	EventNotes
	// EventToggles fires when auto-note, nesting, color, or zoom change.
	EventToggles
	// EventInstructions fires when a note-editing instruction is queued.
	EventInstructions
	// EventSelection fires when the pending selection changes.
	EventSelection
	// EventOCR fires when a document's OCR running flag changes.
	EventOCR
	// EventReload asks the reader to reload the document at Path, treating
	// it as freshly opened.
	EventReload
)

// Event is delivered synchronously to subscribers on every mutation. Path is
// set for document-scoped events.
type Event struct {
	Kind EventKind
	Path string
}
