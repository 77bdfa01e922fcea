// Package workspace holds the authoritative in-memory state of the reading
// session: open documents, their highlights and note content, UI toggles,
// and the persistence contract that snapshots all of it to disk.
package workspace

import "time"

// Rect is page-relative geometry for an area capture.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Highlight is one captured selection from a document. Color is stamped at
// creation from the global highlight-color setting and never updated
// retroactively.
type Highlight struct {
	ID        string    `json:"id"`
	Text      string    `json:"text,omitempty"`
	ImageData string    `json:"imageData,omitempty"`
	Page      int       `json:"page,omitempty"`
	Rect      *Rect     `json:"rect,omitempty"`
	Color     string    `json:"color,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// IsImage reports whether the highlight captured an area rather than text.
func (h Highlight) IsImage() bool {
	return h.ImageData != ""
}

// OpenFile is one entry in the visible tab list. Order is user-meaningful.
type OpenFile struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// FileState is the retained per-document data. Closing a tab does not drop
// it; the document stays retrievable when reopened by path.
type FileState struct {
	Highlights   []Highlight `json:"highlights"`
	NotesContent string      `json:"notesContent"`
}

// State is the persisted unit: the whole workspace, replaced wholesale on
// every save. Missing fields decode to their zero values so older state
// files keep loading.
type State struct {
	OpenFiles       []OpenFile           `json:"openFiles"`
	FileStates      map[string]FileState `json:"fileStates"`
	CurrentFilePath string               `json:"currentFilePath"`
}

// Clone returns a deep copy sharing no mutable references with the receiver.
func (s State) Clone() State {
	out := State{
		OpenFiles:       append([]OpenFile(nil), s.OpenFiles...),
		FileStates:      make(map[string]FileState, len(s.FileStates)),
		CurrentFilePath: s.CurrentFilePath,
	}
	for path, fs := range s.FileStates {
		out.FileStates[path] = fs.clone()
	}
	return out
}

func (fs FileState) clone() FileState {
	highlights := make([]Highlight, len(fs.Highlights))
	for i, h := range fs.Highlights {
		if h.Rect != nil {
			rect := *h.Rect
			h.Rect = &rect
		}
		highlights[i] = h
	}
	return FileState{Highlights: highlights, NotesContent: fs.NotesContent}
}

// Gateway persists the workspace as a single blob.
type Gateway interface {
	Load() (*State, error)
	Save(State) error
}
