package statefile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/casefile/notetaker/internal/workspace"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "workspace.json")
	gateway := New(path, nil)

	state := workspace.State{
		OpenFiles: []workspace.OpenFile{
			{Path: "/cases/a.pdf", Name: "a.pdf"},
			{Path: "/cases/b.pdf", Name: "b.pdf"},
		},
		FileStates: map[string]workspace.FileState{
			"/cases/a.pdf": {
				Highlights: []workspace.Highlight{
					{ID: "h1", Text: "quoted", Color: "yellow", Page: 2},
				},
				NotesContent: `{"type":"doc"}`,
			},
			"/cases/b.pdf": {Highlights: []workspace.Highlight{}},
		},
		CurrentFilePath: "/cases/a.pdf",
	}

	if err := gateway.Save(state); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := gateway.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil {
		t.Fatalf("Load() returned nil for saved state")
	}
	if !reflect.DeepEqual(*loaded, state) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", *loaded, state)
	}
}

func TestLoadMissingFileIsNoPriorState(t *testing.T) {
	t.Parallel()

	gateway := New(filepath.Join(t.TempDir(), "none.json"), nil)
	state, err := gateway.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if state != nil {
		t.Fatalf("expected nil state for missing file, got %+v", state)
	}
}

func TestLoadCorruptFileIsNoPriorState(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "workspace.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	gateway := New(path, nil)
	state, err := gateway.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if state != nil {
		t.Fatalf("expected nil state for corrupt file, got %+v", state)
	}
}

func TestLoadToleratesUnknownAndMissingFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "workspace.json")
	legacy := `{"openFiles":[{"path":"/a.pdf","name":"a.pdf","futureField":1}],"someNewTopLevel":{}}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	gateway := New(path, nil)
	state, err := gateway.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if state == nil {
		t.Fatalf("legacy file rejected")
	}
	if len(state.OpenFiles) != 1 || state.OpenFiles[0].Path != "/a.pdf" {
		t.Fatalf("open files = %+v", state.OpenFiles)
	}
	if state.FileStates == nil {
		t.Fatalf("missing fileStates should default to empty map")
	}
	if state.CurrentFilePath != "" {
		t.Fatalf("missing currentFilePath should default to empty")
	}
}

func TestSaveReplacesWholesale(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "workspace.json")
	gateway := New(path, nil)

	first := workspace.State{
		OpenFiles:  []workspace.OpenFile{{Path: "/a.pdf", Name: "a.pdf"}},
		FileStates: map[string]workspace.FileState{"/a.pdf": {}},
	}
	if err := gateway.Save(first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := workspace.State{
		OpenFiles:  []workspace.OpenFile{{Path: "/b.pdf", Name: "b.pdf"}},
		FileStates: map[string]workspace.FileState{"/b.pdf": {}},
	}
	if err := gateway.Save(second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := gateway.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.OpenFiles) != 1 || loaded.OpenFiles[0].Path != "/b.pdf" {
		t.Fatalf("expected wholesale replacement, got %+v", loaded.OpenFiles)
	}
}
