// Package statefile is the persistence gateway: one JSON blob per user
// profile holding the entire workspace, replaced wholesale on every save.
package statefile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/casefile/notetaker/internal/workspace"
)

// Gateway reads and writes the workspace state file.
type Gateway struct {
	path string
	mu   sync.Mutex
	log  *zap.Logger
}

// New returns a gateway persisting to path.
func New(path string, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{path: path, log: log}
}

// Load reads the persisted workspace. A missing or unparsable file is
// treated as no prior state, never as a fatal condition: the app proceeds
// with an empty workspace and stays able to save.
func (g *Gateway) Load() (*workspace.State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := os.ReadFile(g.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var state workspace.State
	if err := json.Unmarshal(data, &state); err != nil {
		g.log.Warn("state file unparsable, starting empty",
			zap.String("path", g.path), zap.Error(err))
		return nil, nil
	}
	if state.FileStates == nil {
		state.FileStates = map[string]workspace.FileState{}
	}
	return &state, nil
}

// Save writes the snapshot atomically (temp file + rename) so a crash
// mid-write never leaves a truncated state file behind.
func (g *Gateway) Save(state workspace.State) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	file, err := os.CreateTemp(dir, ".workspace-*.json")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(file.Name())
	}()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(file.Name(), g.path)
}
