// Package config loads NoteTaker settings from a TOML file, falling back to
// sensible defaults when the file is absent.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultDebounceMillis = 1000
	defaultNestingLevel   = 1
	defaultHighlightColor = "yellow"
	defaultOCRCommand     = "ocrmypdf"
)

// DefaultColors is the highlight palette cycled by the color toggle.
var DefaultColors = []string{"yellow", "green", "blue", "pink", "orange"}

type Settings struct {
	Workspace WorkspaceConfig `toml:"workspace"`
	Notes     NotesConfig     `toml:"notes"`
	Save      SaveConfig      `toml:"save"`
	OCR       OCRConfig       `toml:"ocr"`
	Logging   LoggingConfig   `toml:"logging"`
}

type WorkspaceConfig struct {
	Directory string `toml:"directory"`
	StatePath string `toml:"state_path"`
}

type NotesConfig struct {
	AutoNote       bool     `toml:"auto_note"`
	NestingLevel   int      `toml:"nesting_level"`
	HighlightColor string   `toml:"highlight_color"`
	Colors         []string `toml:"colors"`
}

type SaveConfig struct {
	DebounceMillis int `toml:"debounce_millis"`
}

type OCRConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

type LoggingConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// Default returns the settings used when no config file exists. Paths are
// rooted under the per-user config directory.
func Default() Settings {
	base := defaultConfigDir()
	return Settings{
		Workspace: WorkspaceConfig{
			StatePath: filepath.Join(base, "workspace.json"),
		},
		Notes: NotesConfig{
			AutoNote:       false,
			NestingLevel:   defaultNestingLevel,
			HighlightColor: defaultHighlightColor,
			Colors:         append([]string(nil), DefaultColors...),
		},
		Save: SaveConfig{DebounceMillis: defaultDebounceMillis},
		OCR:  OCRConfig{Command: defaultOCRCommand},
		Logging: LoggingConfig{
			Path:  filepath.Join(base, "notetaker.log"),
			Level: "info",
		},
	}
}

// Load reads settings from path. A missing file yields defaults; a malformed
// file is an error so a typo never silently reverts the user's setup.
func Load(path string) (Settings, error) {
	settings := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("config: parse %s: %w", path, err)
	}
	settings.normalize()
	return settings, nil
}

// DefaultPath is where Load looks when no -config flag is given.
func DefaultPath() string {
	return filepath.Join(defaultConfigDir(), "config.toml")
}

func (s *Settings) normalize() {
	if s.Notes.NestingLevel < 1 || s.Notes.NestingLevel > 3 {
		s.Notes.NestingLevel = defaultNestingLevel
	}
	if s.Notes.HighlightColor == "" {
		s.Notes.HighlightColor = defaultHighlightColor
	}
	if len(s.Notes.Colors) == 0 {
		s.Notes.Colors = append([]string(nil), DefaultColors...)
	}
	if s.Save.DebounceMillis <= 0 {
		s.Save.DebounceMillis = defaultDebounceMillis
	}
	if s.OCR.Command == "" {
		s.OCR.Command = defaultOCRCommand
	}
}

// SaveDebounce converts the configured debounce to a duration.
func (s Settings) SaveDebounce() time.Duration {
	return time.Duration(s.Save.DebounceMillis) * time.Millisecond
}

func defaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "notetaker")
}
