package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	settings, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.Notes.NestingLevel != 1 {
		t.Fatalf("default nesting level = %d, want 1", settings.Notes.NestingLevel)
	}
	if settings.Notes.HighlightColor != "yellow" {
		t.Fatalf("default color = %q, want yellow", settings.Notes.HighlightColor)
	}
	if settings.SaveDebounce() != time.Second {
		t.Fatalf("default debounce = %s, want 1s", settings.SaveDebounce())
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[workspace]
directory = "/cases/smith"

[notes]
auto_note = true
nesting_level = 2
highlight_color = "green"

[save]
debounce_millis = 250

[ocr]
command = "tesseract"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !settings.Notes.AutoNote {
		t.Fatalf("expected auto_note enabled")
	}
	if settings.Notes.NestingLevel != 2 {
		t.Fatalf("nesting level = %d, want 2", settings.Notes.NestingLevel)
	}
	if settings.Workspace.Directory != "/cases/smith" {
		t.Fatalf("directory = %q", settings.Workspace.Directory)
	}
	if settings.SaveDebounce() != 250*time.Millisecond {
		t.Fatalf("debounce = %s, want 250ms", settings.SaveDebounce())
	}
	if settings.OCR.Command != "tesseract" {
		t.Fatalf("ocr command = %q", settings.OCR.Command)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[workspace\ndirectory="), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNormalizeClampsOutOfRangeValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[notes]
nesting_level = 9

[save]
debounce_millis = -5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.Notes.NestingLevel != 1 {
		t.Fatalf("nesting level = %d, want clamp to 1", settings.Notes.NestingLevel)
	}
	if settings.Save.DebounceMillis != 1000 {
		t.Fatalf("debounce = %d, want clamp to 1000", settings.Save.DebounceMillis)
	}
}
