// Package bridge is the file-system boundary: directory listing and
// watching, file reads and writes, the OCR trigger, and the markdown export.
// Everything here may fail; failures are reported, logged, and never fatal.
package bridge

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Entry is one directory listing row.
type Entry struct {
	Name    string    `json:"name"`
	IsDir   bool      `json:"isDirectory"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mtime"`
}

// OCRResult is the out-of-band completion notification for an OCR run,
// correlated to the originating request by path.
type OCRResult struct {
	Path string
	Err  error
}

// Bridge wraps host file-system access for the rest of the app.
type Bridge struct {
	ocrCommand string
	ocrArgs    []string
	ocrDone    chan OCRResult
	log        *zap.Logger
}

// New builds a bridge. ocrCommand is the external OCR binary (ocrmypdf
// style: extra args, then input and output paths).
func New(ocrCommand string, ocrArgs []string, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		ocrCommand: ocrCommand,
		ocrArgs:    append([]string(nil), ocrArgs...),
		ocrDone:    make(chan OCRResult, 8),
		log:        log,
	}
}

// ListDirectory returns the entries of dir, directories first, each group
// sorted by name.
func (b *Bridge) ListDirectory(dir string) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	entries := make([]Entry, 0, len(dirents))
	for _, dirent := range dirents {
		info, err := dirent.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    dirent.Name(),
			IsDir:   dirent.IsDir(),
			Path:    filepath.Join(dir, dirent.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

// ReadFile returns the file contents as text.
func (b *Bridge) ReadFile(path string) (string, error) {
	data, err := b.ReadBuffer(path)
	return string(data), err
}

// ReadBuffer returns the raw file contents.
func (b *Bridge) ReadBuffer(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to path, creating parent directories as needed.
func (b *Bridge) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MoveFile renames src to dst, falling back to copy+remove across devices.
func (b *Bridge) MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	return os.Remove(src)
}

// SaveMarkdown writes exported note content next to the workspace files.
func (b *Bridge) SaveMarkdown(path, content string) error {
	return b.WriteFile(path, []byte(content))
}

// ocrTextThreshold mirrors the production probe: a PDF yielding fewer
// extractable characters than this is almost certainly a scanned image.
const ocrTextThreshold = 100

// CheckNeedsOCR reports whether the PDF at path lacks a usable text layer.
func (b *Bridge) CheckNeedsOCR(path string) (bool, error) {
	text, err := b.ExtractText(path)
	if err != nil {
		return false, err
	}
	return NeedsOCR(text), nil
}

// NeedsOCR applies the probe to already-extracted text.
func NeedsOCR(text string) bool {
	return len(strings.TrimSpace(text)) < ocrTextThreshold
}

// ExtractText pulls the plain text layer out of a PDF for the reader pane.
func (b *Bridge) ExtractText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return strings.TrimSpace(builder.String()), nil
}

// RunOCR launches the external OCR command for path. The call returns as
// soon as the process is started; completion arrives later on Completions,
// because OCR can run long after the triggering call returns.
func (b *Bridge) RunOCR(ctx context.Context, path string) error {
	if b.ocrCommand == "" {
		return fmt.Errorf("no OCR command configured")
	}
	args := append(append([]string(nil), b.ocrArgs...), path, path)
	cmd := exec.CommandContext(ctx, b.ocrCommand, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", b.ocrCommand, err)
	}
	b.log.Info("ocr started", zap.String("path", path))

	go func() {
		err := cmd.Wait()
		if err != nil {
			b.log.Warn("ocr failed", zap.String("path", path), zap.Error(err))
		} else {
			b.log.Info("ocr finished", zap.String("path", path))
		}
		b.ocrDone <- OCRResult{Path: path, Err: err}
	}()
	return nil
}

// Completions delivers OCR results out-of-band, keyed by path.
func (b *Bridge) Completions() <-chan OCRResult {
	return b.ocrDone
}
