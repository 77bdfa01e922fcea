package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/casefile/notetaker/internal/bridge"
	"github.com/casefile/notetaker/internal/workspace"
)

type directoryListedMsg struct {
	dir     string
	entries []bridge.Entry
	err     error
}

type documentLoadedMsg struct {
	path     string
	text     string
	needsOCR bool
	err      error
}

type exportResultMsg struct {
	path string
	err  error
}

type storeEventMsg struct {
	event workspace.Event
}

type ocrCompletedMsg struct {
	result bridge.OCRResult
}

type dirChangedMsg struct{}

func listDirectoryJob(b *bridge.Bridge, dir string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		entries, err := b.ListDirectory(dir)
		if err != nil {
			return directoryListedMsg{dir: dir, err: err}, err
		}
		return directoryListedMsg{dir: dir, entries: entries}, nil
	}
}

func loadDocumentJob(b *bridge.Bridge, path string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		text, err := b.ExtractText(path)
		if err != nil {
			return documentLoadedMsg{path: path, err: err}, err
		}
		return documentLoadedMsg{path: path, text: text, needsOCR: bridge.NeedsOCR(text)}, nil
	}
}

func exportMarkdownJob(b *bridge.Bridge, docPath, content string) jobRunner {
	target := exportPathFor(docPath)
	return func(context.Context) (tea.Msg, error) {
		if err := b.SaveMarkdown(target, content); err != nil {
			return exportResultMsg{path: target, err: err}, err
		}
		return exportResultMsg{path: target}, nil
	}
}

func exportPathFor(docPath string) string {
	base := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	return filepath.Join(filepath.Dir(docPath), fmt.Sprintf("%s-notes.md", base))
}

// waitForStoreEvent blocks on the store's event channel and feeds the next
// mutation notification into the update loop.
func waitForStoreEvent(events <-chan workspace.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return storeEventMsg{event: event}
	}
}

// waitForOCR surfaces the bridge's out-of-band OCR completions.
func waitForOCR(b *bridge.Bridge) tea.Cmd {
	return func() tea.Msg {
		result, ok := <-b.Completions()
		if !ok {
			return nil
		}
		return ocrCompletedMsg{result: result}
	}
}

// waitForDirChange converts watcher pings into refresh messages.
func waitForDirChange(pings <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-pings
		if !ok {
			return nil
		}
		return dirChangedMsg{}
	}
}

func shortenText(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	if len(value) <= limit {
		return value
	}
	return strings.TrimSpace(value[:limit-1]) + "…"
}
