package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "notetaker.log")
	logger, err := New(path, "debug")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("startup", zap.String("component", "test"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected log output, file is empty")
	}
}

func TestNewRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := New("", "info"); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
