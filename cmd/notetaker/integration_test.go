package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/casefile/notetaker/internal/tuitest"
)

func TestNoteTakerShowsBrowserOnStartup(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	workspaceDir := t.TempDir()
	writeFixtureFile(t, workspaceDir, "deposition-smith.txt")
	writeFixtureFile(t, workspaceDir, "motion-to-dismiss.txt")

	binary := buildBinary(t, cmdDir)
	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{
			binary,
			"-no-alt-screen",
			"-config", filepath.Join(t.TempDir(), "missing.toml"),
			"-workspace", workspaceDir,
			"-state", filepath.Join(t.TempDir(), "workspace.json"),
			"-log", filepath.Join(t.TempDir(), "notetaker.log"),
		},
		Dir:    cmdDir,
		Width:  120,
		Height: 40,
		Steps: []tuitest.Step{
			{Delay: time.Second},
			tuitest.Press(time.Second, tuitest.KeyCtrlC),
		},
		Timeout:        8 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	if !rec.ContainsPlain("Case Files") {
		t.Fatalf("browser header never rendered\n%s", lastPlain(rec))
	}
	if !rec.ContainsPlain("deposition-smith.txt") {
		t.Fatalf("workspace entries never listed\n%s", lastPlain(rec))
	}
}

func TestNoteTakerHelpOverlay(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	workspaceDir := t.TempDir()
	writeFixtureFile(t, workspaceDir, "exhibit-a.txt")

	binary := buildBinary(t, cmdDir)
	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{
			binary,
			"-no-alt-screen",
			"-config", filepath.Join(t.TempDir(), "missing.toml"),
			"-workspace", workspaceDir,
			"-state", filepath.Join(t.TempDir(), "workspace.json"),
			"-log", filepath.Join(t.TempDir(), "notetaker.log"),
		},
		Dir:    cmdDir,
		Width:  120,
		Height: 40,
		Steps: []tuitest.Step{
			{Delay: time.Second},
			tuitest.Type(0, "?"),
			tuitest.Press(time.Second, tuitest.KeyCtrlC),
		},
		Timeout:        8 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	if !rec.ContainsPlain("Review Workflow") {
		t.Fatalf("help overlay never rendered\n%s", lastPlain(rec))
	}
}

func lastPlain(rec *tuitest.Recording) string {
	if frame, ok := rec.FinalFrame(); ok {
		return frame.Plain
	}
	return "<no frames>"
}

func writeFixtureFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("fixture"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	tmp := t.TempDir()
	name := "notetaker-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(tmp, name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
