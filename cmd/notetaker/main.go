package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/casefile/notetaker/internal/bridge"
	"github.com/casefile/notetaker/internal/config"
	"github.com/casefile/notetaker/internal/logging"
	"github.com/casefile/notetaker/internal/statefile"
	"github.com/casefile/notetaker/internal/tui"
	"github.com/casefile/notetaker/internal/workspace"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to the TOML config file")
	workspaceDir := flag.String("workspace", "", "directory to browse for case documents (overrides config)")
	statePath := flag.String("state", "", "path to the workspace state JSON file (overrides config)")
	logPath := flag.String("log", "", "path to the log file (overrides config)")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	if *workspaceDir != "" {
		settings.Workspace.Directory = *workspaceDir
	}
	if *statePath != "" {
		settings.Workspace.StatePath = *statePath
	}
	if *logPath != "" {
		settings.Logging.Path = *logPath
	}

	startDir := settings.Workspace.Directory
	if startDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			startDir = cwd
		} else {
			startDir = "."
		}
	}
	if abs, err := filepath.Abs(startDir); err == nil {
		startDir = abs
	}

	logger, err := logging.New(settings.Logging.Path, settings.Logging.Level)
	if err != nil {
		fmt.Println("logging disabled:", err)
		logger = logging.Nop()
	}
	defer func() { _ = logger.Sync() }()

	gateway := statefile.New(settings.Workspace.StatePath, logger)
	store := workspace.NewStore(workspace.Options{
		Gateway:        gateway,
		SaveDelay:      settings.SaveDebounce(),
		Logger:         logger,
		AutoNote:       settings.Notes.AutoNote,
		NestingLevel:   settings.Notes.NestingLevel,
		HighlightColor: settings.Notes.HighlightColor,
	})

	persisted, err := gateway.Load()
	if err != nil {
		logger.Warn("state load failed, starting fresh", zap.Error(err))
	}
	store.LoadFromPersistedState(persisted)

	fileBridge := bridge.New(settings.OCR.Command, settings.OCR.Args, logger)

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Store:    store,
			Bridge:   fileBridge,
			Settings: settings,
			Logger:   logger,
			StartDir: startDir,
		}),
		opts...,
	)

	_, runErr := program.Run()
	store.Flush()
	if runErr != nil {
		fmt.Println("program error:", runErr)
		os.Exit(1)
	}
}
