// Package main provides the entry point for the Neuron Tracer application.
package main

import (
	"log/slog"
	"os"
	"time"

	"neuron-tracer/internal/app"
	"neuron-tracer/internal/applog"
	"neuron-tracer/internal/config"
	"neuron-tracer/internal/fileio"
	"neuron-tracer/internal/version"
	"neuron-tracer/ui/mainwindow"
	"neuron-tracer/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

func main() {
	applog.Init(applog.FromEnv())
	slog.Info("starting neuron-tracer", "version", version.Version)

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("loading config, using defaults", "error", err)
	}

	store := prefs.Load()
	files := fileio.NewManager(cfg.Files.MeshExtensions)
	state := app.NewState(cfg, files, applog.WithComponent("app"))

	// The watcher must be listening before the window restores the last
	// session folder.
	var watcher *app.FolderWatcher
	if cfg.Files.WatchFolder {
		watcher = setupFolderWatch(cfg, state, files)
	}

	fyneApp := fyneapp.New()
	fyneApp.Settings().SetTheme(&app.TracerTheme{})

	win := mainwindow.New(fyneApp, state, store)

	// A path on the command line overrides the restored session.
	if len(os.Args) > 1 {
		openArg(state, os.Args[1])
	}

	win.ShowAndRun()

	if watcher != nil {
		watcher.Stop()
	}
}

// setupFolderWatch starts the filesystem watcher that keeps the file list
// current while a folder is open. Returns nil when the watcher cannot be
// created; the app runs without it.
func setupFolderWatch(cfg config.Config, state *app.State, files *fileio.Manager) *app.FolderWatcher {
	debounce := time.Duration(cfg.Files.WatchDebounceMS) * time.Millisecond
	watcher, err := app.NewFolderWatcher(debounce, files.TreeExtensions())
	if err != nil {
		slog.Warn("folder watching disabled", "error", err)
		return nil
	}
	watcher.OnChange(func() {
		if err := state.RefreshFileList(); err != nil {
			slog.Warn("refreshing file list", "error", err)
		}
	})
	state.On(app.EventFolderOpened, func(_ interface{}) {
		folder := state.Folder()
		if folder == "" {
			// Single-file mode. A stale watch is harmless: refreshing
			// with no folder open is a no-op.
			return
		}
		if err := watcher.Watch(folder); err != nil {
			slog.Warn("watching folder", "folder", folder, "error", err)
		}
	})
	watcher.Start()
	return watcher
}

// openArg loads the path given on the command line, a folder or a single
// file.
func openArg(state *app.State, path string) {
	info, err := os.Stat(path)
	if err != nil {
		slog.Error("opening path", "path", path, "error", err)
		return
	}
	if info.IsDir() {
		err = state.OpenFolder(path)
	} else {
		err = state.OpenFile(path)
	}
	if err != nil {
		slog.Error("opening path", "path", path, "error", err)
	}
}
