// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"

	"neuron-tracer/internal/app"
	"neuron-tracer/internal/config"
	"neuron-tracer/internal/picker"
	"neuron-tracer/internal/version"
	"neuron-tracer/ui/dialogs"
	"neuron-tracer/ui/panels"
	"neuron-tracer/ui/prefs"
	"neuron-tracer/ui/viewport"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs

	viewport  *viewport.Viewport
	scaleBar  *viewport.ScaleBar
	sidePanel *panels.SidePanel
	logPanel  *panels.LogPanel
	statusBar *widget.Label

	mainSplit *container.Split

	// Menu items whose labels track state
	selectItem   *fyne.MenuItem
	meshItem     *fyne.MenuItem
	subtreeItem  *fyne.MenuItem
	scaleBarItem *fyne.MenuItem
	logItem      *fyne.MenuItem
	nmItem       *fyne.MenuItem
	umItem       *fyne.MenuItem

	logVisible bool
}

// New creates the main window and wires the viewport, panels, and picker
// into the application state.
func New(fyneApp fyne.App, state *app.State, store *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Neuron Tracer")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  store,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupShortcuts()
	mw.restoreSession()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.viewport = viewport.New()
	mw.state.AttachRenderer(mw.viewport)

	sel := picker.New(mw.viewport, mw.viewport.Pick)
	mw.state.AttachSelector(sel)
	mw.viewport.OnTap(func(x, y float64) { sel.HandleClick(x, y) })
	mw.viewport.OnMove(sel.HandleHover)

	mw.scaleBar = viewport.NewScaleBar(mw.state.Scale())
	mw.viewport.OnViewChanged(func() {
		mw.scaleBar.SetWorldPerPixel(mw.viewport.WorldPerPixel())
	})

	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.logPanel = panels.NewLogPanel()
	mw.statusBar = widget.NewLabel("Ready")

	// Scale bar floats over the bottom centre of the viewport.
	viewportArea := container.NewStack(
		mw.viewport,
		container.NewVBox(
			layout.NewSpacer(),
			container.NewHBox(layout.NewSpacer(), container.NewPadded(mw.scaleBar), layout.NewSpacer()),
		),
	)

	mw.mainSplit = container.NewHSplit(mw.sidePanel.Container(), viewportArea)
	mw.mainSplit.SetOffset(0.25)

	mw.logVisible = mw.prefs.Bool(prefs.KeyShowLogDock, false)
	if !mw.prefs.Bool(prefs.KeyShowScaleBar, true) {
		mw.scaleBar.Hide()
	}
	mw.rebuildContent()
}

// rebuildContent lays the window out with or without the log dock.
func (mw *MainWindow) rebuildContent() {
	center := fyne.CanvasObject(mw.mainSplit)
	if mw.logVisible {
		vs := container.NewVSplit(mw.mainSplit, mw.logPanel.Container())
		vs.SetOffset(0.75)
		center = vs
	}
	mw.SetContent(container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		center,
	))
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open File...", mw.onOpenFile),
		fyne.NewMenuItem("Open Folder...", mw.onOpenFolder),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", mw.onSave),
		fyne.NewMenuItem("Save As...", mw.onSaveAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	mw.selectItem = fyne.NewMenuItem("  Select Points", mw.onToggleSelection)
	editMenu := fyne.NewMenu("Edit",
		mw.selectItem,
		fyne.NewMenuItem("Clear Selection", func() { mw.state.ClearSelection() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reroot at Selection", mw.onReroot),
		fyne.NewMenuItem("Extract Subtree", mw.onExtractSubtree),
		fyne.NewMenuItem("Show Full Tree", func() { mw.state.ClearSubtree() }),
	)

	mw.meshItem = fyne.NewMenuItem("  Mesh Overlay", mw.onToggleMesh)
	mw.subtreeItem = fyne.NewMenuItem("  Subtree Only", mw.onToggleSubtree)
	mw.scaleBarItem = fyne.NewMenuItem("✓ Scale Bar", mw.onToggleScaleBar)
	mw.logItem = fyne.NewMenuItem("  Log Console", mw.onToggleLog)

	mw.nmItem = fyne.NewMenuItem("  nm", func() { mw.onSelectUnits(config.UnitNanometres) })
	mw.umItem = fyne.NewMenuItem("  µm", func() { mw.onSelectUnits(config.UnitMicrons) })
	unitsItem := fyne.NewMenuItem("Units", nil)
	unitsItem.ChildMenu = fyne.NewMenu("", mw.nmItem, mw.umItem)

	viewMenu := fyne.NewMenu("View",
		mw.meshItem,
		mw.subtreeItem,
		fyne.NewMenuItemSeparator(),
		mw.scaleBarItem,
		unitsItem,
		fyne.NewMenuItem("Set Scale Length...", mw.onScaleDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Set Neuron Colour...", mw.onPickColour),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset View", mw.onResetView),
		fyne.NewMenuItemSeparator(),
		mw.logItem,
	)

	navigateMenu := fyne.NewMenu("Navigate",
		fyne.NewMenuItem("Next File", mw.onNextFile),
		fyne.NewMenuItem("Previous File", mw.onPrevFile),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Jump to File...", mw.onJumpDialog),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, navigateMenu, helpMenu))
	mw.syncViewMenu()
	mw.syncUnitsMenu()
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventDocumentLoaded, func(_ interface{}) {
		mw.refreshTitle()
		mw.updateStatus()
	})
	mw.state.On(app.EventFolderOpened, func(_ interface{}) { mw.updateStatus() })
	mw.state.On(app.EventFileListChanged, func(_ interface{}) { mw.updateStatus() })
	mw.state.On(app.EventModified, func(_ interface{}) { mw.refreshTitle() })
	mw.state.On(app.EventDocumentSaved, func(data interface{}) {
		mw.refreshTitle()
		if path, ok := data.(string); ok {
			mw.statusBar.SetText("Saved " + filepath.Base(path))
		}
	})
	mw.state.On(app.EventSelectionMode, func(data interface{}) {
		active, _ := data.(bool)
		if active {
			mw.viewport.SetMode(viewport.ModeSelect)
		} else {
			mw.viewport.SetMode(viewport.ModeOrbit)
		}
		setCheck(mw.selectItem, "Select Points", active)
		mw.updateStatus()
	})
	mw.state.On(app.EventSelectionChanged, func(_ interface{}) { mw.updateStatus() })
	mw.state.On(app.EventMeshChanged, func(_ interface{}) { mw.syncViewMenu() })
	mw.state.On(app.EventSubtreeView, func(_ interface{}) { mw.syncViewMenu() })
	mw.state.On(app.EventScaleChanged, func(data interface{}) {
		if sc, ok := data.(app.ScaleSettings); ok {
			mw.scaleBar.SetSettings(sc)
			mw.prefs.SetString(prefs.KeyScaleUnits, sc.Units)
		}
		mw.syncUnitsMenu()
	})
}

// setupShortcuts wires the keyboard: Ctrl shortcuts through the canvas
// shortcut table, bare keys through the typed-key fallback that fires
// only when no widget has focus.
func (mw *MainWindow) setupShortcuts() {
	cv := mw.Canvas()
	cv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl},
		func(fyne.Shortcut) { mw.onSave() })
	cv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl},
		func(fyne.Shortcut) { mw.onOpenFile() })

	cv.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyRight, fyne.KeyN:
			mw.onNextFile()
		case fyne.KeyLeft, fyne.KeyP:
			mw.onPrevFile()
		case fyne.KeyJ:
			mw.onJumpDialog()
		case fyne.KeyHome:
			mw.onResetView()
		case fyne.KeyEscape:
			mw.state.DeactivateSelection()
		}
	})
}

// restoreSession applies persisted geometry and view settings, then
// reopens the last folder.
func (mw *MainWindow) restoreSession() {
	w := float32(mw.prefs.Float(prefs.KeyWindowWidth, 1280))
	h := float32(mw.prefs.Float(prefs.KeyWindowHeight, 800))
	mw.Resize(fyne.NewSize(w, h))

	if hex := mw.prefs.String(prefs.KeyNeuronColor, ""); hex != "" {
		if c, ok := parseHexColor(hex); ok {
			mw.viewport.SetSkeletonColor(c)
		}
	}
	if u := mw.prefs.String(prefs.KeyScaleUnits, ""); u == config.UnitNanometres || u == config.UnitMicrons {
		mw.state.SetScaleUnits(u)
	}

	if folder := mw.prefs.String(prefs.KeyLastFolder, ""); folder != "" {
		if err := mw.state.OpenFolder(folder); err != nil {
			mw.statusBar.SetText("Last folder unavailable: " + err.Error())
		}
	}

	mw.SetCloseIntercept(func() {
		size := mw.Canvas().Size()
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
		if err := mw.prefs.Save(); err != nil {
			slog.Warn("saving preferences", "error", err)
		}
		mw.Close()
	})
}

// refreshTitle rebuilds the window title from the loaded document.
func (mw *MainWindow) refreshTitle() {
	title := "Neuron Tracer"
	if doc := mw.state.Document(); doc != nil {
		title += " - " + doc.Name()
		if mw.state.Modified() {
			title += " *"
		}
	}
	mw.SetTitle(title)
}

// updateStatus rebuilds the persistent status line: file counter, name,
// selection count.
func (mw *MainWindow) updateStatus() {
	current, total := mw.state.FileCounter()
	var parts []string
	if total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", current, total))
	}
	if doc := mw.state.Document(); doc != nil {
		parts = append(parts, doc.Name())
	}
	if mw.state.SelectionActive() {
		parts = append(parts, fmt.Sprintf("%d selected", mw.state.SelectionCount()))
	}
	if len(parts) == 0 {
		mw.statusBar.SetText("Ready")
		return
	}
	mw.statusBar.SetText(strings.Join(parts, "  ·  "))
}

// getLastDir returns the last browsed directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir, "")
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir remembers the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}

// Menu action handlers

func (mw *MainWindow) onOpenFile() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.OpenFile(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(mw.state.FileManager().OpenExtensions()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenFolder() {
	fd := dialog.NewFolderOpen(func(list fyne.ListableURI, err error) {
		if err != nil || list == nil {
			return
		}
		folder := list.Path()
		if err := mw.state.OpenFolder(folder); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetString(prefs.KeyLastFolder, folder)
		mw.prefs.SetString(prefs.KeyLastDir, folder)
	}, mw.Window)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSave() {
	if err := mw.state.Save(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveAs() {
	doc := mw.state.Document()
	if doc == nil {
		mw.statusBar.SetText("Nothing to save")
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".swc" && ext != ".nrn" {
			path += ".nrn"
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveAs(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName(doc.Name() + ".nrn")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onToggleSelection() {
	if mw.state.SelectionActive() {
		mw.state.DeactivateSelection()
		return
	}
	if !mw.state.ActivateSelection() {
		mw.statusBar.SetText("Nothing to select in this file")
	}
}

func (mw *MainWindow) onReroot() {
	if err := mw.state.RerootAtSelection(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onExtractSubtree() {
	if err := mw.state.ExtractSubtreeAtSelection(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onToggleMesh() {
	mw.state.SetShowMesh(!mw.state.ShowMesh())
}

func (mw *MainWindow) onToggleSubtree() {
	mw.state.SetShowSubtree(!mw.state.ShowSubtree())
}

func (mw *MainWindow) onToggleScaleBar() {
	visible := !mw.scaleBar.Visible()
	if visible {
		mw.scaleBar.Show()
	} else {
		mw.scaleBar.Hide()
	}
	mw.prefs.SetBool(prefs.KeyShowScaleBar, visible)
	mw.syncViewMenu()
}

func (mw *MainWindow) onToggleLog() {
	mw.logVisible = !mw.logVisible
	mw.prefs.SetBool(prefs.KeyShowLogDock, mw.logVisible)
	mw.rebuildContent()
	mw.syncViewMenu()
}

func (mw *MainWindow) onSelectUnits(units string) {
	mw.state.SetScaleUnits(units)
}

func (mw *MainWindow) onScaleDialog() {
	dialogs.NewScaleDialog(mw.state, mw.Window).Show()
}

func (mw *MainWindow) onJumpDialog() {
	dialogs.NewJumpDialog(mw.state, mw.Window).Show()
}

func (mw *MainWindow) onPickColour() {
	cp := dialog.NewColorPicker("Neuron Colour", "Skeleton draw colour", func(c color.Color) {
		nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
		mw.viewport.SetSkeletonColor(nrgba)
		mw.prefs.SetString(prefs.KeyNeuronColor, formatHexColor(nrgba))
	}, mw.Window)
	cp.Advanced = true
	cp.Show()
}

func (mw *MainWindow) onResetView() {
	mw.viewport.ResetView()
}

func (mw *MainWindow) onNextFile() {
	if !mw.state.NextFile() {
		mw.statusBar.SetText("Cannot advance")
	}
}

func (mw *MainWindow) onPrevFile() {
	if !mw.state.PrevFile() {
		mw.statusBar.SetText("Cannot go back")
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Neuron Tracer",
		fmt.Sprintf("Neuron Tracer v%s\n\n"+
			"View and edit 3D neuron reconstructions.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

// syncViewMenu refreshes the check marks in the View menu.
func (mw *MainWindow) syncViewMenu() {
	setCheck(mw.meshItem, "Mesh Overlay", mw.state.ShowMesh())
	setCheck(mw.subtreeItem, "Subtree Only", mw.state.ShowSubtree())
	setCheck(mw.scaleBarItem, "Scale Bar", mw.scaleBar.Visible())
	setCheck(mw.logItem, "Log Console", mw.logVisible)
}

func (mw *MainWindow) syncUnitsMenu() {
	units := mw.state.Scale().Units
	setCheck(mw.nmItem, "nm", units == config.UnitNanometres)
	setCheck(mw.umItem, "µm", units == config.UnitMicrons)
}

// setCheck emulates a checkable menu item with a label prefix.
func setCheck(item *fyne.MenuItem, label string, on bool) {
	if on {
		item.Label = "✓ " + label
	} else {
		item.Label = "  " + label
	}
}

func formatHexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func parseHexColor(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}, true
}
