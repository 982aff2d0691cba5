package panels

import (
	"fmt"
	"path/filepath"

	"neuron-tracer/internal/app"
	"neuron-tracer/internal/fileio"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// FilesPanel shows the open folder's reconstruction files and drives
// navigation between them.
type FilesPanel struct {
	state     *app.State
	container fyne.CanvasObject

	folderLabel  *widget.Label
	counterLabel *widget.Label
	fileList     *widget.List
	statusLabel  *widget.Label

	prevButton    *widget.Button
	nextButton    *widget.Button
	refreshButton *widget.Button
	autoSaveCheck *widget.Check

	names []string
}

// NewFilesPanel creates the files panel.
func NewFilesPanel(state *app.State) *FilesPanel {
	fp := &FilesPanel{state: state}

	// Initialize all labels first (before any callbacks can fire)
	fp.folderLabel = widget.NewLabel("No folder open")
	fp.folderLabel.Wrapping = fyne.TextWrapWord
	fp.counterLabel = widget.NewLabel("0/0")
	fp.statusLabel = widget.NewLabel("")
	fp.statusLabel.Wrapping = fyne.TextWrapWord

	fp.fileList = widget.NewList(
		func() int { return len(fp.names) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(fp.names) {
				obj.(*widget.Label).SetText(fp.names[id])
			}
		},
	)
	// Select fires for programmatic syncs too; the current-file guard
	// keeps those from turning into a redundant reload.
	fp.fileList.OnSelected = func(id widget.ListItemID) {
		current, _ := state.FileCounter()
		if id == current-1 {
			return
		}
		if err := state.JumpToIndex(int(id) + 1); err != nil {
			fp.statusLabel.SetText(err.Error())
			fp.syncSelection()
			return
		}
		fp.statusLabel.SetText("")
	}

	fp.prevButton = widget.NewButton("Previous", func() {
		fp.statusLabel.SetText("")
		if !state.PrevFile() {
			fp.statusLabel.SetText("Cannot go back")
		}
	})
	fp.nextButton = widget.NewButton("Next", func() {
		fp.statusLabel.SetText("")
		if !state.NextFile() {
			fp.statusLabel.SetText("Cannot advance")
		}
	})
	fp.refreshButton = widget.NewButton("Rescan", func() {
		if err := state.RefreshFileList(); err != nil {
			fp.statusLabel.SetText(err.Error())
		}
	})

	fp.autoSaveCheck = widget.NewCheck("Auto-save on navigate", func(v bool) {
		state.SetAutoSave(v)
	})
	fp.autoSaveCheck.SetChecked(state.AutoSave())

	fp.container = container.NewBorder(
		container.NewVBox(
			widget.NewCard("Folder", "", container.NewVBox(
				fp.folderLabel,
				container.NewHBox(fp.prevButton, fp.counterLabel, fp.nextButton),
				container.NewHBox(fp.refreshButton),
				fp.autoSaveCheck,
			)),
		),
		fp.statusLabel,
		nil, nil,
		fp.fileList,
	)

	state.On(app.EventFolderOpened, func(_ interface{}) { fp.rebuild() })
	state.On(app.EventFileListChanged, func(_ interface{}) { fp.rebuild() })
	state.On(app.EventDocumentLoaded, func(_ interface{}) {
		fp.updateCounter()
		fp.syncSelection()
	})

	fp.rebuild()
	return fp
}

// Container returns the panel container.
func (fp *FilesPanel) Container() fyne.CanvasObject {
	return fp.container
}

// rebuild refreshes the list contents from the navigation state.
func (fp *FilesPanel) rebuild() {
	files := fp.state.Files()
	fp.names = make([]string, len(files))
	for i, f := range files {
		fp.names[i] = fileio.Stem(f)
	}

	if folder := fp.state.Folder(); folder != "" {
		fp.folderLabel.SetText(filepath.Base(folder))
	} else if len(files) == 1 {
		fp.folderLabel.SetText("Single file")
	} else {
		fp.folderLabel.SetText("No folder open")
	}

	fp.fileList.Refresh()
	fp.updateCounter()
	fp.syncSelection()
}

func (fp *FilesPanel) updateCounter() {
	current, total := fp.state.FileCounter()
	fp.counterLabel.SetText(fmt.Sprintf("%d/%d", current, total))
}

func (fp *FilesPanel) syncSelection() {
	current, _ := fp.state.FileCounter()
	if current > 0 {
		fp.fileList.Select(widget.ListItemID(current - 1))
		fp.fileList.ScrollTo(widget.ListItemID(current - 1))
	} else {
		fp.fileList.UnselectAll()
	}
}
