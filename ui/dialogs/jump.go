// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"strconv"
	"strings"

	"neuron-tracer/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// JumpDialog jumps to a file in the open folder, by position or by name.
type JumpDialog struct {
	state  *app.State
	window fyne.Window

	indexEntry *widget.Entry
	nameEntry  *widget.Entry
}

// NewJumpDialog creates a new jump dialog.
func NewJumpDialog(state *app.State, window fyne.Window) *JumpDialog {
	return &JumpDialog{state: state, window: window}
}

// Show displays the dialog.
func (d *JumpDialog) Show() {
	current, total := d.state.FileCounter()

	d.indexEntry = widget.NewEntry()
	d.indexEntry.SetPlaceHolder(fmt.Sprintf("1..%d", total))
	if current > 0 {
		d.indexEntry.SetText(strconv.Itoa(current))
	}

	d.nameEntry = widget.NewEntry()
	d.nameEntry.SetPlaceHolder("name without extension")

	form := widget.NewForm(
		widget.NewFormItem("Number", d.indexEntry),
		widget.NewFormItem("Name", d.nameEntry),
	)

	dlg := dialog.NewCustomConfirm(
		"Jump to File",
		"Jump",
		"Cancel",
		container.NewVBox(
			widget.NewLabel("A name takes precedence over the number."),
			form,
		),
		func(jump bool) {
			if !jump {
				return
			}
			if err := d.apply(); err != nil {
				dialog.ShowError(err, d.window)
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(360, 220))
	dlg.Show()
}

func (d *JumpDialog) apply() error {
	if name := strings.TrimSpace(d.nameEntry.Text); name != "" {
		return d.state.JumpToName(name)
	}
	n, err := strconv.Atoi(strings.TrimSpace(d.indexEntry.Text))
	if err != nil {
		return fmt.Errorf("enter a file number or a name")
	}
	return d.state.JumpToIndex(n)
}
