package dialogs

import (
	"fmt"
	"strconv"
	"strings"

	"neuron-tracer/internal/app"
	"neuron-tracer/internal/config"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ScaleDialog edits the scale bar length and its display units.
type ScaleDialog struct {
	state  *app.State
	window fyne.Window

	lengthEntry *widget.Entry
	unitsSelect *widget.Select
}

// NewScaleDialog creates a new scale bar dialog.
func NewScaleDialog(state *app.State, window fyne.Window) *ScaleDialog {
	return &ScaleDialog{state: state, window: window}
}

// Show displays the dialog.
func (d *ScaleDialog) Show() {
	sc := d.state.Scale()

	d.lengthEntry = widget.NewEntry()
	d.lengthEntry.SetText(strconv.FormatInt(d.state.ScaleLength(sc.Units), 10))

	d.unitsSelect = widget.NewSelect([]string{"nm", "µm"}, func(display string) {
		// Re-show the stored length in the newly chosen units.
		d.lengthEntry.SetText(strconv.FormatInt(d.state.ScaleLength(parseUnit(display)), 10))
	})
	d.unitsSelect.SetSelected(displayUnit(sc.Units))

	form := widget.NewForm(
		widget.NewFormItem("Length", d.lengthEntry),
		widget.NewFormItem("Units", d.unitsSelect),
	)

	dlg := dialog.NewCustomConfirm(
		"Scale Bar",
		"Apply",
		"Cancel",
		form,
		func(apply bool) {
			if !apply {
				return
			}
			if err := d.apply(); err != nil {
				dialog.ShowError(err, d.window)
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(300, 180))
	dlg.Show()
}

func (d *ScaleDialog) apply() error {
	v, err := strconv.ParseInt(strings.TrimSpace(d.lengthEntry.Text), 10, 64)
	if err != nil {
		return fmt.Errorf("scale length must be a whole number")
	}
	return d.state.SetScaleLength(v, parseUnit(d.unitsSelect.Selected))
}

func displayUnit(units string) string {
	if units == config.UnitMicrons {
		return "µm"
	}
	return "nm"
}

func parseUnit(display string) string {
	if display == "µm" {
		return config.UnitMicrons
	}
	return config.UnitNanometres
}
