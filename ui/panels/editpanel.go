package panels

import (
	"fmt"

	"neuron-tracer/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// EditPanel holds the point-selection controls and the tree edit actions
// that consume the selection.
type EditPanel struct {
	state     *app.State
	container fyne.CanvasObject

	selectToggle   *widget.Button
	selectionLabel *widget.Label
	clearButton    *widget.Button

	rerootButton   *widget.Button
	subtreeButton  *widget.Button
	fullTreeButton *widget.Button
	subtreeCheck   *widget.Check

	flagCheck   *widget.Check
	statusLabel *widget.Label
}

// NewEditPanel creates the edit panel.
func NewEditPanel(state *app.State) *EditPanel {
	ep := &EditPanel{state: state}

	// Initialize all labels first (before any callbacks can fire)
	ep.selectionLabel = widget.NewLabel("Selection off")
	ep.statusLabel = widget.NewLabel("")
	ep.statusLabel.Wrapping = fyne.TextWrapWord

	ep.selectToggle = widget.NewButton("Select Points", func() {
		ep.statusLabel.SetText("")
		if state.SelectionActive() {
			state.DeactivateSelection()
			return
		}
		if !state.ActivateSelection() {
			ep.statusLabel.SetText("Nothing to select in this file")
		}
	})

	ep.clearButton = widget.NewButton("Clear Selection", func() {
		state.ClearSelection()
	})
	ep.clearButton.Disable()

	ep.rerootButton = widget.NewButton("Reroot Here", func() {
		ep.runEdit(state.RerootAtSelection)
	})
	ep.rerootButton.Disable()

	ep.subtreeButton = widget.NewButton("Extract Subtree", func() {
		ep.runEdit(state.ExtractSubtreeAtSelection)
	})
	ep.subtreeButton.Disable()

	ep.fullTreeButton = widget.NewButton("Show Full Tree", func() {
		state.ClearSubtree()
	})

	ep.subtreeCheck = widget.NewCheck("Limit view to subtree", func(v bool) {
		state.SetShowSubtree(v)
	})

	// A programmatic SetChecked echoes through the callback; writing the
	// flag only on a real change keeps loads from dirtying the document.
	ep.flagCheck = widget.NewCheck("Flagged for review", func(v bool) {
		current, err := state.FlagState()
		if err != nil || current == v {
			return
		}
		if err := state.SetFlagState(v); err != nil {
			ep.statusLabel.SetText(err.Error())
		}
	})
	ep.flagCheck.Disable()

	ep.container = container.NewVBox(
		widget.NewCard("Selection", "", container.NewVBox(
			ep.selectToggle,
			ep.selectionLabel,
			ep.clearButton,
		)),
		widget.NewCard("Tree Edits", "", container.NewVBox(
			ep.rerootButton,
			ep.subtreeButton,
			ep.fullTreeButton,
			ep.subtreeCheck,
		)),
		widget.NewCard("Annotation", "", container.NewVBox(
			ep.flagCheck,
		)),
		ep.statusLabel,
	)

	state.On(app.EventSelectionMode, func(data interface{}) {
		active, _ := data.(bool)
		ep.updateSelectionMode(active)
	})
	state.On(app.EventSelectionChanged, func(data interface{}) {
		count, _ := data.(int)
		ep.updateSelectionCount(count)
	})
	state.On(app.EventDocumentLoaded, func(_ interface{}) { ep.syncDocument() })
	state.On(app.EventTreeEdited, func(_ interface{}) { ep.syncDocument() })
	state.On(app.EventFlagChanged, func(_ interface{}) { ep.syncFlag() })
	state.On(app.EventSubtreeView, func(data interface{}) {
		v, _ := data.(bool)
		ep.subtreeCheck.SetChecked(v)
	})

	ep.syncDocument()
	return ep
}

// Container returns the panel container.
func (ep *EditPanel) Container() fyne.CanvasObject {
	return ep.container
}

func (ep *EditPanel) runEdit(edit func() error) {
	ep.statusLabel.SetText("")
	if err := edit(); err != nil {
		ep.statusLabel.SetText(err.Error())
	}
}

func (ep *EditPanel) updateSelectionMode(active bool) {
	if active {
		ep.selectToggle.SetText("Done Selecting")
		ep.selectionLabel.SetText("0 points selected")
		ep.clearButton.Enable()
		return
	}
	ep.selectToggle.SetText("Select Points")
	ep.selectionLabel.SetText("Selection off")
	ep.clearButton.Disable()
	ep.rerootButton.Disable()
	ep.subtreeButton.Disable()
}

func (ep *EditPanel) updateSelectionCount(count int) {
	if count == 1 {
		ep.selectionLabel.SetText("1 point selected")
		ep.rerootButton.Enable()
		ep.subtreeButton.Enable()
		return
	}
	ep.selectionLabel.SetText(fmt.Sprintf("%d points selected", count))
	ep.rerootButton.Disable()
	ep.subtreeButton.Disable()
}

// syncDocument refreshes every control that depends on what is loaded.
func (ep *EditPanel) syncDocument() {
	doc := ep.state.Document()
	hasTree := doc != nil && doc.HasTree()

	if hasTree {
		ep.selectToggle.Enable()
		ep.fullTreeButton.Enable()
		ep.subtreeCheck.Enable()
	} else {
		ep.selectToggle.Disable()
		ep.fullTreeButton.Disable()
		ep.subtreeCheck.Disable()
	}
	ep.subtreeCheck.SetChecked(ep.state.ShowSubtree())
	ep.syncFlag()
}

func (ep *EditPanel) syncFlag() {
	v, err := ep.state.FlagState()
	if err != nil {
		ep.flagCheck.SetChecked(false)
		ep.flagCheck.Disable()
		return
	}
	ep.flagCheck.Enable()
	ep.flagCheck.SetChecked(v)
}
