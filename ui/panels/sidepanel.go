// Package panels provides the side panel tabs and the log console dock.
package panels

import (
	"neuron-tracer/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// SidePanel groups the files, edit, and info panels into tabs.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	filesPanel *FilesPanel
	editPanel  *EditPanel
	infoPanel  *InfoPanel
}

// NewSidePanel creates the side panel.
func NewSidePanel(state *app.State) *SidePanel {
	sp := &SidePanel{state: state}

	sp.filesPanel = NewFilesPanel(state)
	sp.editPanel = NewEditPanel(state)
	sp.infoPanel = NewInfoPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Files", sp.filesPanel.Container()),
		container.NewTabItem("Edit", sp.editPanel.Container()),
		container.NewTabItem("Info", sp.infoPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}
