package panels

import (
	"fmt"

	"neuron-tracer/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// InfoPanel shows document statistics and the view toggles.
type InfoPanel struct {
	state     *app.State
	container fyne.CanvasObject

	nameLabel     *widget.Label
	typeLabel     *widget.Label
	vertexLabel   *widget.Label
	pointLabel    *widget.Label
	rootLabel     *widget.Label
	cableLabel    *widget.Label
	modifiedLabel *widget.Label

	meshCheck *widget.Check
	meshLabel *widget.Label
}

// NewInfoPanel creates the info panel.
func NewInfoPanel(state *app.State) *InfoPanel {
	ip := &InfoPanel{state: state}

	// Initialize all labels first (before any callbacks can fire)
	ip.nameLabel = widget.NewLabel("Nothing loaded")
	ip.nameLabel.TextStyle = fyne.TextStyle{Bold: true}
	ip.typeLabel = widget.NewLabel("")
	ip.vertexLabel = widget.NewLabel("")
	ip.pointLabel = widget.NewLabel("")
	ip.rootLabel = widget.NewLabel("")
	ip.cableLabel = widget.NewLabel("")
	ip.modifiedLabel = widget.NewLabel("")
	ip.meshLabel = widget.NewLabel("No companion mesh")
	ip.meshLabel.Wrapping = fyne.TextWrapWord

	ip.meshCheck = widget.NewCheck("Show mesh overlay", func(v bool) {
		if v != state.ShowMesh() {
			state.SetShowMesh(v)
		}
	})
	ip.meshCheck.SetChecked(state.ShowMesh())

	ip.container = container.NewVBox(
		widget.NewCard("Document", "", container.NewVBox(
			ip.nameLabel,
			ip.typeLabel,
			ip.vertexLabel,
			ip.pointLabel,
			ip.modifiedLabel,
		)),
		widget.NewCard("Morphometry", "", container.NewVBox(
			ip.rootLabel,
			ip.cableLabel,
		)),
		widget.NewCard("Mesh", "", container.NewVBox(
			ip.meshCheck,
			ip.meshLabel,
		)),
	)

	state.On(app.EventDocumentLoaded, func(_ interface{}) { ip.refresh() })
	state.On(app.EventTreeEdited, func(_ interface{}) { ip.refresh() })
	state.On(app.EventSubtreeView, func(_ interface{}) { ip.refresh() })
	state.On(app.EventModified, func(_ interface{}) { ip.updateModified() })
	state.On(app.EventDocumentSaved, func(_ interface{}) { ip.updateModified() })
	state.On(app.EventMeshChanged, func(_ interface{}) { ip.updateMesh() })

	ip.refresh()
	return ip
}

// Container returns the panel container.
func (ip *InfoPanel) Container() fyne.CanvasObject {
	return ip.container
}

func (ip *InfoPanel) refresh() {
	doc := ip.state.Document()
	if doc == nil {
		ip.nameLabel.SetText("Nothing loaded")
		ip.typeLabel.SetText("")
		ip.vertexLabel.SetText("")
		ip.pointLabel.SetText("")
		ip.rootLabel.SetText("")
		ip.cableLabel.SetText("")
		ip.updateModified()
		ip.updateMesh()
		return
	}

	ip.nameLabel.SetText(doc.Name())
	ip.vertexLabel.SetText(fmt.Sprintf("Vertices: %d", len(doc.VertexCoords())))

	if doc.HasTree() {
		ip.typeLabel.SetText("Reconstruction")
		ip.pointLabel.SetText(fmt.Sprintf("Pickable points: %d", len(doc.PointCoords())))

		tree := doc.Tree()
		if root, err := tree.Root(); err == nil {
			ip.rootLabel.SetText(fmt.Sprintf("Root vertex: %d", root))
		} else {
			ip.rootLabel.SetText("Root vertex: none")
		}
		masked := ip.state.ShowSubtree()
		length := tree.CableLength(masked) / 1000.0
		if masked {
			ip.cableLabel.SetText(fmt.Sprintf("Subtree cable: %.1f µm", length))
		} else {
			ip.cableLabel.SetText(fmt.Sprintf("Total cable: %.1f µm", length))
		}
	} else {
		ip.typeLabel.SetText("Point cloud")
		ip.pointLabel.SetText("")
		ip.rootLabel.SetText("")
		ip.cableLabel.SetText("")
	}

	ip.updateModified()
	ip.updateMesh()
}

func (ip *InfoPanel) updateModified() {
	if ip.state.Modified() {
		ip.modifiedLabel.SetText("Unsaved changes")
	} else {
		ip.modifiedLabel.SetText("")
	}
}

func (ip *InfoPanel) updateMesh() {
	ip.meshCheck.SetChecked(ip.state.ShowMesh())
	if mesh := ip.state.Mesh(); mesh != nil {
		ip.meshLabel.SetText(fmt.Sprintf("%s (%d edges)", mesh.Name, len(mesh.Segments)))
	} else {
		ip.meshLabel.SetText("No companion mesh")
	}
}
