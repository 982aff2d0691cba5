package viewport

import (
	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"neuron-tracer/internal/app"
	"neuron-tracer/pkg/colorutil"
)

const (
	scaleBarHeight   = 3
	scaleBarGap      = 4
	minScaleBarWidth = 2
	maxScaleBarWidth = 500
)

// ScaleBar shows a horizontal bar whose on-screen length tracks the
// configured world length at the current camera distance, with the length
// captioned in the configured units. It hides itself until the viewport has
// drawn once.
type ScaleBar struct {
	widget.BaseWidget

	bar   *fynecanvas.Rectangle
	label *fynecanvas.Text

	settings      app.ScaleSettings
	worldPerPixel float64
}

// NewScaleBar returns a hidden scale bar; it appears once SetWorldPerPixel
// reports a drawable viewport.
func NewScaleBar(settings app.ScaleSettings) *ScaleBar {
	s := &ScaleBar{
		bar:      fynecanvas.NewRectangle(colorutil.ScaleBar),
		label:    fynecanvas.NewText(settings.Label(), colorutil.ScaleBar),
		settings: settings,
	}
	s.label.TextSize = 12
	s.ExtendBaseWidget(s)
	return s
}

// SetSettings updates the world length and display units.
func (s *ScaleBar) SetSettings(settings app.ScaleSettings) {
	s.settings = settings
	s.label.Text = settings.Label()
	s.Refresh()
}

// SetWorldPerPixel updates the zoom factor the bar length is derived from.
func (s *ScaleBar) SetWorldPerPixel(wpp float64) {
	s.worldPerPixel = wpp
	s.Refresh()
}

// pixelLength returns the bar width for the current zoom, clamped so an
// extreme zoom cannot erase the bar or let it span the window.
func (s *ScaleBar) pixelLength() float32 {
	if s.worldPerPixel <= 0 || s.settings.LengthNM <= 0 {
		return 0
	}
	px := float64(s.settings.LengthNM) / s.worldPerPixel
	if px < minScaleBarWidth {
		px = minScaleBarWidth
	}
	if px > maxScaleBarWidth {
		px = maxScaleBarWidth
	}
	return float32(px)
}

// CreateRenderer implements fyne.Widget.
func (s *ScaleBar) CreateRenderer() fyne.WidgetRenderer {
	return &scaleBarRenderer{sb: s}
}

type scaleBarRenderer struct {
	sb *ScaleBar
}

func (r *scaleBarRenderer) Layout(size fyne.Size) {
	px := r.sb.pixelLength()
	labelSize := r.sb.label.MinSize()
	r.sb.label.Move(fyne.NewPos(0, 0))
	r.sb.label.Resize(labelSize)
	r.sb.bar.Move(fyne.NewPos(0, labelSize.Height+scaleBarGap))
	r.sb.bar.Resize(fyne.NewSize(px, scaleBarHeight))
}

func (r *scaleBarRenderer) MinSize() fyne.Size {
	px := r.sb.pixelLength()
	labelSize := r.sb.label.MinSize()
	w := labelSize.Width
	if px > w {
		w = px
	}
	return fyne.NewSize(w, labelSize.Height+scaleBarGap+scaleBarHeight)
}

func (r *scaleBarRenderer) Refresh() {
	hidden := r.sb.pixelLength() == 0
	if hidden {
		r.sb.bar.Hide()
		r.sb.label.Hide()
	} else {
		r.sb.bar.Show()
		r.sb.label.Show()
	}
	r.Layout(r.sb.Size())
	r.sb.bar.Refresh()
	r.sb.label.Refresh()
}

func (r *scaleBarRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.sb.label, r.sb.bar}
}

func (r *scaleBarRenderer) Destroy() {}
