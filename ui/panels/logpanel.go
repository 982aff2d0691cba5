package panels

import (
	"sync"

	"neuron-tracer/internal/applog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// maxLogLines bounds the console buffer; older lines scroll off.
const maxLogLines = 500

// LogPanel is the console dock fed by the application log.
type LogPanel struct {
	mu    sync.Mutex
	lines []string

	list      *widget.List
	container fyne.CanvasObject
}

// NewLogPanel creates the log console and registers it as a log sink.
func NewLogPanel() *LogPanel {
	lp := &LogPanel{}

	lp.list = widget.NewList(
		func() int {
			lp.mu.Lock()
			defer lp.mu.Unlock()
			return len(lp.lines)
		},
		func() fyne.CanvasObject {
			l := widget.NewLabel("")
			l.TextStyle = fyne.TextStyle{Monospace: true}
			return l
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			lp.mu.Lock()
			line := ""
			if id < len(lp.lines) {
				line = lp.lines[id]
			}
			lp.mu.Unlock()
			obj.(*widget.Label).SetText(line)
		},
	)

	clearButton := widget.NewButton("Clear", func() {
		lp.mu.Lock()
		lp.lines = nil
		lp.mu.Unlock()
		lp.list.Refresh()
	})

	lp.container = container.NewBorder(nil, container.NewHBox(clearButton), nil, nil, lp.list)

	applog.AddSink(lp.Append)
	return lp
}

// Container returns the panel container.
func (lp *LogPanel) Container() fyne.CanvasObject {
	return lp.container
}

// Append adds a log line. Runs on the logging goroutine; the buffer is
// guarded and the list refresh is safe off the UI thread.
func (lp *LogPanel) Append(line string) {
	lp.mu.Lock()
	lp.lines = append(lp.lines, line)
	if len(lp.lines) > maxLogLines {
		lp.lines = lp.lines[len(lp.lines)-maxLogLines:]
	}
	lp.mu.Unlock()
	lp.list.Refresh()
	lp.list.ScrollToBottom()
}
