// internal/gui/info_panel.go
// Frame statistics for the current render
package gui

import (
	"fmt"
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// InfoPanel lists the statistics of the displayed render
type InfoPanel struct {
	container *fyne.Container
	content   *fyne.Container
	current   map[string]float64
}

func NewInfoPanel() *InfoPanel {
	ip := &InfoPanel{current: make(map[string]float64)}
	ip.content = container.NewVBox(widget.NewLabel("Move a slider to process the frame."))
	ip.container = container.NewVBox(widget.NewCard("Frame statistics", "", ip.content))
	return ip
}

func (ip *InfoPanel) GetContainer() fyne.CanvasObject {
	return ip.container
}

func (ip *InfoPanel) UpdateMetrics(stats map[string]float64) {
	ip.current = make(map[string]float64, len(stats))
	for k, v := range stats {
		ip.current[k] = v
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	ip.content.RemoveAll()
	for _, name := range names {
		ip.content.Add(widget.NewLabel(fmt.Sprintf("%s: %.3f", name, stats[name])))
	}
	ip.content.Refresh()
}

// Metrics returns the statistics on display
func (ip *InfoPanel) Metrics() map[string]float64 {
	return ip.current
}
