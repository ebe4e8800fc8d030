// internal/gui/control_panel.go
// Sliders for the tuning controls
package gui

import (
	"fmt"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"tactile-image-processing/internal/tuning"
)

// ControlPanel holds one slider per tuning control. The crop sliders are
// vertical and sit beside the frame, the transform sliders run below it.
type ControlPanel struct {
	sliders  map[tuning.Control]*widget.Slider
	values   map[tuning.Control]*widget.Label
	vertical *fyne.Container
	bottom   *fyne.Container

	onChanged func(tuning.Control, float64)
}

func NewControlPanel(specs []tuning.ControlSpec) *ControlPanel {
	cp := &ControlPanel{
		sliders: make(map[tuning.Control]*widget.Slider),
		values:  make(map[tuning.Control]*widget.Label),
	}

	var vertical, horizontal []fyne.CanvasObject
	for _, spec := range specs {
		slider, column := cp.newSlider(spec)
		cp.sliders[spec.Control] = slider
		if spec.Vertical {
			vertical = append(vertical, column)
		} else {
			horizontal = append(horizontal, column)
		}
	}

	cp.vertical = container.NewGridWithColumns(len(vertical), vertical...)
	cp.bottom = container.NewVBox(horizontal...)
	return cp
}

func (cp *ControlPanel) newSlider(spec tuning.ControlSpec) (*widget.Slider, fyne.CanvasObject) {
	slider := widget.NewSlider(spec.Min, spec.Max)
	// the slider snaps to multiples of Step from zero, so ranges not
	// starting on a multiple are left to the session to snap
	if spec.Step > 0 && math.Mod(spec.Min, spec.Step) == 0 {
		slider.Step = spec.Step
	} else {
		slider.Step = 1
	}
	slider.Value = spec.Init

	value := widget.NewLabel(formatValue(spec.Init))
	cp.values[spec.Control] = value

	control := spec.Control
	slider.OnChanged = func(v float64) {
		value.SetText(formatValue(v))
		if cp.onChanged != nil {
			cp.onChanged(control, v)
		}
	}

	name := widget.NewLabel(control.String())
	if spec.Vertical {
		slider.Orientation = widget.Vertical
		return slider, container.NewBorder(name, value, nil, nil, slider)
	}
	return slider, container.NewBorder(nil, nil, name, value, slider)
}

// SetOnChanged registers the callback run on every slider move
func (cp *ControlPanel) SetOnChanged(fn func(tuning.Control, float64)) {
	cp.onChanged = fn
}

// Slider returns the slider for c, nil if there is none
func (cp *ControlPanel) Slider(c tuning.Control) *widget.Slider {
	return cp.sliders[c]
}

func (cp *ControlPanel) Vertical() fyne.CanvasObject {
	return cp.vertical
}

func (cp *ControlPanel) Bottom() fyne.CanvasObject {
	return cp.bottom
}

// Disable freezes every slider
func (cp *ControlPanel) Disable() {
	for _, s := range cp.sliders {
		s.Disable()
	}
}

func formatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}
