// Package gui is the desktop surface of the tuning loop
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"tactile-image-processing/internal/tuning"
)

// Window shows tuning renders and turns slider moves into session changes.
// It implements tuning.Display.
type Window struct {
	app    fyne.App
	window fyne.Window
	logger logrus.FieldLogger

	session  *tuning.Session
	canvas   *ImageCanvas
	controls *ControlPanel
	info     *InfoPanel

	closed bool
	err    error
}

func NewWindow(app fyne.App, logger logrus.FieldLogger) *Window {
	window := app.NewWindow("Tactile image tuning")
	window.Resize(fyne.NewSize(1000, 800))
	window.CenterOnScreen()

	w := &Window{
		app:    app,
		window: window,
		logger: logger,
		canvas: NewImageCanvas(logger),
		info:   NewInfoPanel(),
	}

	window.SetCloseIntercept(func() {
		w.logger.Info("Tuning window closed")
		w.close()
	})

	return w
}

// Run attaches the session and blocks until the window is closed. The first
// render error closes the window and is returned.
func (w *Window) Run(s *tuning.Session) error {
	if err := w.Attach(s); err != nil {
		return err
	}

	w.window.ShowAndRun()
	return w.err
}

// Attach builds the sliders for s and shows its reference frame
func (w *Window) Attach(s *tuning.Session) error {
	w.session = s
	w.controls = NewControlPanel(s.Specs())
	w.controls.SetOnChanged(w.onControlChanged)

	side := container.NewBorder(nil, w.info.GetContainer(), nil, nil, w.controls.Vertical())
	split := container.NewHSplit(w.canvas.GetContainer(), side)
	split.SetOffset(0.7)

	w.window.SetContent(container.NewBorder(nil, w.controls.Bottom(), nil, nil, split))

	original := s.Original()
	defer original.Frame.Close()

	if err := w.canvas.Show(original.Frame, original.Label); err != nil {
		return fmt.Errorf("show reference frame: %w", err)
	}
	return nil
}

func (w *Window) onControlChanged(c tuning.Control, v float64) {
	if w.closed {
		return
	}

	render, err := w.session.Set(c, v)
	if err != nil {
		w.fail(fmt.Errorf("%s: %w", c, err))
		return
	}
	defer render.Frame.Close()

	if err := w.canvas.Show(render.Frame, render.Label); err != nil {
		w.fail(err)
		return
	}
	w.info.UpdateMetrics(render.Stats)
}

func (w *Window) fail(err error) {
	w.logger.WithError(err).Error("Render failed, closing window")
	if w.err == nil {
		w.err = err
	}
	w.controls.Disable()
	w.close()
}

func (w *Window) close() {
	if w.closed {
		return
	}
	w.closed = true
	w.window.Close()
}

// Err returns the error that closed the window, if any
func (w *Window) Err() error {
	return w.err
}

// Closed reports whether the window has been closed
func (w *Window) Closed() bool {
	return w.closed
}

func (w *Window) Canvas() *ImageCanvas {
	return w.canvas
}

func (w *Window) Controls() *ControlPanel {
	return w.controls
}

func (w *Window) Info() *InfoPanel {
	return w.info
}

var _ tuning.Display = (*Window)(nil)

// Slider is a convenience used by callers scripting the window
func (w *Window) Slider(c tuning.Control) *widget.Slider {
	if w.controls == nil {
		return nil
	}
	return w.controls.Slider(c)
}
