// internal/gui/canvas.go
// Frame display with the render title above it
package gui

import (
	"fmt"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ImageCanvas shows one frame at a time
type ImageCanvas struct {
	logger logrus.FieldLogger

	container *fyne.Container
	title     *widget.Label
	image     *canvas.Image
}

func NewImageCanvas(logger logrus.FieldLogger) *ImageCanvas {
	ic := &ImageCanvas{logger: logger}
	ic.initializeUI()
	return ic
}

func (ic *ImageCanvas) initializeUI() {
	placeholder := image.NewRGBA(image.Rect(0, 0, 200, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			placeholder.Set(x, y, color.RGBA{240, 240, 240, 255})
		}
	}

	ic.image = canvas.NewImageFromImage(placeholder)
	ic.image.FillMode = canvas.ImageFillContain
	ic.image.ScaleMode = canvas.ImageScalePixels
	ic.image.SetMinSize(fyne.NewSize(480, 480))

	ic.title = widget.NewLabel("")
	ic.title.Wrapping = fyne.TextWrapWord

	ic.container = container.NewBorder(ic.title, nil, nil, nil, ic.image)
}

func (ic *ImageCanvas) GetContainer() fyne.CanvasObject {
	return ic.container
}

// Show replaces the displayed frame and title. mat stays owned by the caller.
func (ic *ImageCanvas) Show(mat gocv.Mat, title string) error {
	if mat.Empty() {
		return fmt.Errorf("cannot display empty frame")
	}

	img, err := mat.ToImage()
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}

	ic.image.Image = img
	ic.image.Refresh()
	ic.title.SetText(title)

	ic.logger.WithFields(logrus.Fields{
		"width":  mat.Cols(),
		"height": mat.Rows(),
	}).Debug("Frame displayed")

	return nil
}

// Title returns the text above the frame
func (ic *ImageCanvas) Title() string {
	return ic.title.Text
}

// Bounds returns the size of the displayed frame
func (ic *ImageCanvas) Bounds() image.Rectangle {
	if ic.image.Image == nil {
		return image.Rectangle{}
	}
	return ic.image.Image.Bounds()
}
