// Pipeline steps using GoCV standard APIs
package algorithms

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"tactile-image-processing/internal/core"
)

// Crop cuts the configured bounding box out of the frame, clamped to its bounds
type Crop struct{}

func NewCrop() *Crop {
	return &Crop{}
}

func (c *Crop) Apply(input gocv.Mat, cfg core.Config) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	rect := ClampRect(*cfg.BBox, input.Cols(), input.Rows())
	if rect.Empty() {
		return gocv.NewMat(), fmt.Errorf("crop region %s is empty for %dx%d frame",
			cfg.BBox, input.Cols(), input.Rows())
	}

	view := input.Region(rect)
	defer view.Close()
	return view.Clone(), nil
}

func (c *Crop) Enabled(cfg core.Config) bool {
	return cfg.BBox != nil
}

func (c *Crop) GetName() string {
	return "Crop"
}

func (c *Crop) GetDescription() string {
	return "Crop to the sensor bounding box"
}

// ClampRect converts b into an image rectangle lying inside a cols x rows frame
func ClampRect(b core.BBox, cols, rows int) image.Rectangle {
	return image.Rect(
		clamp(b.XMin, 0, cols), clamp(b.YMin, 0, rows),
		clamp(b.XMax, 0, cols), clamp(b.YMax, 0, rows),
	).Intersect(image.Rect(0, 0, cols, rows))
}

// Grayscale collapses color frames to a single channel
type Grayscale struct{}

func NewGrayscale() *Grayscale {
	return &Grayscale{}
}

func (g *Grayscale) Apply(input gocv.Mat, cfg core.Config) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}
	return toGrayscale(input)
}

func (g *Grayscale) Enabled(cfg core.Config) bool {
	return cfg.Gray
}

func (g *Grayscale) GetName() string {
	return "Grayscale"
}

func (g *Grayscale) GetDescription() string {
	return "Convert BGR frames to single channel"
}

// AdaptiveThreshold using GoCV built-in adaptive threshold
type AdaptiveThreshold struct{}

func NewAdaptiveThreshold() *AdaptiveThreshold {
	return &AdaptiveThreshold{}
}

func (a *AdaptiveThreshold) Apply(input gocv.Mat, cfg core.Config) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	gray, err := toGrayscale(input)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	blockSize := cfg.Thresh.BlockSize
	if blockSize < 3 {
		return gocv.NewMat(), fmt.Errorf("block size must be at least 3, got %d", blockSize)
	}
	// Ensure block size is odd
	if blockSize%2 == 0 {
		blockSize++
	}

	output := gocv.NewMat()
	gocv.AdaptiveThreshold(gray, &output, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary,
		blockSize, float32(cfg.Thresh.C))
	if output.Empty() {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("adaptive threshold produced no output")
	}

	return output, nil
}

func (a *AdaptiveThreshold) Enabled(cfg core.Config) bool {
	return cfg.Thresh != nil
}

func (a *AdaptiveThreshold) GetName() string {
	return "Adaptive Threshold"
}

func (a *AdaptiveThreshold) GetDescription() string {
	return "Gaussian adaptive thresholding to a binary image"
}

// CircleMask blanks every pixel outside a circle centred in the frame
type CircleMask struct{}

func NewCircleMask() *CircleMask {
	return &CircleMask{}
}

func (m *CircleMask) Apply(input gocv.Mat, cfg core.Config) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	rows, cols := input.Rows(), input.Cols()

	mask := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC1)
	defer mask.Close()
	gocv.Circle(&mask, image.Pt(cols/2, rows/2), cfg.CircleMaskRadius, color.RGBA{255, 255, 255, 0}, -1)

	output := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, input.Type())
	input.CopyToWithMask(&output, mask)

	return output, nil
}

func (m *CircleMask) Enabled(cfg core.Config) bool {
	return cfg.CircleMaskRadius > 0
}

func (m *CircleMask) GetName() string {
	return "Circle Mask"
}

func (m *CircleMask) GetDescription() string {
	return "Exclude the sensor rim outside the mask radius"
}

// Resize scales the frame to the configured dims
type Resize struct{}

func NewResize() *Resize {
	return &Resize{}
}

func (r *Resize) Apply(input gocv.Mat, cfg core.Config) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	output := gocv.NewMat()
	gocv.Resize(input, &output, image.Pt(cfg.Dims.Width, cfg.Dims.Height), 0, 0, gocv.InterpolationArea)
	if output.Empty() {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("resize to %dx%d failed", cfg.Dims.Width, cfg.Dims.Height)
	}

	return output, nil
}

func (r *Resize) Enabled(cfg core.Config) bool {
	return cfg.Dims != nil
}

func (r *Resize) GetName() string {
	return "Resize"
}

func (r *Resize) GetDescription() string {
	return "Area-interpolated resize to the output dims"
}

func toGrayscale(input gocv.Mat) (gocv.Mat, error) {
	switch input.Channels() {
	case 1:
		return input.Clone(), nil
	case 3:
		gray := gocv.NewMat()
		gocv.CvtColor(input, &gray, gocv.ColorBGRToGray)
		return gray, nil
	case 4:
		gray := gocv.NewMat()
		gocv.CvtColor(input, &gray, gocv.ColorBGRAToGray)
		return gray, nil
	default:
		return gocv.NewMat(), fmt.Errorf("unsupported channel count: %d", input.Channels())
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
