package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// ForegroundRatio is the share of non-zero pixels; on a thresholded tactile
// frame it tracks how much of the pin pattern survives
type ForegroundRatio struct{}

func NewForegroundRatio() *ForegroundRatio {
	return &ForegroundRatio{}
}

func (f *ForegroundRatio) Calculate(frame gocv.Mat) (float64, error) {
	if frame.Empty() {
		return 0, fmt.Errorf("frame is empty")
	}

	gray := ensureGrayscale(frame)
	defer closeIfCopy(gray, frame)

	total := gray.Rows() * gray.Cols()
	return float64(gocv.CountNonZero(gray)) / float64(total), nil
}

func (f *ForegroundRatio) GetName() string {
	return "Foreground Ratio"
}

func (f *ForegroundRatio) GetRange() (float64, float64) {
	return 0, 1
}

// MeanIntensity is the average gray level
type MeanIntensity struct{}

func NewMeanIntensity() *MeanIntensity {
	return &MeanIntensity{}
}

func (m *MeanIntensity) Calculate(frame gocv.Mat) (float64, error) {
	if frame.Empty() {
		return 0, fmt.Errorf("frame is empty")
	}

	gray := ensureGrayscale(frame)
	defer closeIfCopy(gray, frame)

	return gray.Mean().Val1, nil
}

func (m *MeanIntensity) GetName() string {
	return "Mean Intensity"
}

func (m *MeanIntensity) GetRange() (float64, float64) {
	return 0, 255
}

// Sharpness is the variance of the Laplacian
type Sharpness struct{}

func NewSharpness() *Sharpness {
	return &Sharpness{}
}

func (s *Sharpness) Calculate(frame gocv.Mat) (float64, error) {
	if frame.Empty() {
		return 0, fmt.Errorf("frame is empty")
	}

	gray := ensureGrayscale(frame)
	defer closeIfCopy(gray, frame)

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(gray, &laplacian, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	defer mean.Close()
	stdDev := gocv.NewMat()
	defer stdDev.Close()
	gocv.MeanStdDev(laplacian, &mean, &stdDev)

	sd := stdDev.GetDoubleAt(0, 0)
	return math.Pow(sd, 2), nil
}

func (s *Sharpness) GetName() string {
	return "Sharpness"
}

func (s *Sharpness) GetRange() (float64, float64) {
	return 0, math.Inf(1)
}

func ensureGrayscale(input gocv.Mat) gocv.Mat {
	if input.Channels() == 1 {
		return input
	}
	gray := gocv.NewMat()
	gocv.CvtColor(input, &gray, gocv.ColorBGRToGray)
	return gray
}

func closeIfCopy(m, original gocv.Mat) {
	if m.Ptr() != original.Ptr() {
		m.Close()
	}
}
