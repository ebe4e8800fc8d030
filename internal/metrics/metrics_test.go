package metrics

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestForegroundRatio(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 10, 10, gocv.MatTypeCV8UC1)
	defer frame.Close()

	// top half white
	top := frame.Region(image.Rect(0, 0, 10, 5))
	top.SetTo(gocv.NewScalar(255, 0, 0, 0))
	top.Close()

	ratio, err := NewEvaluator().Calculate("foreground_ratio", frame)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ratio, 1e-9)
}

func TestMeanIntensityColor(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 100, 100, 0), 4, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()

	mean, err := NewEvaluator().Calculate("mean_intensity", frame)
	require.NoError(t, err)
	assert.InDelta(t, 100, mean, 1)
}

func TestSharpnessFlatFrame(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(50, 0, 0, 0), 16, 16, gocv.MatTypeCV8UC1)
	defer frame.Close()

	sharpness, err := NewEvaluator().Calculate("sharpness", frame)
	require.NoError(t, err)
	assert.InDelta(t, 0, sharpness, 1e-9)
}

func TestCalculateAll(t *testing.T) {
	e := NewEvaluator()
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 4, 4, gocv.MatTypeCV8UC1)
	defer frame.Close()

	all := e.CalculateAll(frame)
	assert.Len(t, all, len(e.Names()))
	assert.Equal(t, []string{"foreground_ratio", "mean_intensity", "sharpness"}, e.Names())

	empty := gocv.NewMat()
	defer empty.Close()
	assert.Empty(t, e.CalculateAll(empty))

	_, err := e.Calculate("psnr", frame)
	assert.Error(t, err)
}
