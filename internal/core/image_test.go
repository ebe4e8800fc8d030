package core

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestReferenceFrameIsFrozen(t *testing.T) {
	src := gocv.NewMatWithSize(480, 600, gocv.MatTypeCV8UC3)
	defer src.Close()

	ref, err := NewReferenceFrame(src)
	require.NoError(t, err)
	defer ref.Close()

	// mutating the source after construction must not reach the reference
	src.SetUCharAt(0, 0, 200)

	clone := ref.Clone()
	defer clone.Close()
	assert.Equal(t, uint8(0), clone.GetUCharAt(0, 0))

	meta := ref.Metadata()
	assert.Equal(t, 600, meta.Width)
	assert.Equal(t, 480, meta.Height)
	assert.Equal(t, 3, meta.Channels)
}

func TestReferenceFrameRegion(t *testing.T) {
	src := gocv.NewMatWithSize(480, 600, gocv.MatTypeCV8UC1)
	defer src.Close()

	ref, err := NewReferenceFrame(src)
	require.NoError(t, err)
	defer ref.Close()

	region, err := ref.Region(image.Rect(10, 0, 50, 480))
	require.NoError(t, err)
	defer region.Close()
	assert.Equal(t, 40, region.Cols())
	assert.Equal(t, 480, region.Rows())

	_, err = ref.Region(image.Rect(10, 10, 10, 20))
	assert.Error(t, err)

	_, err = ref.Region(image.Rect(0, 0, 601, 10))
	assert.Error(t, err)
}

func TestReferenceFrameRejectsEmpty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := NewReferenceFrame(empty)
	assert.Error(t, err)
}

func TestReferenceFrameClose(t *testing.T) {
	src := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC1)
	defer src.Close()

	ref, err := NewReferenceFrame(src)
	require.NoError(t, err)
	ref.Close()
	ref.Close()

	clone := ref.Clone()
	defer clone.Close()
	assert.True(t, clone.Empty())

	_, err = ref.Region(image.Rect(0, 0, 2, 2))
	assert.Error(t, err)
}
