// Frame metadata and the frozen reference frame used by the tuning loop
package core

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// FrameMetadata contains frame information
type FrameMetadata struct {
	Width    int
	Height   int
	Channels int
	Type     gocv.MatType
}

// MetadataOf describes mat without copying it
func MetadataOf(mat gocv.Mat) FrameMetadata {
	if mat.Empty() {
		return FrameMetadata{}
	}
	return FrameMetadata{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
	}
}

// ReferenceFrame holds a single frame that never changes after construction.
// Accessors hand out clones so callers cannot disturb it.
type ReferenceFrame struct {
	mu       sync.RWMutex
	original gocv.Mat
	metadata FrameMetadata
	closed   bool
}

// NewReferenceFrame validates mat and keeps a private clone of it
func NewReferenceFrame(mat gocv.Mat) (*ReferenceFrame, error) {
	if err := ValidateImage(mat); err != nil {
		return nil, err
	}

	return &ReferenceFrame{
		original: mat.Clone(),
		metadata: MetadataOf(mat),
	}, nil
}

// Clone returns a copy of the frozen frame
func (rf *ReferenceFrame) Clone() gocv.Mat {
	rf.mu.RLock()
	defer rf.mu.RUnlock()

	if rf.closed {
		return gocv.NewMat()
	}
	return rf.original.Clone()
}

// Region returns a copy of the rectangle r of the frozen frame. r must already
// lie inside the frame.
func (rf *ReferenceFrame) Region(r image.Rectangle) (gocv.Mat, error) {
	rf.mu.RLock()
	defer rf.mu.RUnlock()

	if rf.closed {
		return gocv.NewMat(), fmt.Errorf("reference frame released")
	}
	if r.Empty() {
		return gocv.NewMat(), fmt.Errorf("empty region: %v", r)
	}

	bounds := image.Rect(0, 0, rf.metadata.Width, rf.metadata.Height)
	if !r.In(bounds) {
		return gocv.NewMat(), fmt.Errorf("region %v outside frame %v", r, bounds)
	}

	view := rf.original.Region(r)
	defer view.Close()
	return view.Clone(), nil
}

// Metadata returns frame information
func (rf *ReferenceFrame) Metadata() FrameMetadata {
	rf.mu.RLock()
	defer rf.mu.RUnlock()
	return rf.metadata
}

// Close releases the frame
func (rf *ReferenceFrame) Close() {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.closed {
		return
	}
	rf.original.Close()
	rf.closed = true
}

// ValidateImage validates an OpenCV Mat for basic requirements
func ValidateImage(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("image is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	channels := mat.Channels()
	if channels < 1 || channels > 4 {
		return fmt.Errorf("unsupported channel count: %d", channels)
	}

	// Check for reasonable size limits (prevent memory issues)
	const maxDimension = 16384
	if mat.Cols() > maxDimension || mat.Rows() > maxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), maxDimension)
	}

	return nil
}
