// Image loading and saving for stored tactile frames
package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"tactile-image-processing/internal/core"
)

var (
	readableFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}
	// processed frames feed downstream perception code, so only lossless
	// encoders are accepted on output
	losslessFormats = []string{".png", ".tiff", ".tif", ".bmp"}
)

// ImageLoader handles image file operations
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// LoadImage reads a color frame from disk. A missing, unsupported or
// undecodable file yields an error wrapping core.ErrFileLoad, never an empty
// Mat with a nil error.
func (il *ImageLoader) LoadImage(path string) (gocv.Mat, error) {
	return il.load(path, gocv.IMReadColor)
}

// LoadImageGrayscale reads a single-channel frame from disk
func (il *ImageLoader) LoadImageGrayscale(path string) (gocv.Mat, error) {
	return il.load(path, gocv.IMReadGrayScale)
}

func (il *ImageLoader) load(path string, flags gocv.IMReadFlag) (gocv.Mat, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	if !isFormat(path, readableFormats) {
		return gocv.NewMat(), fmt.Errorf("%w: unsupported image format: %s", core.ErrFileLoad, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", core.ErrFileLoad, err)
	}
	if info.IsDir() {
		return gocv.NewMat(), fmt.Errorf("%w: %s is a directory", core.ErrFileLoad, path)
	}

	mat := gocv.IMRead(path, flags)
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("%w: failed to decode image: %s", core.ErrFileLoad, path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Debug("Image loaded")

	return mat, nil
}

// SaveImage writes mat to path, creating or overwriting the file
func (il *ImageLoader) SaveImage(mat gocv.Mat, path string) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	if mat.Empty() {
		return fmt.Errorf("cannot save empty image")
	}

	if !isFormat(path, losslessFormats) {
		return fmt.Errorf("unsupported output format (lossless %v only): %s", losslessFormats, path)
	}

	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("failed to save image: %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Debug("Image saved")

	return nil
}

// ValidateOutputPath reports whether path can receive a processed frame
func (il *ImageLoader) ValidateOutputPath(path string) error {
	if !isFormat(path, losslessFormats) {
		return fmt.Errorf("unsupported output format (lossless %v only): %s", losslessFormats, path)
	}
	return nil
}

func (il *ImageLoader) GetSupportedFormats() []string {
	return []string{"JPEG", "PNG", "TIFF", "BMP"}
}

func isFormat(path string, formats []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range formats {
		if ext == format {
			return true
		}
	}
	return false
}
