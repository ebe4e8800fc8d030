// Package sensor acquires tactile frames from a live camera, a simulated
// embodiment or stored files, and normalizes them with the transform
// pipeline.
//
// The variants share the Sensor capability but not a constructor: a
// RealSensor owns a capture device, a SimSensor borrows an embodiment, and a
// ReplaySensor holds nothing but its configuration.
package sensor

import (
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"tactile-image-processing/internal/algorithms"
	"tactile-image-processing/internal/core"
	"tactile-image-processing/internal/io"
)

// Sensor acquires raw frames and processes them into normalized frames.
// Every returned Mat is freshly allocated and owned by the caller.
type Sensor interface {
	// Read acquires one raw frame
	Read() (gocv.Mat, error)

	// Process reads a frame and runs the transform pipeline on it. When
	// outfile is non-empty the result is also written there; the returned
	// frame is the same either way.
	Process(outfile string) (gocv.Mat, error)
}

// Embodiment supplies simulated tactile frames
type Embodiment interface {
	GetTactileObservation() (gocv.Mat, error)
}

// EmbodimentFunc adapts a plain function to Embodiment
type EmbodimentFunc func() (gocv.Mat, error)

func (f EmbodimentFunc) GetTactileObservation() (gocv.Mat, error) {
	return f()
}

// Option customizes sensor construction
type Option func(*options)

type options struct {
	logger logrus.FieldLogger
	opener DeviceOpener
}

// WithLogger sets the logger used by the sensor
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDeviceOpener replaces the capture backend used by RealSensor
func WithDeviceOpener(opener DeviceOpener) Option {
	return func(o *options) {
		o.opener = opener
	}
}

func buildOptions(opts []Option) options {
	o := options{
		opener: OpenCaptureDevice,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		o.logger = l
	}
	return o
}

// processFrame runs the pipeline on raw and optionally saves the result.
// raw is always released. Transform errors are returned unchanged.
func processFrame(raw gocv.Mat, cfg core.Config, loader *io.ImageLoader, outfile string) (gocv.Mat, error) {
	defer raw.Close()

	out, err := algorithms.ProcessImage(raw, cfg)
	if err != nil {
		return out, err
	}

	if outfile != "" {
		if err := loader.SaveImage(out, outfile); err != nil {
			out.Close()
			return gocv.NewMat(), err
		}
	}

	return out, nil
}

// checkOutfile rejects unusable output paths before a frame is acquired
func checkOutfile(loader *io.ImageLoader, outfile string) error {
	if outfile == "" {
		return nil
	}
	return loader.ValidateOutputPath(outfile)
}
