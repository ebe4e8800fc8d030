package sensor

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Device is the capture handle a RealSensor owns exclusively
type Device interface {
	// Read grabs the next frame into m. It returns false when the device
	// delivered nothing, e.g. after a disconnect or at end of stream.
	Read(m *gocv.Mat) bool

	// Set applies a capture property
	Set(prop gocv.VideoCaptureProperties, value float64)

	IsOpened() bool
	Close() error
}

// DeviceOpener opens a device from a source: an int device index or a
// path/URL string
type DeviceOpener func(source interface{}) (Device, error)

// OpenCaptureDevice opens an OpenCV video capture
func OpenCaptureDevice(source interface{}) (Device, error) {
	vc, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return nil, err
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("capture %v did not open", source)
	}
	return &captureDevice{vc: vc}, nil
}

type captureDevice struct {
	vc *gocv.VideoCapture
}

func (d *captureDevice) Read(m *gocv.Mat) bool {
	return d.vc.Read(m)
}

func (d *captureDevice) Set(prop gocv.VideoCaptureProperties, value float64) {
	d.vc.Set(prop, value)
}

func (d *captureDevice) IsOpened() bool {
	return d.vc.IsOpened()
}

func (d *captureDevice) Close() error {
	return d.vc.Close()
}
