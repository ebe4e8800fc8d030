package sensor

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"tactile-image-processing/internal/core"
	"tactile-image-processing/internal/io"
)

// WarmupFrames is the number of frames discarded after the device opens, so
// the driver's auto-adjustment transient has settled before the first Read
const WarmupFrames = 5

// RealSensor reads frames from a live camera.
//
// Some devices buffer one stale frame internally, so a Read may return the
// frame captured before the previous Read. Callers that need the freshest
// frame use ReadFresh at the cost of half the throughput.
//
// Reads have no timeout: a hung device blocks the caller.
type RealSensor struct {
	mu     sync.Mutex
	cfg    core.Config
	device Device
	loader *io.ImageLoader
	logger logrus.FieldLogger
	closed bool
}

// NewRealSensor opens the configured source, switches the device to manual
// exposure and discards WarmupFrames frames. cfg is copied. On any failure
// the device is released and an error wrapping core.ErrDeviceUnavailable or
// core.ErrAcquisition is returned.
func NewRealSensor(cfg core.Config, opts ...Option) (*RealSensor, error) {
	o := buildOptions(opts)
	own := cfg.Clone()
	source := own.DeviceID()
	logger := o.logger.WithField("source", source)

	device, err := o.opener(source)
	if err != nil {
		return nil, fmt.Errorf("%w: open %v: %v", core.ErrDeviceUnavailable, source, err)
	}
	if device == nil || !device.IsOpened() {
		if device != nil {
			device.Close()
		}
		return nil, fmt.Errorf("%w: open %v", core.ErrDeviceUnavailable, source)
	}

	s := &RealSensor{
		cfg:    own,
		device: device,
		loader: io.NewImageLoader(o.logger),
		logger: logger,
	}

	// turn off auto exposure before the manual value so the driver default
	// never applies
	exposure := own.ExposureOrDefault()
	device.Set(gocv.VideoCaptureAutoExposure, 0)
	device.Set(gocv.VideoCaptureExposure, float64(exposure))

	if err := s.warmup(); err != nil {
		device.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"exposure": exposure,
		"type":     own.Type,
		"warmup":   WarmupFrames,
	}).Info("Sensor ready")

	return s, nil
}

func (s *RealSensor) warmup() error {
	scratch := gocv.NewMat()
	defer scratch.Close()

	for i := 0; i < WarmupFrames; i++ {
		if !s.device.Read(&scratch) {
			return fmt.Errorf("%w: warm-up read %d of %d", core.ErrAcquisition, i+1, WarmupFrames)
		}
	}
	return nil
}

// Read issues exactly one device read. A device that delivers nothing yields
// core.ErrAcquisition; a delivered frame without pixels yields
// core.ErrEmptyFrame.
func (s *RealSensor) Read() (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// ReadFresh discards one frame and then reads, bypassing a device-side one
// frame buffer
func (s *RealSensor) ReadFresh() (gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stale, err := s.readLocked()
	if err != nil {
		return stale, err
	}
	stale.Close()

	return s.readLocked()
}

func (s *RealSensor) readLocked() (gocv.Mat, error) {
	if s.closed {
		return gocv.NewMat(), fmt.Errorf("%w: sensor closed", core.ErrAcquisition)
	}

	frame := gocv.NewMat()
	if !s.device.Read(&frame) {
		frame.Close()
		return gocv.NewMat(), fmt.Errorf("%w: device %v returned no frame", core.ErrAcquisition, s.cfg.DeviceID())
	}
	if frame.Empty() {
		frame.Close()
		return gocv.NewMat(), fmt.Errorf("%w: device %v", core.ErrEmptyFrame, s.cfg.DeviceID())
	}

	return frame, nil
}

// Process reads one frame and normalizes it with the sensor configuration
func (s *RealSensor) Process(outfile string) (gocv.Mat, error) {
	if err := checkOutfile(s.loader, outfile); err != nil {
		return gocv.NewMat(), err
	}

	raw, err := s.Read()
	if err != nil {
		return raw, err
	}

	return processFrame(raw, s.Config(), s.loader, outfile)
}

// SetExposure stores the new manual exposure and applies it to the device.
// Frames already captured are unaffected.
func (s *RealSensor) SetExposure(exposure int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("set exposure: sensor closed")
	}

	s.cfg.SetExposure(exposure)
	s.device.Set(gocv.VideoCaptureExposure, float64(s.cfg.ExposureOrDefault()))
	s.logger.WithField("exposure", exposure).Debug("Exposure updated")

	return nil
}

// Config returns a copy of the sensor configuration
func (s *RealSensor) Config() core.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Close releases the device. Further reads fail with core.ErrAcquisition.
func (s *RealSensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debug("Releasing device")
	return s.device.Close()
}
