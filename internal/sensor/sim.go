package sensor

import (
	"fmt"

	"gocv.io/x/gocv"

	"tactile-image-processing/internal/core"
	"tactile-image-processing/internal/io"
)

// SimSensor reads frames from a simulated embodiment. The embodiment decides
// frame content and timing; the sensor does no buffering.
type SimSensor struct {
	cfg        core.Config
	embodiment Embodiment
	loader     *io.ImageLoader
}

// NewSimSensor copies cfg and keeps a reference to embodiment
func NewSimSensor(cfg core.Config, embodiment Embodiment, opts ...Option) *SimSensor {
	o := buildOptions(opts)
	return &SimSensor{
		cfg:        cfg.Clone(),
		embodiment: embodiment,
		loader:     io.NewImageLoader(o.logger),
	}
}

// Read asks the embodiment for one observation. Embodiment errors are
// returned as is.
func (s *SimSensor) Read() (gocv.Mat, error) {
	frame, err := s.embodiment.GetTactileObservation()
	if err != nil {
		return frame, err
	}
	if frame.Empty() {
		frame.Close()
		return gocv.NewMat(), fmt.Errorf("%w: embodiment observation", core.ErrEmptyFrame)
	}
	return frame, nil
}

// Process reads one observation and normalizes it
func (s *SimSensor) Process(outfile string) (gocv.Mat, error) {
	if err := checkOutfile(s.loader, outfile); err != nil {
		return gocv.NewMat(), err
	}

	raw, err := s.Read()
	if err != nil {
		return raw, err
	}

	return processFrame(raw, s.cfg, s.loader, outfile)
}

// Config returns a copy of the sensor configuration
func (s *SimSensor) Config() core.Config {
	return s.cfg.Clone()
}
