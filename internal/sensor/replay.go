package sensor

import (
	"gocv.io/x/gocv"

	"tactile-image-processing/internal/core"
	"tactile-image-processing/internal/io"
)

// ReplaySensor processes frames stored on disk. Input and output paths are
// always separate arguments.
type ReplaySensor struct {
	cfg    core.Config
	loader *io.ImageLoader
}

// NewReplaySensor copies cfg
func NewReplaySensor(cfg core.Config, opts ...Option) *ReplaySensor {
	o := buildOptions(opts)
	return &ReplaySensor{
		cfg:    cfg.Clone(),
		loader: io.NewImageLoader(o.logger),
	}
}

// ReadFile loads the frame stored at path. A missing or unreadable file
// yields an error wrapping core.ErrFileLoad.
func (s *ReplaySensor) ReadFile(path string) (gocv.Mat, error) {
	return s.loader.LoadImage(path)
}

// ProcessFile loads inPath and normalizes it. When outPath is non-empty the
// result is also written there.
func (s *ReplaySensor) ProcessFile(inPath, outPath string) (gocv.Mat, error) {
	if err := checkOutfile(s.loader, outPath); err != nil {
		return gocv.NewMat(), err
	}

	raw, err := s.ReadFile(inPath)
	if err != nil {
		return raw, err
	}

	return processFrame(raw, s.cfg, s.loader, outPath)
}

// At binds an input path, giving a Sensor that replays that file on every Read
func (s *ReplaySensor) At(path string) *ReplaySource {
	return &ReplaySource{sensor: s, path: path}
}

// Config returns a copy of the sensor configuration
func (s *ReplaySensor) Config() core.Config {
	return s.cfg.Clone()
}

// ReplaySource is a ReplaySensor bound to one stored frame
type ReplaySource struct {
	sensor *ReplaySensor
	path   string
}

func (r *ReplaySource) Read() (gocv.Mat, error) {
	return r.sensor.ReadFile(r.path)
}

// Process normalizes the bound frame; outfile names the output file
func (r *ReplaySource) Process(outfile string) (gocv.Mat, error) {
	return r.sensor.ProcessFile(r.path, outfile)
}

// Path returns the bound input path
func (r *ReplaySource) Path() string {
	return r.path
}

var (
	_ Sensor = (*RealSensor)(nil)
	_ Sensor = (*SimSensor)(nil)
	_ Sensor = (*ReplaySource)(nil)
)
