// Package tuning explores transform parameters against one frozen frame.
//
// A Session is captured once and then only reacts to control changes: every
// change crops the same reference frame and re-runs the transform, so tuning
// is reproducible rather than chasing a live image.
package tuning

import (
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"tactile-image-processing/internal/algorithms"
	"tactile-image-processing/internal/core"
	"tactile-image-processing/internal/metrics"
)

// State is the session state
type State int

const (
	Idle State = iota
	Rendering
)

func (s State) String() string {
	if s == Rendering {
		return "rendering"
	}
	return "idle"
}

// Transform is the image transform the session drives
type Transform func(frame gocv.Mat, cfg core.Config) (gocv.Mat, error)

// Render is one redraw: the processed crop and its description. The caller
// owns Frame.
type Render struct {
	Frame  gocv.Mat
	Label  string
	Params Params
	Bounds Bounds
	Stats  map[string]float64
}

// Session holds the reference frame and the current control values
type Session struct {
	id        string
	ref       *core.ReferenceFrame
	specs     []ControlSpec
	params    Params
	state     State
	transform Transform
	evaluator *metrics.Evaluator
	logger    logrus.FieldLogger
	renders   int
}

// SessionOption customizes a Session
type SessionOption func(*Session)

// WithTransform replaces the transform pipeline
func WithTransform(t Transform) SessionOption {
	return func(s *Session) {
		s.transform = t
	}
}

// WithLogger sets the session logger
func WithLogger(logger logrus.FieldLogger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession freezes a copy of frame. The controls start at their initial
// values and the session is Idle.
func NewSession(frame gocv.Mat, opts ...SessionOption) (*Session, error) {
	ref, err := core.NewReferenceFrame(frame)
	if err != nil {
		return nil, fmt.Errorf("reference frame: %w", err)
	}

	meta := ref.Metadata()
	specs := SpecsFor(meta.Width, meta.Height)

	s := &Session{
		id:        uuid.NewString(),
		ref:       ref,
		specs:     specs,
		params:    InitialParams(specs),
		state:     Idle,
		transform: algorithms.ProcessImage,
		evaluator: metrics.NewEvaluator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		s.logger = l
	}
	s.logger = s.logger.WithField("session", s.id)

	s.logger.WithFields(logrus.Fields{
		"width":    meta.Width,
		"height":   meta.Height,
		"channels": meta.Channels,
	}).Info("Tuning session started")

	return s, nil
}

// ID identifies the session in logs
func (s *Session) ID() string {
	return s.id
}

// Specs returns the control specs
func (s *Session) Specs() []ControlSpec {
	out := make([]ControlSpec, len(s.specs))
	copy(out, s.specs)
	return out
}

func (s *Session) Params() Params {
	return s.params
}

func (s *Session) State() State {
	return s.state
}

// Renders counts completed redraws
func (s *Session) Renders() int {
	return s.renders
}

// Original returns the unprocessed reference frame for the first display
func (s *Session) Original() Render {
	return Render{
		Frame:  s.ref.Clone(),
		Label:  "Original Image",
		Params: s.params,
		Bounds: s.params.NormalizedBounds(),
	}
}

// Set changes one control and redraws. The value is snapped to the control
// range and step. A transform failure is returned and ends the session.
func (s *Session) Set(c Control, value float64) (Render, error) {
	spec, ok := s.spec(c)
	if !ok {
		return Render{}, fmt.Errorf("unknown control: %v", c)
	}

	s.params.Set(c, spec.Snap(value))
	return s.Render()
}

// Render redraws the current parameters: sort the crop bounds, crop the
// reference, transform the crop
func (s *Session) Render() (Render, error) {
	s.state = Rendering
	defer func() { s.state = Idle }()
	start := time.Now()

	p := s.params
	bounds := p.NormalizedBounds()

	crop, err := s.ref.Region(image.Rect(bounds.XMin, bounds.YMin, bounds.XMax, bounds.YMax))
	if err != nil {
		return Render{}, fmt.Errorf("crop %s: %w", bounds, err)
	}
	defer crop.Close()

	cfg := core.Config{
		Thresh:           &core.Thresh{BlockSize: int(p.ThreshBlock), C: p.ThreshConst},
		CircleMaskRadius: int(p.MaskRadius),
	}

	out, err := s.transform(crop, cfg)
	if err != nil {
		return Render{}, err
	}

	stats := s.evaluator.CalculateAll(out)
	label := fmt.Sprintf("Thresh: (%d, %g), Mask radius: %d, BBox: %s",
		int(p.ThreshBlock), p.ThreshConst, int(p.MaskRadius), bounds)
	if ratio, ok := stats["foreground_ratio"]; ok {
		label += fmt.Sprintf(", Foreground: %.1f%%", ratio*100)
	}

	s.renders++
	s.logger.WithFields(logrus.Fields{
		"bounds":      bounds.String(),
		"block_size":  int(p.ThreshBlock),
		"constant":    p.ThreshConst,
		"mask_radius": int(p.MaskRadius),
		"render":      s.renders,
		"duration":    time.Since(start),
	}).Debug("Rendered")

	return Render{
		Frame:  out,
		Label:  label,
		Params: p,
		Bounds: bounds,
		Stats:  stats,
	}, nil
}

// Config returns the pipeline options matching the current controls, bbox
// included, ready to be written to a sensor profile
func (s *Session) Config() core.Config {
	p := s.params
	b := p.NormalizedBounds()
	return core.Config{
		BBox:             core.NewBBox(b.XMin, b.YMin, b.XMax, b.YMax),
		Thresh:           &core.Thresh{BlockSize: int(p.ThreshBlock), C: p.ThreshConst},
		CircleMaskRadius: int(p.MaskRadius),
	}
}

// Close releases the reference frame
func (s *Session) Close() {
	s.ref.Close()
}

func (s *Session) spec(c Control) (ControlSpec, bool) {
	for _, spec := range s.specs {
		if spec.Control == c {
			return spec, true
		}
	}
	return ControlSpec{}, false
}
