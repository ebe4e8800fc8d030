// Sensor configuration shared by every acquisition variant and the transform pipeline
package core

import (
	"fmt"
	"strconv"
)

const (
	DefaultSource   = "0"
	DefaultExposure = -7
)

// BBox is a crop region expressed as (x_min, y_min, x_max, y_max)
type BBox struct {
	XMin int `koanf:"x_min" yaml:"x_min"`
	YMin int `koanf:"y_min" yaml:"y_min"`
	XMax int `koanf:"x_max" yaml:"x_max"`
	YMax int `koanf:"y_max" yaml:"y_max"`
}

// NewBBox builds a BBox from the four-tuple order used by sensor profiles
func NewBBox(xMin, yMin, xMax, yMax int) *BBox {
	return &BBox{XMin: xMin, YMin: yMin, XMax: xMax, YMax: yMax}
}

func (b BBox) Width() int  { return b.XMax - b.XMin }
func (b BBox) Height() int { return b.YMax - b.YMin }

func (b BBox) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", b.XMin, b.YMin, b.XMax, b.YMax)
}

// Thresh holds the adaptive threshold parameters: neighbourhood block size and
// the constant subtracted from the weighted mean
type Thresh struct {
	BlockSize int     `koanf:"block_size" yaml:"block_size"`
	C         float64 `koanf:"c" yaml:"c"`
}

// Dims is the output size of the optional final resize
type Dims struct {
	Width  int `koanf:"width" yaml:"width"`
	Height int `koanf:"height" yaml:"height"`
}

// Config is the set of recognized sensor options. Sensors keep their own
// copy; the transform pipeline only ever reads it.
type Config struct {
	Type             string  `koanf:"type" yaml:"type"`
	Source           string  `koanf:"source" yaml:"source"`
	Exposure         *int    `koanf:"exposure" yaml:"exposure,omitempty"`
	Gray             bool    `koanf:"gray" yaml:"gray"`
	BBox             *BBox   `koanf:"bbox" yaml:"bbox,omitempty"`
	Thresh           *Thresh `koanf:"thresh" yaml:"thresh,omitempty"`
	CircleMaskRadius int     `koanf:"circle_mask_radius" yaml:"circle_mask_radius"`
	Dims             *Dims   `koanf:"dims" yaml:"dims,omitempty"`
}

// BBoxPresets are the crop regions of the known sensor bodies
var BBoxPresets = map[string]BBox{
	"mini":     {XMin: 320 - 160, YMin: 240 - 160 + 25, XMax: 320 + 160, YMax: 240 + 160 + 25},
	"midi":     {XMin: 320 - 220 + 10, YMin: 240 - 220 - 20, XMax: 320 + 220 + 10, YMax: 240 + 220 - 20},
	"aerial-A": {XMin: 95, YMin: 40, XMax: 535, YMax: 480},
}

// Clone returns a deep copy so that no pointer field is shared with c
func (c Config) Clone() Config {
	out := c
	if c.Exposure != nil {
		v := *c.Exposure
		out.Exposure = &v
	}
	if c.BBox != nil {
		b := *c.BBox
		out.BBox = &b
	}
	if c.Thresh != nil {
		t := *c.Thresh
		out.Thresh = &t
	}
	if c.Dims != nil {
		d := *c.Dims
		out.Dims = &d
	}
	return out
}

// ExposureOrDefault returns the configured exposure or DefaultExposure
func (c Config) ExposureOrDefault() int {
	if c.Exposure == nil {
		return DefaultExposure
	}
	return *c.Exposure
}

// SetExposure stores v as the manual exposure level
func (c *Config) SetExposure(v int) {
	c.Exposure = &v
}

// SourceOrDefault returns the configured source or DefaultSource
func (c Config) SourceOrDefault() string {
	if c.Source == "" {
		return DefaultSource
	}
	return c.Source
}

// DeviceID resolves the source to what the capture backend expects: an
// integer device index when the source is numeric, the raw string otherwise
func (c Config) DeviceID() interface{} {
	src := c.SourceOrDefault()
	if id, err := strconv.Atoi(src); err == nil {
		return id
	}
	return src
}

// ApplyPreset sets BBox from the named preset when no bbox is configured
func (c *Config) ApplyPreset() {
	if c.BBox != nil {
		return
	}
	if preset, ok := BBoxPresets[c.Type]; ok {
		c.BBox = &preset
	}
}

// Validate checks the pipeline options for values the transforms cannot use
func (c Config) Validate() error {
	if b := c.BBox; b != nil {
		if b.XMin < 0 || b.YMin < 0 {
			return fmt.Errorf("bbox has negative origin: %s", b)
		}
		if b.XMax <= b.XMin || b.YMax <= b.YMin {
			return fmt.Errorf("bbox is empty or inverted: %s", b)
		}
	}

	if t := c.Thresh; t != nil {
		if t.BlockSize < 3 || t.BlockSize%2 == 0 {
			return fmt.Errorf("thresh block size must be odd and >= 3, got %d", t.BlockSize)
		}
	}

	if c.CircleMaskRadius < 0 {
		return fmt.Errorf("circle mask radius must not be negative, got %d", c.CircleMaskRadius)
	}

	if d := c.Dims; d != nil && (d.Width <= 0 || d.Height <= 0) {
		return fmt.Errorf("invalid dims: %dx%d", d.Width, d.Height)
	}

	return nil
}
