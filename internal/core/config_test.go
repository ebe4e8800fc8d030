package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCloneIsIndependent(t *testing.T) {
	orig := Config{
		Type:             "aerial-A",
		Source:           "4",
		Gray:             true,
		BBox:             NewBBox(95, 40, 535, 480),
		Thresh:           &Thresh{BlockSize: 61, C: 5},
		CircleMaskRadius: 200,
		Dims:             &Dims{Width: 128, Height: 128},
	}
	orig.SetExposure(-7)

	clone := orig.Clone()
	clone.SetExposure(-3)
	clone.BBox.XMin = 0
	clone.Thresh.BlockSize = 11
	clone.Dims.Width = 64

	assert.Equal(t, -7, orig.ExposureOrDefault())
	assert.Equal(t, 95, orig.BBox.XMin)
	assert.Equal(t, 61, orig.Thresh.BlockSize)
	assert.Equal(t, 128, orig.Dims.Width)
	assert.Equal(t, -3, clone.ExposureOrDefault())
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	assert.Equal(t, DefaultExposure, c.ExposureOrDefault())
	assert.Equal(t, DefaultSource, c.SourceOrDefault())
	assert.Equal(t, 0, c.DeviceID())

	c.Source = "4"
	assert.Equal(t, 4, c.DeviceID())

	c.Source = "/dev/video-tactile"
	assert.Equal(t, "/dev/video-tactile", c.DeviceID())
}

func TestApplyPreset(t *testing.T) {
	c := Config{Type: "aerial-A"}
	c.ApplyPreset()
	require.NotNil(t, c.BBox)
	assert.Equal(t, BBox{XMin: 95, YMin: 40, XMax: 535, YMax: 480}, *c.BBox)

	// an explicit bbox wins over the preset
	c = Config{Type: "mini", BBox: NewBBox(1, 2, 3, 4)}
	c.ApplyPreset()
	assert.Equal(t, BBox{XMin: 1, YMin: 2, XMax: 3, YMax: 4}, *c.BBox)

	c = Config{Type: "unknown"}
	c.ApplyPreset()
	assert.Nil(t, c.BBox)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "empty config", cfg: Config{}},
		{name: "valid pipeline options", cfg: Config{
			BBox:             NewBBox(10, 0, 50, 480),
			Thresh:           &Thresh{BlockSize: 61, C: 5},
			CircleMaskRadius: 200,
		}},
		{name: "inverted bbox", cfg: Config{BBox: NewBBox(50, 0, 10, 480)}, wantErr: true},
		{name: "negative bbox origin", cfg: Config{BBox: NewBBox(-1, 0, 10, 10)}, wantErr: true},
		{name: "even block size", cfg: Config{Thresh: &Thresh{BlockSize: 60}}, wantErr: true},
		{name: "block size too small", cfg: Config{Thresh: &Thresh{BlockSize: 1}}, wantErr: true},
		{name: "negative radius", cfg: Config{CircleMaskRadius: -1}, wantErr: true},
		{name: "zero dims", cfg: Config{Dims: &Dims{}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
