package sensor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"tactile-image-processing/internal/core"
)

type setCall struct {
	prop  gocv.VideoCaptureProperties
	value float64
}

// fakeDevice hands out 48x64 BGR frames whose blue channel holds the read
// count, unless constant is set
type fakeDevice struct {
	opened   bool
	constant bool
	reads    int
	failAt   int // first read number that returns false, 0 = never
	emptyAt  int // read number that returns true without pixels, 0 = never
	sets     []setCall
	closes   int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{opened: true}
}

func (d *fakeDevice) Read(m *gocv.Mat) bool {
	d.reads++
	if d.failAt > 0 && d.reads >= d.failAt {
		return false
	}
	if d.emptyAt == d.reads {
		return true
	}

	value := float64(d.reads)
	if d.constant {
		value = 90
	}
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, 30, 60, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.CopyTo(m)
	return true
}

func (d *fakeDevice) Set(prop gocv.VideoCaptureProperties, value float64) {
	d.sets = append(d.sets, setCall{prop: prop, value: value})
}

func (d *fakeDevice) IsOpened() bool { return d.opened }

func (d *fakeDevice) Close() error {
	d.closes++
	d.opened = false
	return nil
}

func (d *fakeDevice) setsOf(prop gocv.VideoCaptureProperties) []float64 {
	var out []float64
	for _, s := range d.sets {
		if s.prop == prop {
			out = append(out, s.value)
		}
	}
	return out
}

func openerFor(d *fakeDevice, gotSource *interface{}) DeviceOpener {
	return func(source interface{}) (Device, error) {
		if gotSource != nil {
			*gotSource = source
		}
		return d, nil
	}
}

func newTestRealSensor(t *testing.T, cfg core.Config, d *fakeDevice) *RealSensor {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s, err := NewRealSensor(cfg, WithDeviceOpener(openerFor(d, nil)), WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRealSensorConstruction(t *testing.T) {
	d := newFakeDevice()
	var source interface{}

	s, err := NewRealSensor(core.Config{}, WithDeviceOpener(openerFor(d, &source)))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 0, source, "default source is device 0")
	assert.Equal(t, WarmupFrames, d.reads, "warm-up discards happen before the first Read")
	require.Len(t, d.sets, 2)
	assert.Equal(t, setCall{gocv.VideoCaptureAutoExposure, 0}, d.sets[0])
	assert.Equal(t, setCall{gocv.VideoCaptureExposure, -7}, d.sets[1])

	frame, err := s.Read()
	require.NoError(t, err)
	defer frame.Close()
	assert.Equal(t, WarmupFrames+1, d.reads)
	assert.Equal(t, uint8(WarmupFrames+1), frame.GetVecbAt(0, 0)[0])
}

func TestRealSensorUsesConfiguredSourceAndExposure(t *testing.T) {
	d := newFakeDevice()
	var source interface{}

	cfg := core.Config{Source: "4"}
	cfg.SetExposure(-5)

	s, err := NewRealSensor(cfg, WithDeviceOpener(openerFor(d, &source)))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 4, source)
	assert.Equal(t, []float64{-5}, d.setsOf(gocv.VideoCaptureExposure))
}

func TestRealSensorDeviceUnavailable(t *testing.T) {
	failing := func(source interface{}) (Device, error) {
		return nil, errors.New("no such device")
	}

	s, err := NewRealSensor(core.Config{}, WithDeviceOpener(failing))
	assert.Nil(t, s)
	assert.ErrorIs(t, err, core.ErrDeviceUnavailable)
}

func TestRealSensorUnopenedHandleIsReleased(t *testing.T) {
	d := newFakeDevice()
	d.opened = false

	_, err := NewRealSensor(core.Config{}, WithDeviceOpener(openerFor(d, nil)))
	assert.ErrorIs(t, err, core.ErrDeviceUnavailable)
	assert.Equal(t, 1, d.closes)
	assert.Zero(t, d.reads)
}

func TestRealSensorWarmupFailureReleasesDevice(t *testing.T) {
	d := newFakeDevice()
	d.failAt = 3

	_, err := NewRealSensor(core.Config{}, WithDeviceOpener(openerFor(d, nil)))
	assert.ErrorIs(t, err, core.ErrAcquisition)
	assert.Equal(t, 1, d.closes)
}

func TestRealSensorReadFailuresAreDistinct(t *testing.T) {
	d := newFakeDevice()
	d.emptyAt = WarmupFrames + 1
	d.failAt = WarmupFrames + 3
	s := newTestRealSensor(t, core.Config{}, d)

	_, err := s.Read()
	assert.ErrorIs(t, err, core.ErrEmptyFrame)
	assert.NotErrorIs(t, err, core.ErrAcquisition)

	frame, err := s.Read()
	require.NoError(t, err, "sensor stays usable after a per-frame failure")
	frame.Close()

	_, err = s.Read()
	assert.ErrorIs(t, err, core.ErrAcquisition)
	assert.NotErrorIs(t, err, core.ErrEmptyFrame)
}

func TestRealSensorReadReturnsFreshMats(t *testing.T) {
	d := newFakeDevice()
	s := newTestRealSensor(t, core.Config{}, d)

	first, err := s.Read()
	require.NoError(t, err)
	defer first.Close()
	second, err := s.Read()
	require.NoError(t, err)
	defer second.Close()

	assert.NotEqual(t, first.Ptr(), second.Ptr())
	assert.Equal(t, uint8(WarmupFrames+1), first.GetVecbAt(0, 0)[0])
	assert.Equal(t, uint8(WarmupFrames+2), second.GetVecbAt(0, 0)[0])
}

func TestRealSensorReadFresh(t *testing.T) {
	d := newFakeDevice()
	s := newTestRealSensor(t, core.Config{}, d)

	frame, err := s.ReadFresh()
	require.NoError(t, err)
	defer frame.Close()

	assert.Equal(t, WarmupFrames+2, d.reads)
	assert.Equal(t, uint8(WarmupFrames+2), frame.GetVecbAt(0, 0)[0])
}

func TestRealSensorSetExposure(t *testing.T) {
	d := newFakeDevice()
	cfg := core.Config{Type: "aerial-A"}
	cfg.SetExposure(-7)
	s := newTestRealSensor(t, cfg, d)

	require.NoError(t, s.SetExposure(-4))
	assert.Equal(t, -4, s.Config().ExposureOrDefault())
	assert.Equal(t, []float64{-7, -4}, d.setsOf(gocv.VideoCaptureExposure))

	require.NoError(t, s.SetExposure(-2))
	assert.Equal(t, []float64{-7, -4, -2}, d.setsOf(gocv.VideoCaptureExposure))

	// the caller's configuration is never touched
	assert.Equal(t, -7, cfg.ExposureOrDefault())
}

func TestRealSensorConfigIsCopied(t *testing.T) {
	d := newFakeDevice()
	cfg := core.Config{BBox: core.NewBBox(0, 0, 32, 32)}
	s := newTestRealSensor(t, cfg, d)

	cfg.BBox.XMax = 1
	got := s.Config()
	assert.Equal(t, 32, got.BBox.XMax)

	got.BBox.XMax = 2
	assert.Equal(t, 32, s.Config().BBox.XMax)
}

func TestRealSensorProcess(t *testing.T) {
	d := newFakeDevice()
	d.constant = true
	cfg := core.Config{Gray: true, BBox: core.NewBBox(8, 8, 56, 40)}
	s := newTestRealSensor(t, cfg, d)

	dir := t.TempDir()
	chdir(t, dir)

	plain, err := s.Process("")
	require.NoError(t, err)
	defer plain.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "Process without outfile writes nothing")

	assert.Equal(t, 48, plain.Cols())
	assert.Equal(t, 32, plain.Rows())
	assert.Equal(t, 1, plain.Channels())

	out := filepath.Join(dir, "processed.png")
	saved, err := s.Process(out)
	require.NoError(t, err)
	defer saved.Close()

	assert.Equal(t, plain.ToBytes(), saved.ToBytes())

	onDisk := gocv.IMRead(out, gocv.IMReadGrayScale)
	defer onDisk.Close()
	require.False(t, onDisk.Empty())
	assert.Equal(t, saved.ToBytes(), onDisk.ToBytes())
}

func TestRealSensorProcessRejectsLossyOutfileBeforeReading(t *testing.T) {
	d := newFakeDevice()
	s := newTestRealSensor(t, core.Config{}, d)

	_, err := s.Process(filepath.Join(t.TempDir(), "frame.jpg"))
	assert.Error(t, err)
	assert.Equal(t, WarmupFrames, d.reads)
}

func TestRealSensorClose(t *testing.T) {
	d := newFakeDevice()
	s, err := NewRealSensor(core.Config{}, WithDeviceOpener(openerFor(d, nil)))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, d.closes)

	_, err = s.Read()
	assert.ErrorIs(t, err, core.ErrAcquisition)
	assert.Error(t, s.SetExposure(-3))
}
