package tuning

import (
	"fmt"
	"math"
)

// Control identifies one of the seven tuning controls
type Control int

const (
	XMin Control = iota
	XMax
	YMin
	YMax
	ThreshBlock
	ThreshConst
	MaskRadius
)

// Controls lists every control in display order
var Controls = []Control{XMin, XMax, YMin, YMax, ThreshBlock, ThreshConst, MaskRadius}

func (c Control) String() string {
	switch c {
	case XMin:
		return "X Min"
	case XMax:
		return "X Max"
	case YMin:
		return "Y Min"
	case YMax:
		return "Y Max"
	case ThreshBlock:
		return "Threshold 1 blocksize"
	case ThreshConst:
		return "Threshold 2 constant"
	case MaskRadius:
		return "Circle Mask Radius"
	default:
		return fmt.Sprintf("Control(%d)", int(c))
	}
}

// ControlSpec describes the range of a control
type ControlSpec struct {
	Control  Control
	Min      float64
	Max      float64
	Init     float64
	Step     float64
	Vertical bool
}

// Snap moves v onto the nearest step inside the range
func (cs ControlSpec) Snap(v float64) float64 {
	if cs.Step > 0 {
		v = cs.Min + math.Round((v-cs.Min)/cs.Step)*cs.Step
	}
	return math.Max(cs.Min, math.Min(cs.Max, v))
}

// bboxStep is the pixel granularity of the crop controls
const bboxStep = 5

// SpecsFor returns the control specs for a width x height reference frame.
// The crop controls start at the full frame.
func SpecsFor(width, height int) []ControlSpec {
	w, h := float64(width), float64(height)
	return []ControlSpec{
		{Control: XMin, Min: 0, Max: w, Init: 0, Step: bboxStep, Vertical: true},
		{Control: XMax, Min: 0, Max: w, Init: w, Step: bboxStep, Vertical: true},
		{Control: YMin, Min: 0, Max: h, Init: 0, Step: bboxStep, Vertical: true},
		{Control: YMax, Min: 0, Max: h, Init: h, Step: bboxStep, Vertical: true},
		{Control: ThreshBlock, Min: 3, Max: 201, Init: 61, Step: 2},
		{Control: ThreshConst, Min: -21, Max: 99, Init: 5, Step: 1},
		{Control: MaskRadius, Min: 10, Max: 400, Init: 200, Step: 1},
	}
}

// Params is the current value of every control
type Params struct {
	XMin, XMax, YMin, YMax float64
	ThreshBlock            float64
	ThreshConst            float64
	MaskRadius             float64
}

// InitialParams returns the Init value of every spec
func InitialParams(specs []ControlSpec) Params {
	var p Params
	for _, spec := range specs {
		p.Set(spec.Control, spec.Init)
	}
	return p
}

func (p Params) Get(c Control) float64 {
	switch c {
	case XMin:
		return p.XMin
	case XMax:
		return p.XMax
	case YMin:
		return p.YMin
	case YMax:
		return p.YMax
	case ThreshBlock:
		return p.ThreshBlock
	case ThreshConst:
		return p.ThreshConst
	case MaskRadius:
		return p.MaskRadius
	}
	return 0
}

func (p *Params) Set(c Control, v float64) {
	switch c {
	case XMin:
		p.XMin = v
	case XMax:
		p.XMax = v
	case YMin:
		p.YMin = v
	case YMax:
		p.YMax = v
	case ThreshBlock:
		p.ThreshBlock = v
	case ThreshConst:
		p.ThreshConst = v
	case MaskRadius:
		p.MaskRadius = v
	}
}

// Bounds is the crop rectangle with each axis pair sorted, so the result is
// the same whichever slider of a pair was moved past the other
type Bounds struct {
	XMin, XMax, YMin, YMax int
}

// NormalizedBounds sorts the crop controls per axis
func (p Params) NormalizedBounds() Bounds {
	xMin, xMax := math.Min(p.XMin, p.XMax), math.Max(p.XMin, p.XMax)
	yMin, yMax := math.Min(p.YMin, p.YMax), math.Max(p.YMin, p.YMax)
	return Bounds{XMin: int(xMin), XMax: int(xMax), YMin: int(yMin), YMax: int(yMax)}
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", b.XMin, b.XMax, b.YMin, b.YMax)
}
