// Tactile image transform pipeline built from ordered, registered steps
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"tactile-image-processing/internal/core"
)

// Step is one stage of the transform pipeline. A step reads only the options
// it recognizes and never mutates its input or the configuration.
type Step interface {
	Apply(input gocv.Mat, cfg core.Config) (gocv.Mat, error)
	Enabled(cfg core.Config) bool
	GetName() string
	GetDescription() string
}

var (
	steps     = make(map[string]Step)
	stepOrder []string
)

// Register appends a step to the end of the pipeline
func Register(name string, step Step) {
	if _, exists := steps[name]; !exists {
		stepOrder = append(stepOrder, name)
	}
	steps[name] = step
}

func Get(name string) (Step, bool) {
	step, exists := steps[name]
	return step, exists
}

// Apply runs a single named step regardless of the pipeline order
func Apply(name string, input gocv.Mat, cfg core.Config) (gocv.Mat, error) {
	step, exists := steps[name]
	if !exists {
		return gocv.NewMat(), fmt.Errorf("step not found: %s", name)
	}

	return step.Apply(input, cfg)
}

// Order returns the step names in pipeline order
func Order() []string {
	out := make([]string, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// EnabledSteps returns the names of the steps cfg switches on, in order
func EnabledSteps(cfg core.Config) []string {
	var out []string
	for _, name := range stepOrder {
		if steps[name].Enabled(cfg) {
			out = append(out, name)
		}
	}
	return out
}

func init() {
	Register("crop", NewCrop())
	Register("gray", NewGrayscale())
	Register("adaptive_threshold", NewAdaptiveThreshold())
	Register("circle_mask", NewCircleMask())
	Register("resize", NewResize())
}
