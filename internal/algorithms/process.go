package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"tactile-image-processing/internal/core"
)

// ProcessImage runs every step cfg enables, in pipeline order, on a copy of
// frame. It keeps no state between calls: identical inputs give identical
// output. The caller owns the returned Mat.
func ProcessImage(frame gocv.Mat, cfg core.Config) (gocv.Mat, error) {
	if err := core.ValidateImage(frame); err != nil {
		return gocv.NewMat(), fmt.Errorf("transform input: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return gocv.NewMat(), fmt.Errorf("transform config: %w", err)
	}

	current := frame.Clone()
	for _, name := range stepOrder {
		step := steps[name]
		if !step.Enabled(cfg) {
			continue
		}

		result, err := step.Apply(current, cfg)
		current.Close()
		if err != nil {
			result.Close()
			return gocv.NewMat(), fmt.Errorf("%s: %w", name, err)
		}
		current = result
	}

	return current, nil
}
