// Frame statistics reported while tuning and capturing
package metrics

import (
	"fmt"
	"sort"

	"gocv.io/x/gocv"
)

// Metric computes a single statistic of one frame
type Metric interface {
	// Calculate computes the metric value
	Calculate(frame gocv.Mat) (float64, error)

	// GetName returns the metric name
	GetName() string

	// GetRange returns the value range (min, max)
	GetRange() (float64, float64)
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with the default metrics registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}

	e.Register("foreground_ratio", NewForegroundRatio())
	e.Register("mean_intensity", NewMeanIntensity())
	e.Register("sharpness", NewSharpness())

	return e
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, frame gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}

	return metric.Calculate(frame)
}

// CalculateAll calculates all registered metrics, skipping those that fail
func (e *Evaluator) CalculateAll(frame gocv.Mat) map[string]float64 {
	results := make(map[string]float64)

	for name, metric := range e.metrics {
		if value, err := metric.Calculate(frame); err == nil {
			results[name] = value
		}
	}

	return results
}

// Names returns the registered metric names, sorted
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
