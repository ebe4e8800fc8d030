// Headless tactile capture
//
// Live mode reads -n frames from the sensor and normalizes each one, writing
// them when -out is given. Replay mode (positional arguments) normalizes
// stored frames into -out-dir.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"tactile-image-processing/internal/config"
	"tactile-image-processing/internal/core"
	"tactile-image-processing/internal/metrics"
	"tactile-image-processing/internal/sensor"
)

const AppVersion = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Sensor profile (YAML)")
	source := flag.String("source", "", "Capture device index or stream URL")
	sensorType := flag.String("type", "", "Sensor type, selects the bbox preset")
	exposure := flag.Int("exposure", core.DefaultExposure, "Manual exposure")
	count := flag.Int("n", 1, "Number of live frames to capture")
	out := flag.String("out", "", "Output file for live frames, numbered when -n > 1")
	outDir := flag.String("out-dir", "", "Output directory for replayed frames")
	fresh := flag.Bool("fresh", false, "Drop the device-buffered frame before every read")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	flag.Parse()

	logger := initLogger(*debugMode)
	logger.WithField("version", AppVersion).Info("Starting tactile capture")

	// a .env file next to the binary may carry TACTILE_* overrides
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithError(err).Warn("Failed to read .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load sensor profile")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source = *source
		case "type":
			cfg.Type = *sensorType
			cfg.ApplyPreset()
		case "exposure":
			cfg.SetExposure(*exposure)
		}
	})

	c := &capturer{
		logger:    logger,
		evaluator: metrics.NewEvaluator(),
	}

	if inputs := flag.Args(); len(inputs) > 0 {
		err = c.replay(cfg, inputs, *outDir)
	} else {
		err = c.live(cfg, *count, *out, *fresh)
	}
	if err != nil {
		logger.WithError(err).Error("Capture failed")
		os.Exit(1)
	}
}

type capturer struct {
	logger    logrus.FieldLogger
	evaluator *metrics.Evaluator
}

func (c *capturer) live(cfg core.Config, count int, out string, fresh bool) error {
	if count < 1 {
		return fmt.Errorf("frame count must be positive, got %d", count)
	}

	s, err := sensor.NewRealSensor(cfg, sensor.WithLogger(c.logger))
	if err != nil {
		return err
	}
	defer s.Close()

	for i := 0; i < count; i++ {
		outfile := numberedPath(out, i, count)

		var frame gocv.Mat
		if fresh {
			frame, err = c.processFresh(s, outfile)
		} else {
			frame, err = s.Process(outfile)
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		c.report(frame, logrus.Fields{"frame": i, "outfile": outfile})
		frame.Close()
	}
	return nil
}

// processFresh drops the buffered frame first, then processes the next one
func (c *capturer) processFresh(s *sensor.RealSensor, outfile string) (gocv.Mat, error) {
	stale, err := s.Read()
	if err != nil {
		return stale, err
	}
	stale.Close()
	return s.Process(outfile)
}

func (c *capturer) replay(cfg core.Config, inputs []string, outDir string) error {
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	r := sensor.NewReplaySensor(cfg, sensor.WithLogger(c.logger))
	for _, in := range inputs {
		outfile := replayOutput(in, outDir)
		frame, err := r.ProcessFile(in, outfile)
		if err != nil {
			return err
		}
		c.report(frame, logrus.Fields{"input": in, "outfile": outfile})
		frame.Close()
	}
	return nil
}

func (c *capturer) report(frame gocv.Mat, fields logrus.Fields) {
	fields["width"] = frame.Cols()
	fields["height"] = frame.Rows()
	for name, value := range c.evaluator.CalculateAll(frame) {
		fields[name] = value
	}
	c.logger.WithFields(fields).Info("Frame processed")
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
