// Tactile sensor tuning tool
//
// Captures one frame from the sensor (or loads a stored one) and opens a
// window with sliders for the crop, threshold and mask parameters. The
// parameters can be written back as a sensor profile on exit.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"tactile-image-processing/internal/config"
	"tactile-image-processing/internal/core"
	"tactile-image-processing/internal/gui"
	"tactile-image-processing/internal/sensor"
	"tactile-image-processing/internal/tuning"
)

const (
	AppName    = "Tactile Image Tuning"
	AppID      = "com.tactile.image-tuning"
	AppVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", "", "Sensor profile (YAML)")
	source := flag.String("source", "", "Capture device index or stream URL")
	sensorType := flag.String("type", "", "Sensor type, selects the bbox preset")
	exposure := flag.Int("exposure", core.DefaultExposure, "Manual exposure")
	replay := flag.String("replay", "", "Tune against a stored frame instead of the camera")
	saveProfile := flag.String("save-profile", "", "Write the tuned profile here on exit")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	flag.Parse()

	logger := initLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
	}).Info("Starting " + AppName)

	// a .env file next to the binary may carry TACTILE_* overrides
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithError(err).Warn("Failed to read .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load sensor profile")
	}
	applyFlags(&cfg, *source, *sensorType, *exposure)

	if err := run(cfg, *replay, *saveProfile, logger); err != nil {
		logger.WithError(err).Error("Tuning failed")
		os.Exit(1)
	}

	logger.Info("Application shutting down gracefully")
}

func run(cfg core.Config, replay, saveProfile string, logger *logrus.Logger) error {
	var frames tuning.FrameSource
	if replay != "" {
		frames = sensor.NewReplaySensor(cfg, sensor.WithLogger(logger)).At(replay)
	} else {
		live, err := sensor.NewRealSensor(cfg, sensor.WithLogger(logger))
		if err != nil {
			return err
		}
		defer live.Close()
		frames = live
	}

	fyneApp := app.NewWithID(AppID)
	fyneApp.SetIcon(theme.DocumentIcon())
	fyneApp.Settings().SetTheme(theme.DefaultTheme())

	window := gui.NewWindow(fyneApp, logger)
	display := displayFunc(func(s *tuning.Session) error {
		if err := window.Run(s); err != nil {
			return err
		}
		if saveProfile == "" {
			return nil
		}
		if err := writeProfile(saveProfile, cfg, s.Config()); err != nil {
			return err
		}
		logger.WithField("filepath", saveProfile).Info("Profile saved")
		return nil
	})

	return tuning.NewApp(frames, display, logger).Run()
}

// displayFunc adapts a function to tuning.Display
type displayFunc func(s *tuning.Session) error

func (f displayFunc) Run(s *tuning.Session) error {
	return f(s)
}

// applyFlags overrides profile values with explicitly set flags
func applyFlags(cfg *core.Config, source, sensorType string, exposure int) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source = source
		case "type":
			cfg.Type = sensorType
			cfg.ApplyPreset()
		case "exposure":
			cfg.SetExposure(exposure)
		}
	})
}

// writeProfile stores base with the tuned crop, threshold and mask
func writeProfile(path string, base, tuned core.Config) error {
	out := base.Clone()
	out.BBox = tuned.BBox
	out.Thresh = tuned.Thresh
	out.CircleMaskRadius = tuned.CircleMaskRadius

	data, err := config.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
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
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
