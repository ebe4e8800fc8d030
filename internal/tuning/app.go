package tuning

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// FrameSource supplies the single reference capture
type FrameSource interface {
	Read() (gocv.Mat, error)
}

// Display hosts a session: it shows renders and feeds control changes to
// the session until the operator closes it
type Display interface {
	Run(s *Session) error
}

// App wires a frame source to a display
type App struct {
	source  FrameSource
	display Display
	logger  logrus.FieldLogger
	opts    []SessionOption
}

func NewApp(source FrameSource, display Display, logger logrus.FieldLogger, opts ...SessionOption) *App {
	return &App{
		source:  source,
		display: display,
		logger:  logger,
		opts:    append([]SessionOption{WithLogger(logger)}, opts...),
	}
}

// Run captures one frame, starts a session on it and blocks in the display.
// No further frame is captured.
func (a *App) Run() error {
	frame, err := a.source.Read()
	if err != nil {
		return fmt.Errorf("capture reference frame: %w", err)
	}
	defer frame.Close()

	session, err := NewSession(frame, a.opts...)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := a.display.Run(session); err != nil {
		a.logger.WithError(err).Error("Tuning stopped")
		return err
	}

	final := session.Params()
	a.logger.WithFields(logrus.Fields{
		"bounds":      final.NormalizedBounds().String(),
		"block_size":  int(final.ThreshBlock),
		"constant":    final.ThreshConst,
		"mask_radius": int(final.MaskRadius),
		"renders":     session.Renders(),
	}).Info("Tuning finished")

	return nil
}
