package core

import "errors"

var (
	// ErrDeviceUnavailable means the capture device could not be opened
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrAcquisition means an open source returned no frame at all, e.g.
	// the device was disconnected or the stream ended
	ErrAcquisition = errors.New("acquisition failure")

	// ErrEmptyFrame means the acquisition call succeeded but the frame holds
	// no pixels
	ErrEmptyFrame = errors.New("empty frame")

	// ErrFileLoad means a stored frame is missing or unreadable
	ErrFileLoad = errors.New("file load error")
)
