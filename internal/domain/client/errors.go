package client

import "errors"

var (
	ErrNotFound           = errors.New("client not found")
	ErrClientNameRequired = errors.New("client name is required")
	ErrInvalidProgress    = errors.New("progress must be between 0 and 100")
	ErrProgressRegression = errors.New("progress cannot decrease")
	ErrNoteNotFound       = errors.New("sticky note not found")
	ErrLogMessageRequired = errors.New("log message is required")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrStaleWrite         = errors.New("client was modified concurrently")
)
