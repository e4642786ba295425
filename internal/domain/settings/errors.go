package settings

import "errors"

var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrUnknownEvent    = errors.New("unknown event in settings")
	ErrUnknownStage    = errors.New("no stage configured for room")
)
