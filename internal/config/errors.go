package config

import "errors"

var (
	ErrInvalidConfig = errors.New("heats: invalid config")
	ErrLoadConfig    = errors.New("heats: load config")
	// ErrUnknownEvent is wrapped together with ErrInvalidConfig when an event
	// keyed option names a code outside the catalog.
	ErrUnknownEvent = errors.New("unknown event")
)
