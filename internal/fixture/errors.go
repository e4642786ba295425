package fixture

import "errors"

var (
	ErrUnknownEvent = errors.New("fixture: unknown event")
	ErrNoEvents     = errors.New("fixture: no events")
	ErrBadConfig    = errors.New("fixture: invalid configuration")
)
