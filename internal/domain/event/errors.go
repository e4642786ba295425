package event

import "errors"

// Sentinel kinds for catalog lookups and activity codes.
var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrInvalidCode  = errors.New("invalid activity code")
	ErrOther        = errors.New("non-event activity")
)
