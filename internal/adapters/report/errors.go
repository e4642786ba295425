package report

import "errors"

var (
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrUnknownActivity = errors.New("schedule activity not found")
	ErrUnknownPerson   = errors.New("person not found")
	ErrMissingSchedule = errors.New("wcif output needs the input competition")
)
