package metrics

import "errors"

var (
	ErrNoTextfile    = errors.New("metrics: empty textfile path")
	ErrWriteTextfile = errors.New("metrics: write textfile")
)
