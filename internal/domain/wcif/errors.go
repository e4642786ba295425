package wcif

import "errors"

var (
	ErrDecode  = errors.New("decode competition")
	ErrEncode  = errors.New("encode competition")
	ErrBadDate = errors.New("invalid date")
)
