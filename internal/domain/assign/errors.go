package assign

import "errors"

var (
	ErrInfeasible    = errors.New("infeasible instance")
	ErrAlreadyRan    = errors.New("assignment already ran")
	ErrNoCompetition = errors.New("no competition")
)
