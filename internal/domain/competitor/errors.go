package competitor

import "errors"

var (
	ErrNotAccepted  = errors.New("registration not accepted")
	ErrNoRegistrant = errors.New("person has no registrant id")
)
