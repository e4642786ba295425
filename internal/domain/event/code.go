package event

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is a parsed schedule activity code "<event>-r<round>[-g<group>][-a<attempt>]".
type Code struct {
	Event   Event
	Round   int
	Group   int
	Attempt int
}

// Identifier drops the round and group.
func (c Code) Identifier() Identifier {
	return Identifier{Event: c.Event, Attempt: c.Attempt}
}

// String renders the code back in schedule form.
func (c Code) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s-r%d", c.Event.Code(), c.Round)
	if c.Group > 0 {
		fmt.Fprintf(&b, "-g%d", c.Group)
	}
	if c.Attempt > 0 {
		fmt.Fprintf(&b, "-a%d", c.Attempt)
	}
	return b.String()
}

// ParseCode parses a schedule activity code. Codes of the "other-*" family
// return ErrOther so callers can skip them.
func ParseCode(s string) (Code, error) {
	parts := strings.Split(s, "-")
	if len(parts) == 0 || parts[0] == "" {
		return Code{}, fmt.Errorf("%w: %q", ErrInvalidCode, s)
	}
	if parts[0] == "other" {
		return Code{}, fmt.Errorf("%w: %q", ErrOther, s)
	}
	e, ok := FromCode(parts[0])
	if !ok {
		return Code{}, fmt.Errorf("%w: %q", ErrUnknownEvent, parts[0])
	}
	c := Code{Event: e}
	for _, p := range parts[1:] {
		if len(p) < 2 {
			return Code{}, fmt.Errorf("%w: %q", ErrInvalidCode, s)
		}
		n, err := positive(p[1:])
		if err != nil {
			return Code{}, fmt.Errorf("%w: %q: %v", ErrInvalidCode, s, err)
		}
		switch p[0] {
		case 'r':
			c.Round = n
		case 'g':
			c.Group = n
		case 'a':
			c.Attempt = n
		default:
			return Code{}, fmt.Errorf("%w: %q: unknown segment %q", ErrInvalidCode, s, p)
		}
	}
	if c.Round == 0 {
		return Code{}, fmt.Errorf("%w: %q: missing round", ErrInvalidCode, s)
	}
	return c, nil
}

// RoundID returns the event part of a round id such as "333bf-r1".
func RoundID(roundID string) (Event, int, error) {
	c, err := ParseCode(roundID)
	if err != nil {
		return 0, 0, err
	}
	return c.Event, c.Round, nil
}

func positive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}
