// Package event holds the closed catalog of events a competition can hold and
// the identifiers used to address a scheduled block of one of them.
package event

import (
	"fmt"
	"strings"
)

// Event is an index into the fixed catalog.
type Event int

// Catalog order is part of the contract: cost tables are indexed by it.
const (
	E333 Event = iota
	E222
	E444
	E555
	E666
	E777
	E333OH
	E333FM
	E333BF
	E444BF
	E555BF
	Pyram
	Minx
	Sq1
	Skewb
	E333MBF
	Clock
)

// Count is the number of events in the catalog.
const Count = 17

// Format is the result type used to rank an event.
type Format int

const (
	FormatAverage Format = iota
	FormatSingle
)

func (f Format) String() string {
	if f == FormatSingle {
		return "single"
	}
	return "average"
}

var codes = [Count]string{
	"333", "222", "444", "555", "666", "777", "333oh", "333fm", "333bf",
	"444bf", "555bf", "pyram", "minx", "sq1", "skewb", "333mbf", "clock",
}

var formats = [Count]Format{
	FormatAverage, FormatAverage, FormatAverage, FormatAverage, FormatAverage,
	FormatAverage, FormatAverage, FormatAverage, FormatSingle, FormatSingle,
	FormatSingle, FormatAverage, FormatAverage, FormatAverage, FormatAverage,
	FormatSingle, FormatAverage,
}

// FromCode resolves a WCA event id. Unknown ids report false; callers filter
// them out.
func FromCode(code string) (Event, bool) {
	for i, c := range codes {
		if c == code {
			return Event(i), true
		}
	}
	return 0, false
}

// MustParse is FromCode for literals known to be in the catalog.
func MustParse(code string) Event {
	e, ok := FromCode(code)
	if !ok {
		panic(fmt.Sprintf("event: %q is not in the catalog", code))
	}
	return e
}

// All returns the catalog in index order.
func All() []Event {
	out := make([]Event, Count)
	for i := range out {
		out[i] = Event(i)
	}
	return out
}

// Valid reports whether e addresses a catalog entry.
func (e Event) Valid() bool { return e >= 0 && e < Count }

// Code is the WCA event id, e.g. "333bf".
func (e Event) Code() string {
	if !e.Valid() {
		return "invalid"
	}
	return codes[e]
}

func (e Event) String() string { return e.Code() }

// Format returns the result type the event is ranked by.
func (e Event) Format() Format {
	if !e.Valid() {
		return FormatAverage
	}
	return formats[e]
}

// Base maps blindfolded variants to the sighted event that governs scrambling
// for them. Every other event governs itself.
func (e Event) Base() Event {
	switch e {
	case E333BF, E333MBF:
		return E333
	case E444BF:
		return E444
	case E555BF:
		return E555
	default:
		return e
	}
}

// Identifier addresses one scheduled block of an event. Attempt is zero when
// the block covers the whole round.
type Identifier struct {
	Event   Event
	Attempt int
}

// String renders the identifier in activity-code form, e.g. "333mbf-a1".
func (id Identifier) String() string {
	if id.Attempt > 0 {
		return fmt.Sprintf("%s-a%d", id.Event.Code(), id.Attempt)
	}
	return id.Event.Code()
}

// Less orders identifiers by catalog index, then attempt.
func (id Identifier) Less(other Identifier) bool {
	if id.Event != other.Event {
		return id.Event < other.Event
	}
	return id.Attempt < other.Attempt
}

// ParseIdentifier accepts "<event>", "<event>-a<n>" and "<event>..<n>".
func ParseIdentifier(s string) (Identifier, error) {
	s = strings.TrimSpace(s)
	head, attempt := s, ""
	if i := strings.Index(s, ".."); i >= 0 {
		head, attempt = s[:i], s[i+2:]
	} else if i := strings.Index(s, "-"); i >= 0 {
		head, attempt = s[:i], s[i+1:]
		if !strings.HasPrefix(attempt, "a") {
			return Identifier{}, fmt.Errorf("%w: %q: expected -a<attempt>", ErrInvalidCode, s)
		}
		attempt = attempt[1:]
	}
	e, ok := FromCode(head)
	if !ok {
		return Identifier{}, fmt.Errorf("%w: %q", ErrUnknownEvent, head)
	}
	id := Identifier{Event: e}
	if attempt != "" {
		n, err := positive(attempt)
		if err != nil {
			return Identifier{}, fmt.Errorf("%w: %q: %v", ErrInvalidCode, s, err)
		}
		id.Attempt = n
	}
	return id, nil
}

// Set is the ordered list of identifiers that share one pre-activity. Several
// events land in one set when they share a cumulative time limit.
type Set []Identifier

// Equal compares two sets element-wise.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Contains reports whether id is a member of s.
func (s Set) Contains(id Identifier) bool {
	for _, x := range s {
		if x == id {
			return true
		}
	}
	return false
}

// Compare orders sets lexicographically by identifier.
func (s Set) Compare(other Set) int {
	for i := 0; i < len(s) && i < len(other); i++ {
		if s[i] == other[i] {
			continue
		}
		if s[i].Less(other[i]) {
			return -1
		}
		return 1
	}
	return len(s) - len(other)
}

// Events returns the distinct events of the set in order.
func (s Set) Events() []Event {
	out := make([]Event, 0, len(s))
	for _, id := range s {
		out = append(out, id.Event)
	}
	return out
}

// String joins the event codes with "/", e.g. "444bf/555bf".
func (s Set) String() string {
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = id.String()
	}
	return strings.Join(parts, "/")
}
