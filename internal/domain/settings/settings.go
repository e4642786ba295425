// Package settings holds the per-event cost coefficients and the per-room
// overrides that drive activity derivation.
package settings

import (
	"fmt"
	"math"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/okian/heats/internal/domain/event"
)

var defaultScrambleCost = [event.Count]float64{
	0.15, 0.15, 0.20, 0.20, 0.20, 0.20, 0.15, 0.00, 0.10,
	0.07, 0.07, 0.15, 0.20, 0.20, 0.15, 0.20, 0.20,
}

var defaultJudgeCost = [event.Count]float64{
	0.75, 0.75, 0.75, 0.75, 0.65, 0.65, 0.75, 0.00, 0.80,
	0.60, 0.60, 0.75, 0.75, 0.75, 0.75, 0.25, 0.75,
}

var defaultStaffMultiplier = [event.Count]float64{
	1.0, 0.9, 1.1, 1.3, 1.5, 1.5, 1.1, 0.0, 1.3,
	1.7, 2.5, 0.9, 1.5, 1.0, 0.9, 3.0, 1.2,
}

// Stage is one physical competing area within a room.
type Stage struct {
	Label    string
	Capacity int
}

// Room is the set of stages configured for one schedule room.
type Room struct {
	Stages []Stage
}

// Size is the combined capacity of all stages in the room.
func (r Room) Size() int {
	total := 0
	for _, s := range r.Stages {
		total += s.Capacity
	}
	return total
}

// Settings is read-only once derivation starts.
type Settings struct {
	scrambleCost    [event.Count]float64
	judgeCost       [event.Count]float64
	staffMultiplier [event.Count]float64

	rooms        []Room
	defaultStage int
	noScram      map[event.Identifier]struct{}
	noJudge      map[event.Identifier]struct{}
	minGroups    map[event.Identifier]int
}

// New returns settings with the default cost tables and no rooms.
func New(opts ...Option) *Settings {
	s := &Settings{
		scrambleCost:    defaultScrambleCost,
		judgeCost:       defaultJudgeCost,
		staffMultiplier: defaultStaffMultiplier,
		noScram:         map[event.Identifier]struct{}{},
		noJudge:         map[event.Identifier]struct{}{},
		minGroups: map[event.Identifier]int{
			{Event: event.E444BF}: 2,
			{Event: event.E555BF}: 2,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse reads the settings language on top of the defaults.
//
//	stage 12 red-8;          # one room, two stages, capacity 20
//	no_judge 333fm;
//	no_scram 333mbf-a1;
//	min_groups 333bf 2;
//
// A stage entry is a capacity, <capacity>-<label> or <label>-<capacity>.
// An entry whose both parts are numeric is ambiguous and rejected.
func Parse(text string, opts ...Option) (*Settings, error) {
	s := New(opts...)
	file, err := settingsParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	for _, st := range file.Statements {
		if err := s.apply(st); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Settings) apply(st *statement) error {
	switch {
	case st.Stage != nil:
		room := Room{Stages: make([]Stage, 0, len(st.Stage))}
		for _, entry := range st.Stage {
			stage, err := entry.stage()
			if err != nil {
				return err
			}
			room.Stages = append(room.Stages, stage)
		}
		s.rooms = append(s.rooms, room)
	case st.NoJudge != nil:
		id, err := st.NoJudge.identifier()
		if err != nil {
			return err
		}
		s.noJudge[id] = struct{}{}
	case st.NoScram != nil:
		id, err := st.NoScram.identifier()
		if err != nil {
			return err
		}
		s.noScram[id] = struct{}{}
	case st.MinGroups != nil:
		id, err := st.MinGroups.Ref.identifier()
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(st.MinGroups.Count)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s: min_groups count %q", ErrInvalidSettings, st.Pos, st.MinGroups.Count)
		}
		s.minGroups[id] = n
	}
	return nil
}

func (e *stageEntry) stage() (Stage, error) {
	if e.Tail == "" {
		n, err := capacity(e.Pos, e.Head)
		return Stage{Capacity: n}, err
	}
	if n, err := strconv.Atoi(e.Head); err == nil {
		if _, err := strconv.Atoi(e.Tail); err == nil {
			return Stage{}, fmt.Errorf("%w: %s: stage %s-%s has two capacities", ErrInvalidSettings, e.Pos, e.Head, e.Tail)
		}
		if n <= 0 {
			return Stage{}, fmt.Errorf("%w: %s: stage capacity %d", ErrInvalidSettings, e.Pos, n)
		}
		return Stage{Label: e.Tail, Capacity: n}, nil
	}
	n, err := capacity(e.Pos, e.Tail)
	return Stage{Label: e.Head, Capacity: n}, err
}

func capacity(pos lexer.Position, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s: stage capacity %q", ErrInvalidSettings, pos, s)
	}
	return n, nil
}

func (r *activityRef) identifier() (event.Identifier, error) {
	e, ok := event.FromCode(r.Event)
	if !ok {
		return event.Identifier{}, fmt.Errorf("%w: %w: %s: %q", ErrInvalidSettings, ErrUnknownEvent, r.Pos, r.Event)
	}
	id := event.Identifier{Event: e}
	if r.Attempt == "" {
		return id, nil
	}
	digits := r.Attempt
	if digits[0] == 'a' {
		digits = digits[1:]
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return event.Identifier{}, fmt.Errorf("%w: %s: attempt %q", ErrInvalidSettings, r.Pos, r.Attempt)
	}
	id.Attempt = n
	return id, nil
}

func (s *Settings) ScrambleCost(e event.Event) float64    { return s.scrambleCost[e] }
func (s *Settings) JudgeCost(e event.Event) float64       { return s.judgeCost[e] }
func (s *Settings) StaffMultiplier(e event.Event) float64 { return s.staffMultiplier[e] }

func (s *Settings) SetScrambleCost(e event.Event, v float64)    { s.scrambleCost[e] = v }
func (s *Settings) SetJudgeCost(e event.Event, v float64)       { s.judgeCost[e] = v }
func (s *Settings) SetStaffMultiplier(e event.Event, v float64) { s.staffMultiplier[e] = v }

// CompetingCost is the debt a competitor accrues for competing in id. An
// activity with either scramblers or judges suppressed costs nothing.
func (s *Settings) CompetingCost(id event.Identifier) float64 {
	if s.NoScram(id) || s.NoJudge(id) {
		return 0
	}
	return (s.scrambleCost[id.Event] + s.judgeCost[id.Event]) * s.staffMultiplier[id.Event]
}

// MaxScrambleCost is the largest scramble coefficient over the set.
func (s *Settings) MaxScrambleCost(set event.Set) float64 {
	m := 0.0
	for _, id := range set {
		m = math.Max(m, s.scrambleCost[id.Event])
	}
	return m
}

// MaxJudgeCost is the largest judge coefficient over the set.
func (s *Settings) MaxJudgeCost(set event.Set) float64 {
	m := 0.0
	for _, id := range set {
		m = math.Max(m, s.judgeCost[id.Event])
	}
	return m
}

// Rooms returns the configured rooms in statement order.
func (s *Settings) Rooms() []Room { return s.rooms }

// StageSize is the competing capacity of the room at idx, counted across all
// venues in schedule order.
func (s *Settings) StageSize(idx int) (int, error) {
	if idx >= 0 && idx < len(s.rooms) {
		return s.rooms[idx].Size(), nil
	}
	if s.defaultStage > 0 {
		return s.defaultStage, nil
	}
	return 0, fmt.Errorf("%w: room %d", ErrUnknownStage, idx)
}

// NoScram reports whether id needs no scramblers. An entry without an attempt
// covers every attempt block of the event.
func (s *Settings) NoScram(id event.Identifier) bool { return lookup(s.noScram, id) }

// NoJudge reports whether id needs no judges.
func (s *Settings) NoJudge(id event.Identifier) bool { return lookup(s.noJudge, id) }

// MinGroups is the floor on the number of groups id is split into.
func (s *Settings) MinGroups(id event.Identifier) int {
	if n, ok := s.minGroups[id]; ok {
		return n
	}
	if n, ok := s.minGroups[event.Identifier{Event: id.Event}]; ok {
		return n
	}
	return 0
}

func lookup(m map[event.Identifier]struct{}, id event.Identifier) bool {
	if _, ok := m[id]; ok {
		return true
	}
	_, ok := m[event.Identifier{Event: id.Event}]
	return ok
}
