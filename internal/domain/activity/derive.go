package activity

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/heats/internal/domain/competitor"
	"github.com/okian/heats/internal/domain/event"
	"github.com/okian/heats/internal/domain/settings"
	"github.com/okian/heats/internal/domain/wcif"
)

const day = 24 * time.Hour

// Skipped records a schedule entry that produced no activities.
type Skipped struct {
	ScheduleID int
	Code       string
	Reason     string
}

// Derivation is the output of Derive. Activity.Index equals its position in
// Activities and Slot.Index its position in Slots.
type Derivation struct {
	Slots      []*Slot
	Activities []*Activity
	Skipped    []Skipped
}

// Derive expands every first-round schedule entry of c. Competitors
// registered for a slot accrue its competing cost and gain its window as
// availability, so reg is mutated.
func Derive(c *wcif.Competition, reg *competitor.Registry, s *settings.Settings) (*Derivation, error) {
	d := &Derivation{}
	slots, err := d.slots(c, reg, s)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		if err := d.expand(slot, s); err != nil {
			return nil, err
		}
	}
	return d, nil
}

type consumer struct {
	code       string
	start, end time.Time
}

func (d *Derivation) slots(c *wcif.Competition, reg *competitor.Registry, s *settings.Settings) ([]*Slot, error) {
	var out []*Slot
	consumed := map[event.Identifier]consumer{}
	start := c.Schedule.StartDate.Time

	for room, r := range c.Rooms() {
		for _, act := range r.Activities {
			code, err := event.ParseCode(act.ActivityCode)
			switch {
			case errors.Is(err, event.ErrOther):
				continue
			case err != nil:
				return nil, fmt.Errorf("%w: activity %d: %w", ErrScheduleInconsistent, act.ID, err)
			}
			if code.Round != 1 {
				continue
			}

			own := code.Identifier()
			if by, ok := consumed[own]; ok {
				if !by.start.Equal(act.StartTime) || !by.end.Equal(act.EndTime) {
					return nil, fmt.Errorf("%w: %s shares a time limit with %s but not its window",
						ErrScheduleInconsistent, act.ActivityCode, by.code)
				}
				d.Skipped = append(d.Skipped, Skipped{act.ID, act.ActivityCode, "merged into " + by.code})
				continue
			}

			set, err := merged(c, code)
			if err != nil {
				return nil, err
			}
			for _, id := range set {
				if id != own {
					consumed[id] = consumer{act.ActivityCode, act.StartTime, act.EndTime}
				}
			}

			candidates := reg.Select(func(comp *competitor.Competitor) bool {
				for _, id := range set {
					if comp.RegisteredFor(id.Event) {
						return true
					}
				}
				return false
			})
			if candidates.None() {
				d.Skipped = append(d.Skipped, Skipped{act.ID, act.ActivityCode, "no registered competitors"})
				continue
			}

			dayIdx := int(act.StartTime.Sub(start) / day)
			window := competitor.Window{Start: act.StartTime, End: act.EndTime}
			for i, ok := candidates.NextSet(0); ok; i, ok = candidates.NextSet(i + 1) {
				comp, _ := reg.Get(int(i))
				for _, id := range set {
					comp.AddDebt(s.CompetingCost(id))
				}
				comp.AddAvailability(dayIdx, window)
			}

			out = append(out, &Slot{
				Index:      len(out),
				Room:       room,
				ScheduleID: act.ID,
				Code:       act.ActivityCode,
				Events:     set,
				Start:      act.StartTime,
				End:        act.EndTime,
				Candidates: candidates,
			})
		}
	}
	return out, nil
}

// merged returns the identifiers sharing a pre-activity with code: every
// event named by the first round's cumulative time limit, at the same attempt.
func merged(c *wcif.Competition, code event.Code) (event.Set, error) {
	ev, ok := c.Event(code.Event.Code())
	if !ok || len(ev.Rounds) == 0 {
		return nil, fmt.Errorf("%w: %s is scheduled but not held", ErrScheduleInconsistent, code)
	}
	own := code.Identifier()
	limit := ev.Rounds[0].TimeLimit
	if limit == nil || len(limit.CumulativeRoundIDs) == 0 {
		return event.Set{own}, nil
	}

	set := make(event.Set, 0, len(limit.CumulativeRoundIDs))
	for _, rid := range limit.CumulativeRoundIDs {
		e, _, err := event.RoundID(rid)
		if err != nil {
			return nil, fmt.Errorf("%w: cumulative round %q: %w", ErrScheduleInconsistent, rid, err)
		}
		if _, ok := c.Event(e.Code()); !ok {
			return nil, fmt.Errorf("%w: cumulative round %q is not held", ErrScheduleInconsistent, rid)
		}
		id := event.Identifier{Event: e, Attempt: code.Attempt}
		if !set.Contains(id) {
			set = append(set, id)
		}
	}
	if !set.Contains(own) {
		return nil, fmt.Errorf("%w: %s is missing from its own cumulative limit", ErrScheduleInconsistent, code)
	}
	return set, nil
}

func (d *Derivation) expand(slot *Slot, s *settings.Settings) error {
	capacity, err := s.StageSize(slot.Room)
	if err != nil {
		return fmt.Errorf("%s: %w", slot.Code, err)
	}
	first := slot.Events[0]
	sizes := GroupSizes(int(slot.Candidates.Count()), capacity, s.MinGroups(first))
	span := slot.End.Sub(slot.Start) / time.Duration(len(sizes))
	scramble := s.MaxScrambleCost(slot.Events)
	judge := s.MaxJudgeCost(slot.Events)

	slot.Index = len(d.Slots)
	d.Slots = append(d.Slots, slot)
	for g, size := range sizes {
		start := slot.Start.Add(span * time.Duration(g))
		end := start.Add(span)
		acts := []*Activity{newActivity(slot, g, Competing, size, start, end)}
		if !s.NoScram(first) {
			acts = append(acts, newActivity(slot, g, Scrambling, staffCapacity(size, scramble), start, end))
		}
		if !s.NoJudge(first) {
			acts = append(acts, newActivity(slot, g, Judging, staffCapacity(size, judge), start, end))
		}
		for _, a := range acts {
			a.Index = len(d.Activities)
			d.Activities = append(d.Activities, a)
			slot.Activities = append(slot.Activities, a.Index)
			if a.Role == Competing {
				slot.Competing = append(slot.Competing, a.Index)
			}
		}
	}
	return nil
}
