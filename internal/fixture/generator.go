// Package fixture builds deterministic synthetic competitions.
package fixture

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/heats/internal/domain/competitor"
	"github.com/okian/heats/internal/domain/event"
	"github.com/okian/heats/internal/domain/wcif"
)

// Result spread around each event's scrambler cutoff. A factor below one is
// fast enough to scramble.
const (
	pbFactorMin   = 0.4
	pbFactorRange = 1.4
	fmMovesMin    = 20
	fmMovesRange  = 25
	adultAgeMin   = 16
	adultAgeRange = 40
	youngAgeMin   = 10
	youngAgeRange = 4
	dayStartHour  = 9
	timeLimitCS   = 60000
)

// Generate builds a competition from opts.
func Generate(opts ...Option) (*wcif.Competition, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.Events) == 0 {
		return nil, ErrNoEvents
	}
	if cfg.Competitors <= 0 || cfg.Rooms <= 0 || cfg.Rounds <= 0 || cfg.SlotLength <= 0 {
		return nil, fmt.Errorf("%w: %+v", ErrBadConfig, cfg)
	}
	events := make([]event.Event, len(cfg.Events))
	for i, code := range cfg.Events {
		e, ok := event.FromCode(code)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, code)
		}
		events[i] = e
	}

	g := &generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed)), events: events}
	c := &wcif.Competition{
		FormatVersion: "1.0",
		ID:            "SyntheticOpen",
		Name:          cfg.Name,
		ShortName:     cfg.Name,
		Schedule: wcif.Schedule{
			StartDate:    wcif.NewDate(cfg.Start.Year(), cfg.Start.Month(), cfg.Start.Day()),
			NumberOfDays: 1,
		},
	}
	c.Events = g.wcifEvents()
	c.Persons = g.persons()
	c.Schedule.Venues = []wcif.Venue{g.venue()}
	return c, nil
}

type generator struct {
	cfg    Config
	rng    *rand.Rand
	events []event.Event
	nextID int
}

func (g *generator) shared(code string) []string {
	for _, group := range g.cfg.SharedLimits {
		for _, c := range group {
			if c == code {
				return group
			}
		}
	}
	return nil
}

func (g *generator) wcifEvents() []wcif.Event {
	out := make([]wcif.Event, 0, len(g.events))
	for _, e := range g.events {
		ev := wcif.Event{ID: e.Code()}
		for r := 1; r <= g.cfg.Rounds; r++ {
			round := wcif.Round{ID: fmt.Sprintf("%s-r%d", e.Code(), r), Format: "a"}
			if group := g.shared(e.Code()); group != nil && r == 1 {
				ids := make([]string, len(group))
				for i, c := range group {
					ids[i] = c + "-r1"
				}
				round.TimeLimit = &wcif.TimeLimit{Centiseconds: timeLimitCS, CumulativeRoundIDs: ids}
			} else {
				round.TimeLimit = &wcif.TimeLimit{Centiseconds: timeLimitCS}
			}
			ev.Rounds = append(ev.Rounds, round)
		}
		out = append(out, ev)
	}
	return out
}

func (g *generator) persons() []wcif.Person {
	thresholds := competitor.DefaultThresholds()
	out := make([]wcif.Person, g.cfg.Competitors)
	for i := range out {
		id := i + 1
		p := wcif.Person{
			RegistrantID: &id,
			Name:         fmt.Sprintf("Competitor %03d", id),
			WcaUserID:    1000 + id,
			CountryIso2:  "XA",
			Roles:        []string{},
			Assignments:  []wcif.Assignment{},
			Registration: &wcif.Registration{WcaRegistrationID: id, Status: wcif.StatusAccepted},
		}
		switch {
		case i < g.cfg.Delegates:
			p.Roles = append(p.Roles, "delegate")
		case i < g.cfg.Delegates+g.cfg.Organizers:
			p.Roles = append(p.Roles, "organizer")
		}

		age := adultAgeMin + g.rng.Intn(adultAgeRange)
		if len(p.Roles) == 0 && g.rng.Float64() < g.cfg.YoungShare {
			age = youngAgeMin + g.rng.Intn(youngAgeRange)
		}
		born := g.cfg.Start.AddDate(-age, -1, 0)
		p.Birthdate = wcif.NewDate(born.Year(), born.Month(), born.Day())

		for j, e := range g.events {
			if j == 0 || g.rng.Float64() < g.cfg.RegistrationRate {
				p.Registration.EventIDs = append(p.Registration.EventIDs, e.Code())
			}
		}
		seen := map[event.Event]bool{}
		for _, e := range g.events {
			for _, pe := range []event.Event{e.Base(), e} {
				if seen[pe] {
					continue
				}
				seen[pe] = true
				p.PersonalBests = append(p.PersonalBests, wcif.PersonalBest{
					EventID: pe.Code(),
					Best:    g.result(pe, thresholds),
					Type:    pe.Format().String(),
				})
			}
		}
		out[i] = p
	}
	return out
}

func (g *generator) result(e event.Event, t competitor.Thresholds) int {
	base := t[e]
	if base <= 0 {
		return fmMovesMin + g.rng.Intn(fmMovesRange)
	}
	return int(float64(base) * (pbFactorMin + g.rng.Float64()*pbFactorRange))
}

func (g *generator) activity(code string, start time.Time, length time.Duration) wcif.Activity {
	g.nextID++
	return wcif.Activity{
		ID:              g.nextID,
		Name:            code,
		ActivityCode:    code,
		StartTime:       start,
		EndTime:         start.Add(length),
		ChildActivities: []wcif.Activity{},
	}
}

func (g *generator) venue() wcif.Venue {
	rooms := make([]wcif.Room, g.cfg.Rooms)
	for i := range rooms {
		rooms[i] = wcif.Room{ID: i + 1, Name: fmt.Sprintf("Room %d", i+1)}
	}

	var blocks [][]event.Event
	placed := map[event.Event]bool{}
	for _, e := range g.events {
		if placed[e] {
			continue
		}
		block := []event.Event{e}
		placed[e] = true
		for _, code := range g.shared(e.Code()) {
			if other, ok := event.FromCode(code); ok && !placed[other] {
				block = append(block, other)
				placed[other] = true
			}
		}
		blocks = append(blocks, block)
	}

	day := g.cfg.Start.Add(dayStartHour * time.Hour)
	slots := 0
	for i, block := range blocks {
		room := &rooms[i%g.cfg.Rooms]
		slot := i / g.cfg.Rooms
		start := day.Add(time.Duration(slot) * g.cfg.SlotLength)
		for _, e := range block {
			room.Activities = append(room.Activities, g.activity(e.Code()+"-r1", start, g.cfg.SlotLength))
		}
		slots = slot + 1
	}

	next := day.Add(time.Duration(slots) * g.cfg.SlotLength)
	rooms[0].Activities = append(rooms[0].Activities, g.activity("other-lunch", next, g.cfg.SlotLength))
	next = next.Add(g.cfg.SlotLength)
	for r := 2; r <= g.cfg.Rounds; r++ {
		for _, e := range g.events {
			rooms[0].Activities = append(rooms[0].Activities, g.activity(fmt.Sprintf("%s-r%d", e.Code(), r), next, g.cfg.SlotLength))
			next = next.Add(g.cfg.SlotLength)
		}
	}

	return wcif.Venue{ID: 1, Name: "Main Venue", Timezone: "UTC", CountryIso2: "XA", Rooms: rooms}
}
