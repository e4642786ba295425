// Package wcif models the subset of the WCA Competition Interchange Format the
// assignment engine reads and writes back.
package wcif

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a zone, encoded as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrBadDate, err)
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadDate, *s)
	}
	d.Time = t
	return nil
}

// Competition is the root WCIF document.
type Competition struct {
	FormatVersion   string            `json:"formatVersion"`
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	ShortName       string            `json:"shortName"`
	Persons         []Person          `json:"persons"`
	Events          []Event           `json:"events"`
	Schedule        Schedule          `json:"schedule"`
	CompetitorLimit *int              `json:"competitorLimit,omitempty"`
	Extensions      []json.RawMessage `json:"extensions"`
}

type Person struct {
	RegistrantID  *int              `json:"registrantId"`
	Name          string            `json:"name"`
	WcaUserID     int               `json:"wcaUserId"`
	WcaID         *string           `json:"wcaId"`
	CountryIso2   string            `json:"countryIso2"`
	Gender        string            `json:"gender"`
	Birthdate     Date              `json:"birthdate"`
	Email         string            `json:"email"`
	Avatar        json.RawMessage   `json:"avatar,omitempty"`
	Roles         []string          `json:"roles"`
	Registration  *Registration     `json:"registration"`
	Assignments   []Assignment      `json:"assignments"`
	PersonalBests []PersonalBest    `json:"personalBests"`
	Extensions    []json.RawMessage `json:"extensions"`
}

// Accepted reports whether the person holds an accepted registration.
func (p *Person) Accepted() bool {
	return p.RegistrantID != nil && p.Registration != nil && p.Registration.Status == StatusAccepted
}

// RegisteredFor reports whether the person's registration includes eventID.
func (p *Person) RegisteredFor(eventID string) bool {
	if p.Registration == nil {
		return false
	}
	for _, id := range p.Registration.EventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

const StatusAccepted = "accepted"

type Registration struct {
	WcaRegistrationID int      `json:"wcaRegistrationId"`
	EventIDs          []string `json:"eventIds"`
	Status            string   `json:"status"`
	Guests            int      `json:"guests"`
	Comments          string   `json:"comments"`
}

// Assignment codes written back for derived activities.
const (
	AssignmentCompetitor = "competitor"
	AssignmentJudge      = "staff-judge"
	AssignmentScrambler  = "staff-scrambler"
)

type Assignment struct {
	ActivityID     int    `json:"activityId"`
	AssignmentCode string `json:"assignmentCode"`
	StationNumber  *int   `json:"stationNumber"`
}

type PersonalBest struct {
	EventID            string `json:"eventId"`
	Best               int    `json:"best"`
	Type               string `json:"type"`
	WorldRanking       int    `json:"worldRanking"`
	ContinentalRanking int    `json:"continentalRanking"`
	NationalRanking    int    `json:"nationalRanking"`
}

type Event struct {
	ID              string            `json:"id"`
	Rounds          []Round           `json:"rounds"`
	CompetitorLimit *int              `json:"competitorLimit"`
	Qualification   json.RawMessage   `json:"qualification,omitempty"`
	Extensions      []json.RawMessage `json:"extensions"`
}

type Round struct {
	ID                   string            `json:"id"`
	Format               string            `json:"format"`
	TimeLimit            *TimeLimit        `json:"timeLimit"`
	Cutoff               json.RawMessage   `json:"cutoff,omitempty"`
	AdvancementCondition json.RawMessage   `json:"advancementCondition,omitempty"`
	Results              []json.RawMessage `json:"results"`
	ScrambleSetCount     int               `json:"scrambleSetCount"`
	Extensions           []json.RawMessage `json:"extensions"`
}

type TimeLimit struct {
	Centiseconds       int      `json:"centiseconds"`
	CumulativeRoundIDs []string `json:"cumulativeRoundIds"`
}

type Schedule struct {
	StartDate    Date    `json:"startDate"`
	NumberOfDays int     `json:"numberOfDays"`
	Venues       []Venue `json:"venues"`
}

type Venue struct {
	ID                    int               `json:"id"`
	Name                  string            `json:"name"`
	LatitudeMicrodegrees  int64             `json:"latitudeMicrodegrees"`
	LongitudeMicrodegrees int64             `json:"longitudeMicrodegrees"`
	CountryIso2           string            `json:"countryIso2"`
	Timezone              string            `json:"timezone"`
	Rooms                 []Room            `json:"rooms"`
	Extensions            []json.RawMessage `json:"extensions"`
}

type Room struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Color      string            `json:"color"`
	Activities []Activity        `json:"activities"`
	Extensions []json.RawMessage `json:"extensions"`
}

type Activity struct {
	ID              int               `json:"id"`
	Name            string            `json:"name"`
	ActivityCode    string            `json:"activityCode"`
	StartTime       time.Time         `json:"startTime"`
	EndTime         time.Time         `json:"endTime"`
	ChildActivities []Activity        `json:"childActivities"`
	ScrambleSetID   *int              `json:"scrambleSetId"`
	Extensions      []json.RawMessage `json:"extensions"`
}

// Decode reads a competition document.
func Decode(r io.Reader) (*Competition, error) {
	var c Competition
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &c, nil
}

// Encode writes the competition as indented JSON.
func Encode(w io.Writer, c *Competition) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}

// Rooms flattens every venue's rooms in schedule order. The position of a room
// in the result is its stage index.
func (c *Competition) Rooms() []*Room {
	var out []*Room
	for vi := range c.Schedule.Venues {
		v := &c.Schedule.Venues[vi]
		for ri := range v.Rooms {
			out = append(out, &v.Rooms[ri])
		}
	}
	return out
}

// Event looks up an event by its WCA id.
func (c *Competition) Event(id string) (*Event, bool) {
	for i := range c.Events {
		if c.Events[i].ID == id {
			return &c.Events[i], true
		}
	}
	return nil, false
}

// MaxActivityID is the largest activity id used anywhere in the schedule.
func (c *Competition) MaxActivityID() int {
	m := 0
	var walk func([]Activity)
	walk = func(acts []Activity) {
		for i := range acts {
			if acts[i].ID > m {
				m = acts[i].ID
			}
			walk(acts[i].ChildActivities)
		}
	}
	for _, r := range c.Rooms() {
		walk(r.Activities)
	}
	return m
}

// Person looks up a person by registrant id.
func (c *Competition) Person(registrantID int) (*Person, bool) {
	for i := range c.Persons {
		p := &c.Persons[i]
		if p.RegistrantID != nil && *p.RegistrantID == registrantID {
			return p, true
		}
	}
	return nil, false
}
