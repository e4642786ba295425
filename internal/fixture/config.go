package fixture

import (
	"time"
)

// Config describes the synthetic competition to build.
type Config struct {
	Name             string
	Competitors      int
	Delegates        int
	Organizers       int
	YoungShare       float64 // share of competitors aged 10-13
	Events           []string
	SharedLimits     [][]string
	Rooms            int
	Rounds           int
	SlotLength       time.Duration
	Start            time.Time
	RegistrationRate float64
	Seed             int64
}

// Option configures a Config.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Name:             "Synthetic Open",
		Competitors:      60,
		Delegates:        2,
		Organizers:       1,
		YoungShare:       0.1,
		Events:           []string{"333", "222", "pyram"},
		Rooms:            1,
		Rounds:           1,
		SlotLength:       time.Hour,
		Start:            time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC),
		RegistrationRate: 0.7,
		Seed:             1,
	}
}

func WithName(name string) Option { return func(c *Config) { c.Name = name } }

func WithCompetitors(n int) Option { return func(c *Config) { c.Competitors = n } }

func WithDelegates(n int) Option { return func(c *Config) { c.Delegates = n } }

func WithOrganizers(n int) Option { return func(c *Config) { c.Organizers = n } }

func WithYoungShare(share float64) Option { return func(c *Config) { c.YoungShare = share } }

// WithEvents sets the events held, in schedule order.
func WithEvents(codes ...string) Option { return func(c *Config) { c.Events = codes } }

// WithSharedLimit links events under one cumulative time limit. They are
// scheduled side by side in the same window.
func WithSharedLimit(codes ...string) Option {
	return func(c *Config) { c.SharedLimits = append(c.SharedLimits, codes) }
}

// WithRooms spreads consecutive first rounds over n parallel rooms.
func WithRooms(n int) Option { return func(c *Config) { c.Rooms = n } }

// WithRounds sets the number of rounds every event has.
func WithRounds(n int) Option { return func(c *Config) { c.Rounds = n } }

func WithSlotLength(d time.Duration) Option { return func(c *Config) { c.SlotLength = d } }

// WithStart sets the first competition day.
func WithStart(t time.Time) Option { return func(c *Config) { c.Start = t } }

// WithRegistrationRate sets the chance a competitor registers for each event
// after the first, which everyone enters.
func WithRegistrationRate(p float64) Option { return func(c *Config) { c.RegistrationRate = p } }

func WithSeed(seed int64) Option { return func(c *Config) { c.Seed = seed } }
