// Package config defines process configuration and its loading.
//
// Conventions:
// - Event keyed maps use WCA event ids ("333", "444bf").
// - Zero values mean "use the engine default" unless noted.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/heats/internal/domain/event"
	"github.com/okian/heats/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// WCIFPath is the competition document to read. "-" reads stdin.
	WCIFPath string `koanf:"wcif_path"`

	// SettingsPath names a settings file. Settings holds inline settings text
	// and wins when both are set.
	SettingsPath string `koanf:"settings_path"`
	Settings     string `koanf:"settings"`

	// OutputFormat is text, json or wcif.
	OutputFormat string `koanf:"output_format"`

	// OutputPath is where the result is written. Empty writes stdout.
	OutputPath string `koanf:"output_path"`

	// MetricsPath, when set, receives a Prometheus textfile after each run.
	MetricsPath string `koanf:"metrics_path"`

	// FastFactor and FastExcluded tune the fast competitor heuristic.
	FastFactor   float64  `koanf:"fast_factor"`
	FastExcluded []string `koanf:"fast_excluded"`

	// ScramblerMinAge is the minimum age to scramble.
	ScramblerMinAge int `koanf:"scrambler_min_age"`

	// ScrambleThresholds overrides per event scrambler cutoffs in centiseconds.
	ScrambleThresholds map[string]int `koanf:"scramble_thresholds"`

	// Cost overrides per event.
	ScrambleCost    map[string]float64 `koanf:"scramble_cost"`
	JudgeCost       map[string]float64 `koanf:"judge_cost"`
	StaffMultiplier map[string]float64 `koanf:"staff_multiplier"`

	// StageCapacity is used for rooms without a stage statement. Zero makes a
	// missing stage an error.
	StageCapacity int `koanf:"stage_capacity"`
}

var outputFormats = map[string]bool{"text": true, "json": true, "wcif": true}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		WCIFPath:        "-",
		OutputFormat:    "text",
		FastFactor:      1.25,
		FastExcluded:    []string{"333mbf", "666", "777", "minx"},
		ScramblerMinAge: 14,
	}
}

// Validate checks values that the loaders cannot.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if !outputFormats[strings.ToLower(c.OutputFormat)] {
		return fmt.Errorf("%w: output_format %q", ErrInvalidConfig, c.OutputFormat)
	}
	if c.FastFactor <= 0 {
		return fmt.Errorf("%w: fast_factor must be positive, got %v", ErrInvalidConfig, c.FastFactor)
	}
	if c.ScramblerMinAge < 0 || c.StageCapacity < 0 {
		return fmt.Errorf("%w: scrambler_min_age and stage_capacity must not be negative", ErrInvalidConfig)
	}
	if _, err := c.FastExcludedEvents(); err != nil {
		return err
	}
	if _, err := c.Thresholds(); err != nil {
		return err
	}
	for name, m := range map[string]map[string]float64{
		"scramble_cost":    c.ScrambleCost,
		"judge_cost":       c.JudgeCost,
		"staff_multiplier": c.StaffMultiplier,
	} {
		if _, err := eventFloats(name, m); err != nil {
			return err
		}
	}
	return nil
}

// FastExcludedEvents resolves FastExcluded. Entries may themselves be comma
// separated, as they are when set from the environment.
func (c *Config) FastExcludedEvents() ([]event.Event, error) {
	out := make([]event.Event, 0, len(c.FastExcluded))
	for _, entry := range c.FastExcluded {
		for _, code := range strings.Split(entry, ",") {
			code = strings.TrimSpace(code)
			if code == "" {
				continue
			}
			e, ok := event.FromCode(code)
			if !ok {
				return nil, fmt.Errorf("%w: fast_excluded: %w %q", ErrInvalidConfig, ErrUnknownEvent, code)
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// Thresholds resolves ScrambleThresholds.
func (c *Config) Thresholds() (map[event.Event]int, error) {
	out := make(map[event.Event]int, len(c.ScrambleThresholds))
	for code, v := range c.ScrambleThresholds {
		e, ok := event.FromCode(code)
		if !ok {
			return nil, fmt.Errorf("%w: scramble_thresholds: %w %q", ErrInvalidConfig, ErrUnknownEvent, code)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: scramble_thresholds: %s is negative", ErrInvalidConfig, code)
		}
		out[e] = v
	}
	return out, nil
}

// ScrambleCosts resolves ScrambleCost.
func (c *Config) ScrambleCosts() (map[event.Event]float64, error) {
	return eventFloats("scramble_cost", c.ScrambleCost)
}

// JudgeCosts resolves JudgeCost.
func (c *Config) JudgeCosts() (map[event.Event]float64, error) {
	return eventFloats("judge_cost", c.JudgeCost)
}

// StaffMultipliers resolves StaffMultiplier.
func (c *Config) StaffMultipliers() (map[event.Event]float64, error) {
	return eventFloats("staff_multiplier", c.StaffMultiplier)
}

func eventFloats(name string, m map[string]float64) (map[event.Event]float64, error) {
	out := make(map[event.Event]float64, len(m))
	for code, v := range m {
		e, ok := event.FromCode(code)
		if !ok {
			return nil, fmt.Errorf("%w: %s: %w %q", ErrInvalidConfig, name, ErrUnknownEvent, code)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: %s: %s is negative", ErrInvalidConfig, name, code)
		}
		out[e] = v
	}
	return out, nil
}
