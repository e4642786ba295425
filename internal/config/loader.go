package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "HEATS_"
	envFile   = "HEATS_CONFIG"
)

// LoadOption adjusts where Load reads from.
type LoadOption func(*loadOptions)

type loadOptions struct {
	file string
}

// WithFile reads the YAML file at path instead of the one named by
// HEATS_CONFIG. Empty keeps the environment's choice.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.file = path
		}
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile, else HEATS_CONFIG when set
//  3. env (prefix HEATS_)
//
// Nested keys use a double underscore in env names, so
// HEATS_SCRAMBLE_COST__333=0.1 sets scramble_cost.333.
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	lo := loadOptions{file: os.Getenv(envFile)}
	for _, opt := range opts {
		opt(&lo)
	}
	base := New()

	k := koanf.New(".")

	if path := lo.file; path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}
	k.Delete("config")

	// A decoded list would be merged into the default one instead of
	// replacing it.
	cfg := *base
	cfg.FastExcluded = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !k.Exists("fast_excluded") {
		cfg.FastExcluded = base.FastExcluded
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SettingsText returns the inline settings or the contents of SettingsPath.
func (c *Config) SettingsText() (string, error) {
	if c.Settings != "" || c.SettingsPath == "" {
		return c.Settings, nil
	}
	b, err := os.ReadFile(c.SettingsPath)
	if err != nil {
		return "", fmt.Errorf("%w: settings: %v", ErrLoadConfig, err)
	}
	return string(b), nil
}
