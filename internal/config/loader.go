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
	"golang.org/x/text/language"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "EDUPREDICT_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if EDUPREDICT_CONFIG is set
//  3. env (prefix EDUPREDICT_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Map env keys like EDUPREDICT_MODEL_PATH -> model_path (flat keys).
	// Underscores are preserved to match koanf tags on the struct.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ModelPath) == "":
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	if _, err := c.LanguageTag(); err != nil {
		return fmt.Errorf("%w: language %q: %w", ErrInvalidConfig, c.Language, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}

// LanguageTag parses Language.
func (c *Config) LanguageTag() (language.Tag, error) {
	return language.Parse(c.Language)
}
