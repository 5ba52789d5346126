package config

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if WT_CONFIG is set
//  3. env (prefix WT_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("WT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: WT_ADDR, WT_BACKEND_URL, WT_POLL_INTERVAL, ...
	// Keys keep their underscores so they match the koanf tags above.
	envProvider := env.Provider("WT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "wt_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.BackendURL == "" {
		return errors.New("backend_url must not be empty")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("backend_url must be an absolute URL")
	}
	if c.PollInterval < time.Second {
		return errors.New("poll_interval must be at least 1s")
	}
	if c.PollLimit <= 0 {
		return errors.New("poll_limit must be positive")
	}
	return nil
}
