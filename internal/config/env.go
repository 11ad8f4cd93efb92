package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvConfigPath = "FUTBOLIN_CONFIG"
	EnvAddr       = "FUTBOLIN_ADDR"
	EnvLogLevel   = "FUTBOLIN_LOG_LEVEL"
	EnvSeed       = "FUTBOLIN_SEED"
	EnvTickRate   = "FUTBOLIN_TICK_RATE"
)

// FromEnv loads .env files when present, reads the YAML file named by
// FUTBOLIN_CONFIG (if any) and applies the remaining environment overrides.
func FromEnv(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	if path := os.Getenv(EnvConfigPath); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvSeed, v, err)
		}
		c.Seed = seed
	}
	if v, ok := lookup(EnvTickRate); ok && v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvTickRate, v, err)
		}
		c.Server.TickRate = rate
	}
	return nil
}
