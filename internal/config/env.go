package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvReputationEndpoint = "PHISHGUARD_REPUTATION_URL"
	EnvReputationAPIKey   = "PHISHGUARD_REPUTATION_API_KEY"
	EnvReputationTimeout  = "PHISHGUARD_REPUTATION_TIMEOUT"
	EnvContentTimeout     = "PHISHGUARD_CONTENT_TIMEOUT"
	EnvModelPath          = "PHISHGUARD_MODEL_PATH"
	EnvSafeDomainsFile    = "PHISHGUARD_SAFE_DOMAINS"
	EnvDBDir              = "PHISHGUARD_DB_DIR"
	EnvListenAddress      = "PHISHGUARD_ADDR"
)

// LoadDotEnv loads variables from the given .env files (default ./.env)
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with PHISHGUARD_* environment variables.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvReputationEndpoint); ok {
		cfg.ReputationEndpoint = v
	}
	if v, ok := lookup(EnvReputationAPIKey); ok {
		cfg.ReputationAPIKey = v
	}
	if v, ok := lookup(EnvModelPath); ok && v != "" {
		cfg.ModelPath = v
	}
	if v, ok := lookup(EnvSafeDomainsFile); ok {
		cfg.SafeDomainsFile = v
	}
	if v, ok := lookup(EnvDBDir); ok && v != "" {
		cfg.DBDir = v
	}
	if v, ok := lookup(EnvListenAddress); ok && v != "" {
		cfg.ListenAddress = v
	}

	for name, dst := range map[string]*time.Duration{
		EnvReputationTimeout: &cfg.ReputationTimeout,
		EnvContentTimeout:    &cfg.ContentTimeout,
	} {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = d
	}
	return nil
}

// parseDuration accepts Go durations ("3s") and bare seconds ("3").
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
