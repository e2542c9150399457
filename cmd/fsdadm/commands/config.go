package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/newbpydev/fshook/pkg/fsd"
)

// Config holds the sandbox configuration. Values come from, in order of
// precedence: command-line flags, FSDADM_* environment variables (a .env
// file in the working directory is loaded first), then the YAML
// config file.
type Config struct {
	// Policy is the default disturbance policy.
	Policy PolicyConfig `yaml:"policy"`

	// Mounts is the list of mountpoints the sandbox creates. Defaults to
	// /mnt/a, /mnt/b, /mnt/c.
	Mounts []string `yaml:"mounts"`

	// MetricsAddr, when set, serves prometheus metrics and pprof.
	MetricsAddr string `yaml:"metrics_addr"`

	// SentryDSN, when set, routes framework errors to Sentry.
	SentryDSN string `yaml:"sentry_dsn"`
}

// PolicyConfig is the YAML shape of a disturbance policy.
type PolicyConfig struct {
	ChancePercent uint64 `yaml:"chance_percent"`
	RangeLo       uint64 `yaml:"range_lo"`
	RangeHi       uint64 `yaml:"range_hi"`
}

// Policy converts the config shape to the client policy.
func (p PolicyConfig) Policy() fsd.Policy {
	return fsd.Policy{
		ChancePercent: p.ChancePercent,
		Range:         [2]uint64{p.RangeLo, p.RangeHi},
	}
}

// DefaultConfig returns the sandbox defaults: three mounts and a mild
// always-on policy.
func DefaultConfig() Config {
	return Config{
		Policy: PolicyConfig{ChancePercent: 100, RangeLo: 1, RangeHi: 16},
		Mounts: []string{"/mnt/a", "/mnt/b", "/mnt/c"},
	}
}

// LoadConfig builds the effective configuration. path may be empty, in
// which case only defaults and the environment apply. Unknown YAML keys
// are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	// A missing .env is fine; explicit environment always wins over it.
	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.Policy.Policy().Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays FSDADM_* environment variables onto the config.
func applyEnv(cfg *Config) {
	if v := os.Getenv("FSDADM_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("FSDADM_SENTRY_DSN"); v != "" {
		cfg.SentryDSN = v
	}
	if v := os.Getenv("FSDADM_CHANCE_PERCENT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Policy.ChancePercent = n
		}
	}
	if v := os.Getenv("FSDADM_MOUNTS"); v != "" {
		cfg.Mounts = strings.Split(v, ",")
	}
}

// parseRange parses a "lo:hi" flag value.
func parseRange(s string) ([2]uint64, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return [2]uint64{}, fmt.Errorf("range %q: want lo:hi", s)
	}
	l, err := strconv.ParseUint(lo, 10, 64)
	if err != nil {
		return [2]uint64{}, fmt.Errorf("range %q: %w", s, err)
	}
	h, err := strconv.ParseUint(hi, 10, 64)
	if err != nil {
		return [2]uint64{}, fmt.Errorf("range %q: %w", s, err)
	}
	return [2]uint64{l, h}, nil
}
