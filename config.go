package pennywise

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// BackendEnv overrides the configured backend origin.
const BackendEnv = "PENNYWISE_BACKEND"

// Config holds the client settings.
type Config struct {
	Backend      string        `yaml:"backend"`       // backend origin, e.g. http://127.0.0.1:8000
	Timeout      time.Duration `yaml:"timeout"`       // per request
	PollInterval time.Duration `yaml:"poll_interval"` // market feed period
	RateLimit    float64       `yaml:"rate_limit"`    // requests per second
	Burst        int           `yaml:"burst"`
	Breaker      BreakerConfig `yaml:"breaker"`
	Currency     string        `yaml:"currency"`
	AuditDir     string        `yaml:"audit_dir"`
}

// BreakerConfig configures the circuit breaker in front of the backend.
type BreakerConfig struct {
	MaxRequests         uint32        `yaml:"max_requests"`         // probes allowed while half-open
	Interval            time.Duration `yaml:"interval"`             // closed-state counter reset period
	Timeout             time.Duration `yaml:"timeout"`              // open-state duration
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"` // failures to trip
}

// DefaultConfig returns the settings of a local backend.
func DefaultConfig() Config {
	return Config{
		Backend:      "http://127.0.0.1:8000",
		Timeout:      10 * time.Second,
		PollInterval: 3 * time.Second,
		RateLimit:    20,
		Burst:        10,
		Breaker: BreakerConfig{
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             15 * time.Second,
			ConsecutiveFailures: 5,
		},
		Currency: DefaultCurrency,
		AuditDir: ".",
	}
}

// LoadConfig reads the YAML file at path on top of the defaults, then applies
// the environment. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Warn().Str("path", path).Msg("config file does not exist, using defaults")
		case err != nil:
			return cfg, fmt.Errorf("cannot read config %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("cannot parse config %q: %w", path, err)
			}
		}
	}
	if v := os.Getenv(BackendEnv); v != "" {
		cfg.Backend = v
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	u, err := url.Parse(c.Backend)
	if err != nil {
		return fmt.Errorf("invalid backend %q: %w", c.Backend, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend %q: scheme must be http or https", c.Backend)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}
	if c.RateLimit <= 0 || c.Burst <= 0 {
		return fmt.Errorf("rate_limit and burst must be positive")
	}
	return nil
}
