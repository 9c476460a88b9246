package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/liamcoop/numclass/internal/logger"
)

const (
	// DefaultPath is read when present and no explicit path is given
	DefaultPath = "config.yaml"

	// EnvPrefix namespaces environment overrides. Nested keys are separated
	// by a double underscore: NUMCLASS_FUNFACT__TIMEOUT=1s.
	EnvPrefix = "NUMCLASS_"

	PolicyCEL      = "cel"
	PolicyStandard = "standard"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	CORS    CORSConfig    `koanf:"cors"`
	FunFact FunFactConfig `koanf:"funfact"`
	Policy  PolicyConfig  `koanf:"policy"`
	Logging LoggingConfig `koanf:"logging"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
}

// Addr returns the listen address for the configured port
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

type CORSConfig struct {
	Origins        []string `koanf:"origins"`
	AllowedMethods []string `koanf:"allowed_methods"`
	AllowedHeaders []string `koanf:"allowed_headers"`
}

type FunFactConfig struct {
	Enabled bool          `koanf:"enabled"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

type PolicyConfig struct {
	Engine string       `koanf:"engine"`
	Rules  []RuleConfig `koanf:"rules"`
}

// RuleConfig declares an extra property tag. Extra tags are always reported
// after the built-in ones; Priority orders them among themselves.
type RuleConfig struct {
	Name       string `koanf:"name"`
	Expression string `koanf:"expression"`
	Priority   int    `koanf:"priority"`
}

type LoggingConfig struct {
	Level           string `koanf:"level"`
	ErrorSampleRate int    `koanf:"error_sample_rate"`
	OTELEnabled     bool   `koanf:"otel_enabled"`
	ServiceName     string `koanf:"service_name"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  10 * time.Second,
		},
		FunFact: FunFactConfig{
			Enabled: true,
			BaseURL: "http://numbersapi.com",
			Timeout: 2 * time.Second,
		},
		Policy: PolicyConfig{
			Engine: PolicyCEL,
		},
		Logging: LoggingConfig{
			Level:           "INFO",
			ErrorSampleRate: 1,
			ServiceName:     "numclass",
		},
	}
}

// Load reads configuration in order of increasing precedence: defaults, the
// YAML file at path, NUMCLASS_ environment variables, then PORT.
// An empty path reads DefaultPath only if it exists.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	cfg.Finalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envKey maps NUMCLASS_FUNFACT__BASE_URL to funfact.base_url
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Finalize fills list defaults that cannot be pre-populated before decoding
// and normalizes the policy engine name
func (c *Config) Finalize() {
	if len(c.CORS.Origins) == 0 {
		c.CORS.Origins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
	c.Policy.Engine = strings.ToLower(strings.TrimSpace(c.Policy.Engine))
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server.port is required"))
	}

	durations := map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.idle_timeout":     c.Server.IdleTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"server.request_timeout":  c.Server.RequestTimeout,
		"funfact.timeout":         c.FunFact.Timeout,
	}
	for name, d := range durations {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	switch c.Policy.Engine {
	case PolicyCEL:
	case PolicyStandard:
		if len(c.Policy.Rules) > 0 {
			errs = append(errs, errors.New("policy.rules require policy.engine \"cel\""))
		}
	default:
		errs = append(errs, fmt.Errorf("policy.engine must be %q or %q, got %q", PolicyCEL, PolicyStandard, c.Policy.Engine))
	}

	if c.FunFact.Enabled && c.FunFact.BaseURL == "" {
		errs = append(errs, errors.New("funfact.base_url is required when fun facts are enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Options converts the logging section into logger setup options
func (l LoggingConfig) Options() logger.Options {
	return logger.Options{
		Level:           l.Level,
		ErrorSampleRate: l.ErrorSampleRate,
		OTELEnabled:     l.OTELEnabled,
		ServiceName:     l.ServiceName,
	}
}
