package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Contains(t, cfg.CORS.AllowedMethods, "OPTIONS")
	assert.True(t, cfg.FunFact.Enabled)
	assert.Equal(t, "http://numbersapi.com", cfg.FunFact.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.FunFact.Timeout)
	assert.Equal(t, PolicyCEL, cfg.Policy.Engine)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("PORT", "")

	path := writeConfig(t, `
server:
  port: "8080"
  request_timeout: 3s
cors:
  origins:
    - https://example.com
funfact:
  enabled: false
  timeout: 500ms
policy:
  engine: CEL
  rules:
    - name: lucky
      expression: digit_sum == 7
      priority: 100
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
	assert.Equal(t, []string{"https://example.com"}, cfg.CORS.Origins)
	assert.False(t, cfg.FunFact.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.FunFact.Timeout)
	assert.Equal(t, PolicyCEL, cfg.Policy.Engine)
	require.Len(t, cfg.Policy.Rules, 1)
	assert.Equal(t, RuleConfig{Name: "lucky", Expression: "digit_sum == 7", Priority: 100}, cfg.Policy.Rules[0])
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "8080"
funfact:
  timeout: 1s
`)
	t.Setenv("PORT", "")
	t.Setenv("NUMCLASS_SERVER__PORT", "9090")
	t.Setenv("NUMCLASS_FUNFACT__TIMEOUT", "250ms")
	t.Setenv("NUMCLASS_FUNFACT__BASE_URL", "http://localhost:9999")
	t.Setenv("NUMCLASS_POLICY__ENGINE", "standard")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.FunFact.Timeout)
	assert.Equal(t, "http://localhost:9999", cfg.FunFact.BaseURL)
	assert.Equal(t, PolicyStandard, cfg.Policy.Engine)
}

// TestLoadPortEnv verifies the bare PORT variable wins over everything else
func TestLoadPortEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NUMCLASS_SERVER__PORT", "9090")
	t.Setenv("PORT", "4000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty port", func(c *Config) { c.Server.Port = " " }, "server.port"},
		{"zero timeout", func(c *Config) { c.FunFact.Timeout = 0 }, "funfact.timeout"},
		{"negative shutdown", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }, "server.shutdown_timeout"},
		{"unknown engine", func(c *Config) { c.Policy.Engine = "lua" }, "policy.engine"},
		{"rules without cel", func(c *Config) {
			c.Policy.Engine = PolicyStandard
			c.Policy.Rules = []RuleConfig{{Name: "x", Expression: "true"}}
		}, "policy.rules"},
		{"missing base url", func(c *Config) { c.FunFact.BaseURL = "" }, "funfact.base_url"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Finalize()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("NUMCLASS_SERVER__PORT"))
	assert.Equal(t, "funfact.base_url", envKey("NUMCLASS_FUNFACT__BASE_URL"))
	assert.Equal(t, "logging.error_sample_rate", envKey("NUMCLASS_LOGGING__ERROR_SAMPLE_RATE"))
}
