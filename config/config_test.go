package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, LogLevelInfo, cfg.Log.Level)
	assert.Equal(t, LogFormatText, cfg.Log.Format)
	assert.Equal(t, "0.0.0.0:9600", cfg.Gateway.Listen)
	assert.Equal(t, "0.0.0.0:9601", cfg.Ingest.Listen)
	assert.Equal(t, RateLimitTypeMemory, cfg.Gateway.RateLimit.Type)
	assert.Equal(t, 100, cfg.Gateway.RateLimit.Quota)
	assert.Equal(t, int64(60), cfg.Gateway.RateLimit.Window)
	assert.Equal(t, int64(2000), cfg.Ingest.Geo.Timeout)
	assert.Equal(t, int64(10000), cfg.Ingest.Geo.LookupTimeout)
	assert.Equal(t, "https://ipapi.co", cfg.Ingest.Geo.Endpoint)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		desc     string
		mutate   func(cfg *Config)
		expected string
	}{
		{
			desc:     "invalid log level",
			mutate:   func(cfg *Config) { cfg.Log.Level = "verbose" },
			expected: "invalid level: verbose",
		},
		{
			desc:     "invalid database port",
			mutate:   func(cfg *Config) { cfg.Database.Port = 65536 },
			expected: "port must be in the range [0, 65535]",
		},
		{
			desc:     "invalid ratelimit type",
			mutate:   func(cfg *Config) { cfg.Gateway.RateLimit.Type = "session" },
			expected: "unknown type: session",
		},
		{
			desc:     "empty allowed origins",
			mutate:   func(cfg *Config) { cfg.Gateway.AllowedOrigins = nil },
			expected: "allowed_origins cannot be empty",
		},
		{
			desc:     "zero geo timeout",
			mutate:   func(cfg *Config) { cfg.Ingest.Geo.Timeout = 0 },
			expected: "timeout must be a positive value",
		},
		{
			desc:     "lookup timeout below race budget",
			mutate:   func(cfg *Config) { cfg.Ingest.Geo.LookupTimeout = 1000 },
			expected: "lookup_timeout cannot be less than timeout",
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			cfg := New()
			test.mutate(cfg)
			err := cfg.Validate()
			assert.EqualError(t, err, test.expected)
		})
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CLICKGATE_LOG_LEVEL", "debug")
	t.Setenv("CLICKGATE_GATEWAY_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CLICKGATE_GATEWAY_RATELIMIT_QUOTA", "10")

	cfg := New()
	assert.NoError(t, Load("", cfg))
	assert.Equal(t, LogLevelDebug, cfg.Log.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Gateway.AllowedOrigins)
	assert.Equal(t, 10, cfg.Gateway.RateLimit.Quota)
	assert.NoError(t, cfg.Validate())
}
