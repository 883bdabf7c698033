package config

import (
	"errors"
	"fmt"
	"slices"
)

type RateLimitType string

const (
	RateLimitTypeMemory RateLimitType = "memory"
	RateLimitTypeRedis  RateLimitType = "redis"
)

type RateLimitConfig struct {
	Type   RateLimitType `yaml:"type" json:"type" default:"memory"`
	Quota  int           `yaml:"quota" json:"quota" default:"100"`
	Window int64         `yaml:"window" json:"window" default:"60"` // seconds
}

func (cfg RateLimitConfig) Validate() error {
	if !slices.Contains([]RateLimitType{RateLimitTypeMemory, RateLimitTypeRedis}, cfg.Type) {
		return fmt.Errorf("unknown type: %s", cfg.Type)
	}
	if cfg.Quota <= 0 {
		return errors.New("quota must be a positive value")
	}
	if cfg.Window <= 0 {
		return errors.New("window must be a positive value")
	}
	return nil
}

type GatewayConfig struct {
	Listen             string          `yaml:"listen" json:"listen" default:"0.0.0.0:9600"`
	AllowedOrigins     []string        `yaml:"allowed_origins" json:"allowed_origins" default:"[\"https://yourdomain.com\"]" envconfig:"ALLOWED_ORIGINS"`
	IngestURL          string          `yaml:"ingest_url" json:"ingest_url" default:"http://127.0.0.1:9601/ingest" envconfig:"INGEST_URL"`
	IngestSecret       string          `yaml:"ingest_secret" json:"-" envconfig:"INGEST_SECRET"`
	TimeoutRead        int64           `yaml:"timeout_read" json:"timeout_read" default:"10" envconfig:"TIMEOUT_READ"`
	TimeoutWrite       int64           `yaml:"timeout_write" json:"timeout_write" default:"10" envconfig:"TIMEOUT_WRITE"`
	TimeoutForward     int64           `yaml:"timeout_forward" json:"timeout_forward" default:"30" envconfig:"TIMEOUT_FORWARD"`
	MaxRequestBodySize int64           `yaml:"max_request_body_size" json:"max_request_body_size" default:"1048576" envconfig:"MAX_REQUEST_BODY_SIZE"`
	RateLimit          RateLimitConfig `yaml:"ratelimit" json:"ratelimit" envconfig:"RATELIMIT"`
}

func (cfg GatewayConfig) Validate() error {
	if len(cfg.AllowedOrigins) == 0 {
		return errors.New("allowed_origins cannot be empty")
	}
	if cfg.IngestURL == "" {
		return errors.New("ingest_url cannot be empty")
	}
	if cfg.TimeoutRead < 0 {
		return errors.New("timeout_read cannot be negative value")
	}
	if cfg.TimeoutWrite < 0 {
		return errors.New("timeout_write cannot be negative value")
	}
	if cfg.TimeoutForward <= 0 {
		return errors.New("timeout_forward must be a positive value")
	}
	if cfg.MaxRequestBodySize < 0 {
		return errors.New("max_request_body_size cannot be negative value")
	}
	return cfg.RateLimit.Validate()
}
