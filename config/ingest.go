package config

import (
	"errors"
)

type GeoConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint" default:"https://ipapi.co"`
	// Timeout bounds how long a request waits for the lookup; LookupTimeout
	// bounds the lookup itself once it keeps running in the background.
	Timeout       int64 `yaml:"timeout" json:"timeout" default:"2000"` // milliseconds
	LookupTimeout int64 `yaml:"lookup_timeout" json:"lookup_timeout" default:"10000" envconfig:"LOOKUP_TIMEOUT"` // milliseconds
}

func (cfg GeoConfig) Validate() error {
	if cfg.Endpoint == "" {
		return errors.New("endpoint cannot be empty")
	}
	if cfg.Timeout <= 0 {
		return errors.New("timeout must be a positive value")
	}
	if cfg.LookupTimeout < cfg.Timeout {
		return errors.New("lookup_timeout cannot be less than timeout")
	}
	return nil
}

type IngestConfig struct {
	Listen             string    `yaml:"listen" json:"listen" default:"0.0.0.0:9601"`
	Secret             string    `yaml:"secret" json:"-"`
	TimeoutRead        int64     `yaml:"timeout_read" json:"timeout_read" default:"10" envconfig:"TIMEOUT_READ"`
	TimeoutWrite       int64     `yaml:"timeout_write" json:"timeout_write" default:"10" envconfig:"TIMEOUT_WRITE"`
	MaxRequestBodySize int64     `yaml:"max_request_body_size" json:"max_request_body_size" default:"1048576" envconfig:"MAX_REQUEST_BODY_SIZE"`
	Geo                GeoConfig `yaml:"geo" json:"geo" envconfig:"GEO"`
}

func (cfg IngestConfig) Validate() error {
	if cfg.TimeoutRead < 0 {
		return errors.New("timeout_read cannot be negative value")
	}
	if cfg.TimeoutWrite < 0 {
		return errors.New("timeout_write cannot be negative value")
	}
	if cfg.MaxRequestBodySize < 0 {
		return errors.New("max_request_body_size cannot be negative value")
	}
	return cfg.Geo.Validate()
}
