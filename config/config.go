package config

import (
	"encoding/json"

	"github.com/creasty/defaults"
)

// Config Configuration
type Config struct {
	Log      LogConfig      `yaml:"log" json:"log" envconfig:"LOG"`
	Database DatabaseConfig `yaml:"database" json:"database" envconfig:"DATABASE"`
	Redis    RedisConfig    `yaml:"redis" json:"redis" envconfig:"REDIS"`
	Gateway  GatewayConfig  `yaml:"gateway" json:"gateway" envconfig:"GATEWAY"`
	Ingest   IngestConfig   `yaml:"ingest" json:"ingest" envconfig:"INGEST"`
}

func (cfg Config) String() string {
	bytes, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (cfg Config) Validate() error {
	if err := cfg.Log.Validate(); err != nil {
		return err
	}
	if err := cfg.Database.Validate(); err != nil {
		return err
	}
	if err := cfg.Redis.Validate(); err != nil {
		return err
	}
	if err := cfg.Gateway.Validate(); err != nil {
		return err
	}
	if err := cfg.Ingest.Validate(); err != nil {
		return err
	}
	return nil
}

func New() *Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}
