package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CLICKGATE"

// Load populates cfg from an optional YAML file, then applies
// CLICKGATE_* environment variable overrides.
func Load(filename string, cfg *Config) error {
	if filename != "" {
		b, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return err
		}
	}
	return envconfig.Process(envPrefix, cfg)
}
