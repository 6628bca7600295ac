package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk layout: every Config field plus an optional
// connection URL that is applied on top of them.
type file struct {
	Config `yaml:",inline"`
	URL    string `yaml:"url"`
}

// Load reads a YAML configuration file. Unset fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data over Default().
func Parse(data []byte) (*Config, error) {
	f := file{Config: *Default()}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if f.URL != "" {
		if _, err := f.Config.ParseURL(f.URL); err != nil {
			return nil, err
		}
	}

	if err := f.Config.Validate(); err != nil {
		return nil, err
	}
	return &f.Config, nil
}
