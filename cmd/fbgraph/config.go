package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings that can be kept in a YAML file. Flags given on
// the command line override them.
type Config struct {
	BaseURL     string   `yaml:"base_url"`
	AccessToken string   `yaml:"access_token"`
	AppID       uint64   `yaml:"app_id"`
	Batch       bool     `yaml:"batch"`
	Lenient     bool     `yaml:"lenient"`
	Fields      []string `yaml:"fields"`
	Limit       uint64   `yaml:"limit"`
	Pages       int      `yaml:"pages"`
	LogLevel    string   `yaml:"log_level"`
}

// LoadConfig loads and parses a YAML config file from the given path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML data into a Config.
func ParseConfig(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Pages == 0 {
		c.Pages = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}
