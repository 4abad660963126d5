package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the structure of config.yml used by the tool.
// Only the fields currently needed by commands are modeled.
type Config struct {
	Climatiq struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"climatiq"`
	Metadata struct {
		Path string `yaml:"path"`
	} `yaml:"metadata"`
	Web struct {
		Addr  string `yaml:"addr"`
		UIDir string `yaml:"ui_dir"`
	} `yaml:"web"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	var c Config
	c.Climatiq.BaseURL = "https://api.climatiq.io/data/v1/estimate"
	c.Climatiq.TimeoutSeconds = 15
	c.Metadata.Path = "./metadata.json"
	c.Web.Addr = ":8080"
	c.Web.UIDir = "./ui/dist"
	return &c
}

// Load parses the YAML configuration file at path. Fields left empty in the
// file keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	slog.Info(fmt.Sprintf("Loaded config: %s", path))
	return c, nil
}

// Resolve loads the config file pointed to by CONFIG_PATH (default
// ./config.yml). A missing file is fine and yields the defaults.
func Resolve() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config.yml"
	}
	c, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("config.defaults", "path", path)
			return Default(), nil
		}
		return nil, err
	}
	return c, nil
}

// APIKey reads the estimation API credential from the environment. An empty
// result is a user-visible configuration error for any network operation.
func APIKey() string {
	return os.Getenv("API_KEY")
}
