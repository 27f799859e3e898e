package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = "highscores.yaml"

// Config holds the CLI settings. Loaded from highscores.yaml if present.
type Config struct {
	Profile  string `yaml:"profile"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`

	// Local selects the badger store. DB is its directory.
	Local bool   `yaml:"local"`
	DB    string `yaml:"db"`

	Schema string `yaml:"schema"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// loadConfig reads the config at path, or searches for highscores.yaml when
// path is empty. A missing file found by searching is not an error. It returns
// the path that was read, if any.
func loadConfig(path string) (Config, string, error) {
	cfg := Config{LogLevel: defaultLogLevel, LogFormat: defaultLogFormat}
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return cfg, "", nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, "", fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, "", fmt.Errorf("parse config %s: %w", path, err)
	}
	// relative paths in the file are relative to the file
	dir := filepath.Dir(path)
	cfg.DB = resolvePath(dir, cfg.DB)
	cfg.Schema = resolvePath(dir, cfg.Schema)
	return cfg, path, nil
}

// merge overrides c with every flag the user set explicitly.
func (c *Config) merge(flags Config, changed func(name string) bool) {
	if changed("profile") {
		c.Profile = flags.Profile
	}
	if changed("region") {
		c.Region = flags.Region
	}
	if changed("endpoint") {
		c.Endpoint = flags.Endpoint
	}
	if changed("local") {
		c.Local = flags.Local
	}
	if changed("db") {
		c.DB = flags.DB
	}
	if changed("schema") {
		c.Schema = flags.Schema
	}
	if changed("log-level") {
		c.LogLevel = flags.LogLevel
	}
	if changed("log-format") {
		c.LogFormat = flags.LogFormat
	}
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// findConfigFile searches for highscores.yaml walking up from current directory.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}
