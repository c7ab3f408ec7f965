package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Environment variables read once at startup.
const (
	envModel = "QWEN_MODEL"
	envPort  = "QWEN_SERVER_PORT"
)

// Config is the optional config file (~/.config/qwend/config.yaml).
// Port is a pointer so "not set" can be told apart from zero.
type Config struct {
	Model     string `yaml:"model"`
	Port      *int64 `yaml:"port"`
	CacheDir  string `yaml:"cache_dir"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "qwend", "config.yaml")
}

// LoadConfig reads the config file. A missing or unreadable file yields a
// zero Config.
func LoadConfig() Config {
	return loadConfigFile(configPath())
}

func loadConfigFile(path string) Config {
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyServeConfig fills serve variables from the config file and then the
// process environment, but only where the CLI flag was not set explicitly.
// Precedence: flag > environment > config file > built-in default.
func applyServeConfig(c *cli.Command, cfg Config, model *string, port *int64, cacheDir *string) {
	if !c.IsSet("model") {
		if cfg.Model != "" {
			*model = cfg.Model
		}
		if v := os.Getenv(envModel); v != "" {
			*model = v
		}
	}
	if !c.IsSet("port") {
		if cfg.Port != nil {
			*port = *cfg.Port
		}
		if v := os.Getenv(envPort); v != "" {
			if p, err := strconv.ParseInt(v, 10, 64); err == nil {
				*port = p
			}
		}
	}
	if cfg.CacheDir != "" && !c.IsSet("cache-dir") {
		*cacheDir = cfg.CacheDir
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}
