package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Providers struct {
		PolymarketURL string `yaml:"polymarket_url"`
	} `yaml:"providers"`

	Defaults struct {
		Market     string `yaml:"market"`
		Timeframe  string `yaml:"timeframe"`
		PeriodDays int    `yaml:"period_days"`
	} `yaml:"defaults"`

	History struct {
		Enabled bool `yaml:"enabled"`
		Limit   int  `yaml:"limit"`
	} `yaml:"history"`
}

// DefaultConfig is what you get with no config.yaml on disk.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Providers.PolymarketURL = "https://api.polybacktest.com/v1"
	cfg.Defaults.Market = "BTC/USD"
	cfg.Defaults.Timeframe = "1h"
	cfg.Defaults.PeriodDays = 90
	cfg.History.Enabled = true
	cfg.History.Limit = 50
	return cfg
}

// LoadConfig searches the usual locations for config.yaml and falls back
// to defaults when none exists. Credentials never live here; the caller
// passes those in explicitly from its own environment handling.
func LoadConfig() (*Config, error) {
	// Resolve path relative to this file first
	_, filePath, _, ok := runtime.Caller(0)
	var basePath string
	if ok {
		basePath = filepath.Dir(filePath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	possiblePaths := []string{}
	if basePath != "" {
		possiblePaths = append(possiblePaths, filepath.Join(basePath, "config.yaml"))
	}
	possiblePaths = append(possiblePaths,
		filepath.Join(cwd, "Internal", "utils", "config", "config.yaml"),
		"Internal/utils/config/config.yaml",
		"config.yaml",
	)

	var data []byte
	found := false
	for _, path := range possiblePaths {
		data, err = os.ReadFile(path)
		if err == nil {
			found = true
			break
		}
	}

	if !found {
		return DefaultConfig(), nil
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
