// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Server ServerConfig `toml:"server"`
	Study  StudyConfig  `toml:"study"`
	Stats  StatsConfig  `toml:"stats"`
}

// ServerConfig maps backend connection settings.
type ServerConfig struct {
	URL *string `toml:"url"`
}

// StudyConfig maps question generation defaults.
type StudyConfig struct {
	Count      *int    `toml:"count"`
	Kind       *string `toml:"kind"`
	Difficulty *string `toml:"difficulty"`
}

// StatsConfig maps analytics filter defaults.
type StatsConfig struct {
	Last *int `toml:"last"`
	Days *int `toml:"days"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
