// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	API      APIConfig      `toml:"api"`
	Camera   CameraConfig   `toml:"camera"`
	Speech   SpeechConfig   `toml:"speech"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	StartSign      *string `toml:"start-sign"`
	StudentID      *string `toml:"student-id"`
	HistoryCap     *int    `toml:"history-cap"`
	PredictionsCap *int    `toml:"predictions-cap"`
	Catalog        *string `toml:"catalog"`
}

// APIConfig maps the remote API settings.
type APIConfig struct {
	URL         *string `toml:"url"`
	PredictPath *string `toml:"predict-path"`
	LogTimeout  *string `toml:"log-timeout"`
}

// CameraConfig maps camera device settings.
type CameraConfig struct {
	Device  *string `toml:"device"`
	Dir     *string `toml:"dir"`
	Command *string `toml:"command"`
}

// SpeechConfig maps text-to-speech settings.
type SpeechConfig struct {
	Command *string  `toml:"command"`
	Voice   *string  `toml:"voice"`
	Lang    *string  `toml:"lang"`
	Rate    *float64 `toml:"rate"`
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
