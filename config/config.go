// Package config handles loading and saving the application settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName        = "wisp"
	configFileName = "config.json"
)

// Config is the persisted application configuration. It is handed to
// the transcription backend at start/load time; mutation only happens
// through Save, never while a backend start is in flight.
type Config struct {
	DeviceID    *int     `json:"device_id"` // nil = system default input
	SampleRate  int      `json:"sample_rate"`
	Model       string   `json:"model"`
	UseVAD      bool     `json:"use_vad"`
	Hotkey      string   `json:"hotkey"`
	OutputMode  string   `json:"output_mode"` // "clipboard" or "simulate_typing"
	TypingSpeed float64  `json:"typing_speed"`
	Providers   []string `json:"providers"`
}

func Default() Config {
	return Config{
		SampleRate:  16000,
		Model:       "nemo-parakeet-tdt-0.6b-v3",
		Hotkey:      "alt+space",
		OutputMode:  "clipboard",
		TypingSpeed: 0.01,
		Providers:   []string{"CPUExecutionProvider"},
	}
}

// Path returns the config file location under the user config dir.
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(base, appName, configFileName), nil
}

// Load reads the configuration, falling back to defaults when the file
// does not exist yet.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = Default().SampleRate
	}
	if cfg.Model == "" {
		cfg.Model = Default().Model
	}
	if cfg.Hotkey == "" {
		cfg.Hotkey = Default().Hotkey
	}
	if cfg.OutputMode == "" {
		cfg.OutputMode = Default().OutputMode
	}
	return cfg, nil
}

// Save persists the configuration, creating the directory as needed.
// The write goes through a temp file and rename so a crash mid-write
// never leaves a truncated config behind.
func (c Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
