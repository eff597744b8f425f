// Package config loads the player's YAML configuration, following the
// teacher's settings.yml convention: a single struct with
// "yaml:...,omitempty" tags, a documented zero-value default, and an
// atomic write-then-rename on save.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the tunables a Player consults at load time. The zero
// value is valid: no config file is required to play a movie.
type Config struct {
	// CacheWindowMicros is the default cache half-window either side
	// of "now", in AV_TIME_BASE (microsecond) units. Zero means the
	// Player's own built-in default applies.
	CacheWindowMicros int `yaml:"cache_window_us,omitempty"`
	// FetchTimeoutMicros is the default packet-fetch timeout. Zero
	// means the Player's built-in default (30ms) applies.
	FetchTimeoutMicros int `yaml:"fetch_timeout_us,omitempty"`
	// OutputDevice names a preferred audio output device. It is read
	// and saved with the rest of the file, but the Player does not
	// consult it: audio always goes to the sink's default output.
	OutputDevice string `yaml:"output_device,omitempty"`
	// ResumeStorePath is the sqlite database path used to persist
	// resume-on-reload position records. Empty disables the feature.
	ResumeStorePath string `yaml:"resume_store_path,omitempty"`
}

// Load reads and parses path. A missing file is not an error: Load
// returns the zero-value Config, matching the documented default.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path, via a temp file and rename so a crash
// mid-write never leaves a truncated config on disk.
func Save(path string, cfg Config) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	if err := enc.Encode(&cfg); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
