package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the complete application configuration
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Backend    BackendConfig    `toml:"backend"`
	Audio      AudioConfig      `toml:"audio"`
	Extraction ExtractionConfig `toml:"extraction"`
	Library    LibraryConfig    `toml:"library"`
	Export     ExportConfig     `toml:"export"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name"`
	DataDir   string `toml:"data_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// BackendConfig holds settings for the up-sot extraction service
type BackendConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// AudioConfig holds capture settings
type AudioConfig struct {
	InputDevice         string `toml:"input_device"`
	SampleRate          int    `toml:"sample_rate"`
	BufferSize          int    `toml:"buffer_size"`
	VADMode             int    `toml:"vad_mode"`
	MinSpeechDurationMs int    `toml:"min_speech_duration_ms"`
}

// ExtractionConfig holds default extraction parameters
type ExtractionConfig struct {
	UpSotCount      int     `toml:"up_sots_count"`
	Sensitivity     float64 `toml:"sensitivity"`
	SortByRelevance bool    `toml:"sort_by_relevance"`
}

// LibraryConfig holds the local recording-library cache settings
type LibraryConfig struct {
	CachePath string   `toml:"cache_path"`
	CacheTTL  Duration `toml:"cache_ttl"`
}

// ExportConfig holds default export settings
type ExportConfig struct {
	TXT   bool   `toml:"txt"`
	PDF   bool   `toml:"pdf"`
	EDL   bool   `toml:"edl"`
	Email string `toml:"email"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	return &cfg, nil
}

// LoadFromEnv loads configuration from the RETROSCRIBE_CONFIG environment
// variable, falling back to the default locations. A missing config file is
// not an error: the defaults describe a usable local setup.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("RETROSCRIBE_CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./configs/retroscribe.toml",
			"./retroscribe.toml",
			filepath.Join(os.Getenv("HOME"), ".config/retroscribe/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg, nil
	}

	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "RetroScribe"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Backend
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:5000"
	}
	if c.Backend.Timeout.Duration == 0 {
		c.Backend.Timeout.Duration = 120 * time.Second
	}

	// Audio
	if c.Audio.InputDevice == "" {
		c.Audio.InputDevice = "default"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.BufferSize == 0 {
		c.Audio.BufferSize = 512
	}
	if c.Audio.VADMode == 0 {
		c.Audio.VADMode = 2
	}
	if c.Audio.MinSpeechDurationMs == 0 {
		c.Audio.MinSpeechDurationMs = 500
	}

	// Extraction
	if c.Extraction.UpSotCount == 0 {
		c.Extraction.UpSotCount = 10
	}
	if c.Extraction.Sensitivity == 0 {
		c.Extraction.Sensitivity = 0.5
	}

	// Library
	if c.Library.CachePath == "" {
		c.Library.CachePath = filepath.Join(c.General.DataDir, "library.db")
	}
	if c.Library.CacheTTL.Duration == 0 {
		c.Library.CacheTTL.Duration = 5 * time.Minute
	}

	// Export
	if !c.Export.TXT && !c.Export.PDF && !c.Export.EDL {
		c.Export.TXT = true
		c.Export.EDL = true
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Backend.BaseURL = os.ExpandEnv(c.Backend.BaseURL)
	c.Library.CachePath = os.ExpandEnv(c.Library.CachePath)
}
