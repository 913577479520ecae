// ABOUTME: Application configuration loading and saving
// ABOUTME: TOML config file with defaults for every key
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	MonitoredDirectory          string `toml:"monitored_directory"`
	StoragePath                 string `toml:"storage_path"`
	WhisperModel                string `toml:"whisper_model"`
	SampleRate                  int    `toml:"sample_rate"`
	MaxConcurrentTranscriptions int    `toml:"max_concurrent_transcriptions"`
	UploadTempPath              string `toml:"upload_temp_path"`
	FTSEnabled                  bool   `toml:"fts_enabled"`
	ItemsPerPage                int    `toml:"items_per_page"`
	MaxPerPage                  int    `toml:"max_per_page"`
	ExcerptLength               int    `toml:"excerpt_length"`
	DefaultLanguage             string `toml:"default_language"`
	ListenAddr                  string `toml:"listen_addr"`
	IngestLogFormat             string `toml:"ingest_log_format"`
}

// Default returns a Config with every field set to its default value.
func Default() Config {
	return Config{
		MonitoredDirectory:          "./incoming",
		StoragePath:                 "./data/audio",
		WhisperModel:                "base",
		SampleRate:                  16000,
		MaxConcurrentTranscriptions: 2,
		UploadTempPath:              "./data/uploads",
		FTSEnabled:                  true,
		ItemsPerPage:                20,
		MaxPerPage:                  100,
		ExcerptLength:               200,
		DefaultLanguage:             "auto",
		ListenAddr:                  "127.0.0.1:8000",
		IngestLogFormat:             "markdown",
	}
}

// Load reads the config file at path, falling back to defaults for
// missing keys. A missing file is not an error; every field keeps its
// default.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Default(), fmt.Errorf("decode config %s: %w", path, err)
	}

	// Invalid values fall back to defaults rather than failing startup
	def := Default()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.MaxConcurrentTranscriptions <= 0 {
		cfg.MaxConcurrentTranscriptions = def.MaxConcurrentTranscriptions
	}
	if cfg.ItemsPerPage <= 0 {
		cfg.ItemsPerPage = def.ItemsPerPage
	}
	if cfg.MaxPerPage <= 0 {
		cfg.MaxPerPage = def.MaxPerPage
	}
	if cfg.ExcerptLength <= 0 {
		cfg.ExcerptLength = def.ExcerptLength
	}

	return cfg, nil
}

// Save writes cfg to path atomically (temp file then rename), so a
// crash mid-write never leaves a truncated config behind.
func Save(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil { //nolint:gosec // Standard directory permissions for user data
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vox-config-*")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("encode config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp config: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace config: %w", err)
	}

	return nil
}

// DBPath returns the metadata database path under the storage root.
func (c Config) DBPath() string {
	return filepath.Join(c.StoragePath, "metadata.db")
}
