package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// LASTMIX_LASTFM_API_KEY sets lastfm.api_key.
const EnvPrefix = "LASTMIX_"

type Config struct {
	DBPath string `koanf:"db_path"` // SQLite database (default: $XDG_DATA_HOME/lastmix/lastmix.db)

	Lastfm  LastfmConfig  `koanf:"lastfm"`
	Catalog CatalogConfig `koanf:"catalog"`
	Radio   RadioConfig   `koanf:"radio"`
	Drain   DrainConfig   `koanf:"drain"`
	Log     LogConfig     `koanf:"log"`
}

// LastfmConfig holds Last.fm API configuration.
type LastfmConfig struct {
	APIKey            string  `koanf:"api_key"`
	APISecret         string  `koanf:"api_secret"`
	RequestsPerSecond float64 `koanf:"requests_per_second"` // default: 5
	CacheTTLDays      int     `koanf:"cache_ttl_days"`      // persistent cache TTL (default: 7)
}

// CatalogConfig holds the track catalog (iTunes Search) configuration.
type CatalogConfig struct {
	BaseURL           string  `koanf:"base_url"`            // default: https://itunes.apple.com
	Storefront        string  `koanf:"storefront"`          // two-letter country code (default: us)
	RequestsPerSecond float64 `koanf:"requests_per_second"` // default: 0.33
	MatchThreshold    float64 `koanf:"match_threshold"`     // 0.0-1.0 (default: 0.8)
	SearchLimit       int     `koanf:"search_limit"`        // candidates per lookup (default: 10)
}

// RadioConfig holds station generation settings.
type RadioConfig struct {
	MaxRetryAttempts int `koanf:"max_retry_attempts"` // failed fetches before a key is dead (default: 3)
	AttemptsLimit    int `koanf:"attempts_limit"`     // consecutive failed picks before a build stops (default: 50)
	TagPageSize      int `koanf:"tag_page_size"`      // default: 200
	TagMaxPages      int `koanf:"tag_max_pages"`      // default: 100
	TagQuorum        int `koanf:"tag_quorum"`         // intersection size that stops paging (default: 5)
	LibraryPageSize  int `koanf:"library_page_size"`  // default: 200
	SimilarLimit     int `koanf:"similar_limit"`      // default: 100
	TopTracksLimit   int `koanf:"top_tracks_limit"`   // default: 50
	DefaultSize      int `koanf:"default_size"`       // default: 25
	TopUpThreshold   int `koanf:"topup_threshold"`    // remaining tracks that trigger a top-up (default: 5)
	TopUpBatch       int `koanf:"topup_batch"`        // tracks added per top-up (default: 10)
}

// DrainConfig holds background task settings.
type DrainConfig struct {
	Interval time.Duration `koanf:"interval"` // default: 500ms
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error (default: info)
	File  string `koanf:"file"`  // empty logs to stderr
}

var sections = []string{"lastfm", "catalog", "radio", "drain", "log"}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given files in order (last wins), then the environment.
// Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.DBPath != "" {
		cfg.DBPath = expandPath(cfg.DBPath)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	cfg.Catalog.BaseURL = strings.TrimSuffix(cfg.Catalog.BaseURL, "/")

	return cfg, nil
}

// envKey maps LASTMIX_RADIO_TAG_QUORUM to radio.tag_quorum.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(s, section+"_"); ok {
			return section + "." + rest
		}
	}
	return s
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/lastmix/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "lastmix", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if the Last.fm API is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != ""
}

// GetDBPath returns the database path, defaulting to the XDG data directory.
func (c *Config) GetDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	return xdg.DataFile(filepath.Join("lastmix", "lastmix.db"))
}

// GetLastfmConfig returns the Last.fm configuration with defaults applied.
func (c *Config) GetLastfmConfig() LastfmConfig {
	cfg := c.Lastfm

	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.CacheTTLDays <= 0 {
		cfg.CacheTTLDays = 7
	}

	return cfg
}

// GetCatalogConfig returns the catalog configuration with defaults applied.
func (c *Config) GetCatalogConfig() CatalogConfig {
	cfg := c.Catalog

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://itunes.apple.com"
	}
	if len(cfg.Storefront) != 2 {
		cfg.Storefront = "us"
	}
	cfg.Storefront = strings.ToLower(cfg.Storefront)
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 0.33
	}
	if cfg.MatchThreshold <= 0 || cfg.MatchThreshold > 1 {
		cfg.MatchThreshold = 0.8
	}
	if cfg.SearchLimit <= 0 || cfg.SearchLimit > 200 {
		cfg.SearchLimit = 10
	}

	return cfg
}

// GetRadioConfig returns the radio configuration with defaults applied.
func (c *Config) GetRadioConfig() RadioConfig {
	return c.Radio.WithDefaults()
}

// WithDefaults fills every unset or invalid field.
func (cfg RadioConfig) WithDefaults() RadioConfig {
	if cfg.MaxRetryAttempts <= 0 {
		cfg.MaxRetryAttempts = 3
	}
	if cfg.AttemptsLimit <= 0 {
		cfg.AttemptsLimit = 50
	}
	if cfg.TagPageSize <= 0 || cfg.TagPageSize > 1000 {
		cfg.TagPageSize = 200
	}
	if cfg.TagMaxPages <= 0 {
		cfg.TagMaxPages = 100
	}
	if cfg.TagQuorum <= 0 {
		cfg.TagQuorum = 5
	}
	if cfg.LibraryPageSize <= 0 || cfg.LibraryPageSize > 1000 {
		cfg.LibraryPageSize = 200
	}
	if cfg.SimilarLimit <= 0 {
		cfg.SimilarLimit = 100
	}
	if cfg.TopTracksLimit <= 0 {
		cfg.TopTracksLimit = 50
	}
	if cfg.DefaultSize <= 0 {
		cfg.DefaultSize = 25
	}
	if cfg.TopUpThreshold <= 0 {
		cfg.TopUpThreshold = 5
	}
	if cfg.TopUpBatch <= 0 {
		cfg.TopUpBatch = 10
	}

	return cfg
}

// GetDrainConfig returns the drain configuration with defaults applied.
func (c *Config) GetDrainConfig() DrainConfig {
	cfg := c.Drain
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	return cfg
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	cfg.Level = strings.ToLower(cfg.Level)
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		cfg.Level = "info"
	}
	return cfg
}
