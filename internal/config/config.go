package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete shopindex configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Index    IndexConfig    `yaml:"index" json:"index"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// DatabaseConfig configures the relational store.
type DatabaseConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path" json:"path"`
	// Driver is "sqlite" (pure Go, default) or "sqlite3" (CGO).
	Driver string `yaml:"driver" json:"driver"`
	// BusyTimeout is how long writers wait on a locked database (e.g. "5s").
	BusyTimeout string `yaml:"busy_timeout" json:"busy_timeout"`
	// CacheMB is the SQLite page cache size in MB (default: 64).
	CacheMB int `yaml:"cache_mb" json:"cache_mb"`
}

// IndexConfig configures the search index.
type IndexConfig struct {
	// ExpectedVersion overrides the built-in content version. 0 keeps it.
	ExpectedVersion int `yaml:"expected_version" json:"expected_version"`
	// EnrichedTokenizer is tried first when the index table is created.
	EnrichedTokenizer string `yaml:"enriched_tokenizer" json:"enriched_tokenizer"`
	// PlainTokenizer is used when the store rejects the enriched one.
	PlainTokenizer string `yaml:"plain_tokenizer" json:"plain_tokenizer"`
	// Prefixes are the FTS5 prefix index lengths (default: 2, 3, 4).
	Prefixes []int `yaml:"prefixes" json:"prefixes"`
	// RebuildOnStart forces a full rebuild on every bootstrap.
	RebuildOnStart bool `yaml:"rebuild_on_start" json:"rebuild_on_start"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	FilePath  string `yaml:"file_path" json:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

const (
	defaultEnrichedTokenizer = "unicode61 remove_diacritics 2 tokenchars '-_@.'"
	defaultPlainTokenizer    = "unicode61 remove_diacritics 1"
)

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Database: DatabaseConfig{
			Path:        DefaultDatabasePath(),
			Driver:      "sqlite",
			BusyTimeout: "5s",
			CacheMB:     64,
		},
		Index: IndexConfig{
			EnrichedTokenizer: defaultEnrichedTokenizer,
			PlainTokenizer:    defaultPlainTokenizer,
			Prefixes:          []int{2, 3, 4},
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// DefaultDataDir returns ~/.shopindex, or a temp directory without a home.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".shopindex")
	}
	return filepath.Join(home, ".shopindex")
}

// DefaultDatabasePath returns the default database file.
func DefaultDatabasePath() string {
	return filepath.Join(DefaultDataDir(), "shop.db")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/shopindex/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/shopindex/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shopindex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "shopindex", "config.yaml")
	}
	return filepath.Join(home, ".config", "shopindex", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	var cfg Config
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return &cfg, nil
}

// Load loads configuration from the specified directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/shopindex/config.yaml)
//  3. Project config (.shopindex.yaml in dir)
//  4. Environment variables (SHOPINDEX_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromFile loads .shopindex.yaml, or .shopindex.yml, from dir.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".shopindex.yaml", ".shopindex.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
// RebuildOnStart can only be switched on by a file; env can switch it off.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Database.Path != "" {
		c.Database.Path = expandHome(other.Database.Path)
	}
	if other.Database.Driver != "" {
		c.Database.Driver = other.Database.Driver
	}
	if other.Database.BusyTimeout != "" {
		c.Database.BusyTimeout = other.Database.BusyTimeout
	}
	if other.Database.CacheMB != 0 {
		c.Database.CacheMB = other.Database.CacheMB
	}

	if other.Index.ExpectedVersion != 0 {
		c.Index.ExpectedVersion = other.Index.ExpectedVersion
	}
	if other.Index.EnrichedTokenizer != "" {
		c.Index.EnrichedTokenizer = other.Index.EnrichedTokenizer
	}
	if other.Index.PlainTokenizer != "" {
		c.Index.PlainTokenizer = other.Index.PlainTokenizer
	}
	if len(other.Index.Prefixes) > 0 {
		c.Index.Prefixes = append([]int(nil), other.Index.Prefixes...)
	}
	if other.Index.RebuildOnStart {
		c.Index.RebuildOnStart = true
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.FilePath != "" {
		c.Logging.FilePath = expandHome(other.Logging.FilePath)
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
}

// applyEnvOverrides applies SHOPINDEX_* environment variable overrides.
// Unparsable numeric values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SHOPINDEX_DB_PATH"); v != "" {
		c.Database.Path = expandHome(v)
	}
	if v := os.Getenv("SHOPINDEX_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("SHOPINDEX_BUSY_TIMEOUT"); v != "" {
		c.Database.BusyTimeout = v
	}
	if v := os.Getenv("SHOPINDEX_CACHE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Database.CacheMB = n
		}
	}
	if v := os.Getenv("SHOPINDEX_INDEX_VERSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Index.ExpectedVersion = n
		}
	}
	if v := os.Getenv("SHOPINDEX_REBUILD_ON_START"); v != "" {
		c.Index.RebuildOnStart = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("SHOPINDEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SHOPINDEX_LOG_FILE"); v != "" {
		c.Logging.FilePath = expandHome(v)
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be 'sqlite' or 'sqlite3', got %s", c.Database.Driver)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if _, err := c.BusyTimeout(); err != nil {
		return fmt.Errorf("database.busy_timeout: %w", err)
	}
	if c.Database.CacheMB < 0 {
		return fmt.Errorf("database.cache_mb must be non-negative, got %d", c.Database.CacheMB)
	}

	if c.Index.ExpectedVersion < 0 {
		return fmt.Errorf("index.expected_version must be non-negative, got %d", c.Index.ExpectedVersion)
	}
	for _, p := range c.Index.Prefixes {
		if p < 1 || p > 999 {
			return fmt.Errorf("index.prefixes must be between 1 and 999, got %d", p)
		}
	}
	for name, tok := range map[string]string{
		"index.enriched_tokenizer": c.Index.EnrichedTokenizer,
		"index.plain_tokenizer":    c.Index.PlainTokenizer,
	} {
		if strings.TrimSpace(tok) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		if strings.Contains(tok, `"`) {
			return fmt.Errorf("%s must not contain double quotes", name)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
	return nil
}

// BusyTimeout parses Database.BusyTimeout. Empty means zero.
func (c *Config) BusyTimeout() (time.Duration, error) {
	if c.Database.BusyTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Database.BusyTimeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must be non-negative, got %s", d)
	}
	return d, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
