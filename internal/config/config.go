// Package config manages application-level configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shini4i/moninet/internal/fileutil"
	"github.com/shini4i/moninet/internal/stats"
	"github.com/shini4i/moninet/internal/usage"
)

const (
	// AppName is the application identifier used for XDG paths.
	AppName = "moninet"
	// ConfigFileName is the name of the main configuration file.
	ConfigFileName = "config.json"
	// DefaultSampleIntervalMS is the default time between counter reads.
	DefaultSampleIntervalMS = 1000
)

// Config represents the application configuration.
type Config struct {
	SampleIntervalMS  int      `json:"sample_interval_ms"`
	SpeedUnit         string   `json:"speed_unit"`
	ShowSpeed         bool     `json:"show_speed"`
	ShowTotalUsage    bool     `json:"show_total_usage"`
	Interfaces        []string `json:"interfaces,omitempty"`
	UsageFile         string   `json:"usage_file,omitempty"`
	MetricsAddr       string   `json:"metrics_addr,omitempty"`
	ShowNotifications bool     `json:"show_notifications"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SampleIntervalMS:  DefaultSampleIntervalMS,
		SpeedUnit:         string(stats.UnitMegabytes),
		ShowSpeed:         true,
		ShowTotalUsage:    false,
		ShowNotifications: true,
	}
}

// SamplePeriod returns the sample interval as a duration.
func (c *Config) SamplePeriod() time.Duration {
	return time.Duration(c.SampleIntervalMS) * time.Millisecond
}

// Unit returns the configured speed unit. Validate guarantees it parses.
func (c *Config) Unit() stats.Unit {
	unit, err := stats.ParseUnit(c.SpeedUnit)
	if err != nil {
		return stats.UnitMegabytes
	}
	return unit
}

// View returns the display toggles.
func (c *Config) View() stats.View {
	return stats.View{ShowSpeed: c.ShowSpeed, ShowTotalUsage: c.ShowTotalUsage}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cfg := *c
	if c.Interfaces != nil {
		cfg.Interfaces = append([]string(nil), c.Interfaces...)
	}
	return &cfg
}

// Paths holds the resolved configuration and data locations.
type Paths struct {
	ConfigDir  string
	ConfigFile string
	DataDir    string
	UsageFile  string
}

// GetPaths returns the configuration paths following XDG Base Directory spec.
func GetPaths() (*Paths, error) {
	homeDir, homeErr := os.UserHomeDir()

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if homeErr != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", homeErr)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if homeErr != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", homeErr)
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}

	return NewPaths(filepath.Join(configHome, AppName), filepath.Join(dataHome, AppName)), nil
}

// NewPaths builds paths rooted at explicit config and data directories.
func NewPaths(configDir, dataDir string) *Paths {
	return &Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, ConfigFileName),
		DataDir:    dataDir,
		UsageFile:  filepath.Join(dataDir, usage.DefaultFileName),
	}
}

// EnsurePaths creates all necessary directories.
func (p *Paths) EnsurePaths() error {
	if err := os.MkdirAll(p.ConfigDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.MkdirAll(p.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Load reads the configuration from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to disk atomically.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fileutil.AtomicWrite(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleIntervalMS <= 0 {
		return fmt.Errorf("sample interval must be positive")
	}
	if _, err := stats.ParseUnit(c.SpeedUnit); err != nil {
		return fmt.Errorf("invalid speed unit: %w", err)
	}
	return nil
}

// Manager provides high-level configuration management.
// It is safe for concurrent use from multiple goroutines.
type Manager struct {
	paths  *Paths       // Immutable after construction
	config *Config      // Protected by mu
	mu     sync.RWMutex // Protects config only
}

// NewManager creates a configuration manager using the XDG locations.
func NewManager() (*Manager, error) {
	paths, err := GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}
	return NewManagerWithPaths(paths)
}

// NewManagerWithPaths creates a configuration manager for explicit paths.
// It ensures the directories exist, then loads and validates the configuration.
func NewManagerWithPaths(paths *Paths) (*Manager, error) {
	if err := paths.EnsurePaths(); err != nil {
		return nil, fmt.Errorf("failed to create config directories: %w", err)
	}

	cfg, err := Load(paths.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", paths.ConfigFile, err)
	}

	return &Manager{
		paths:  paths,
		config: cfg,
	}, nil
}

// GetConfig returns a copy of the current configuration.
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Clone()
}

// GetConfigDir returns the path to the configuration directory.
func (m *Manager) GetConfigDir() string {
	return m.paths.ConfigDir
}

// UsageFile returns where the usage record lives: the configured override if
// set, otherwise the default location in the data directory.
func (m *Manager) UsageFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config.UsageFile != "" {
		return m.config.UsageFile
	}
	return m.paths.UsageFile
}

// SaveConfig saves the current configuration to disk.
func (m *Manager) SaveConfig() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Save(m.paths.ConfigFile, m.config)
}

// UpdateField atomically updates the config using a mutator function.
// If validation fails, the original config is preserved.
func (m *Manager) UpdateField(mutator func(cfg *Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	configCopy := m.config.Clone()
	mutator(configCopy)
	if err := configCopy.Validate(); err != nil {
		return err
	}

	m.config = configCopy
	return Save(m.paths.ConfigFile, m.config)
}
