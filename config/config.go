package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kastheco/layerstack/log"
)

const (
	ConfigFileName = "config.toml"
	// ModeEnv overrides the configured mode.
	ModeEnv = "LAYERSTACK_MODE"

	ModeDevelopment = "development"
	ModeProduction  = "production"

	defaultDebugKey = "layers"
	auditDBName     = "audit.db"
)

// configDirOverride lets tests point GetConfigDir at a temp directory.
var configDirOverride string

// GetConfigDir returns the path to the application's configuration directory,
// ~/.config/layerstack.
func GetConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "layerstack"), nil
}

// Config represents the application configuration.
type Config struct {
	// Mode is "development" or "production". Production disables the debug
	// namespace.
	Mode string `toml:"mode" json:"mode"`
	// DebugKey names the devtools namespace entry for the layer stack.
	DebugKey string `toml:"debug_key" json:"debug_key"`
	// TelemetryEnabled controls whether crash reporting via Sentry is active.
	// Defaults to true when not set.
	TelemetryEnabled *bool `toml:"telemetry_enabled,omitempty" json:"telemetry_enabled,omitempty"`
	// AuditDB is the sqlite database layer events are recorded to. Empty
	// disables auditing.
	AuditDB string `toml:"audit_db" json:"audit_db"`
	// Metrics prints a prometheus exposition after each simulation.
	Metrics bool `toml:"metrics" json:"metrics"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	trueVal := true
	auditDB := ""
	if dir, err := GetConfigDir(); err == nil {
		auditDB = filepath.Join(dir, auditDBName)
	} else {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
	}
	return &Config{
		Mode:             ModeDevelopment,
		DebugKey:         defaultDebugKey,
		TelemetryEnabled: &trueVal,
		AuditDB:          auditDB,
	}
}

// IsProduction reports whether the effective mode is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Mode, ModeProduction)
}

// IsTelemetryEnabled returns whether Sentry telemetry is enabled.
// Defaults to true when the field is not set.
func (c *Config) IsTelemetryEnabled() bool {
	if c.TelemetryEnabled == nil {
		return true
	}
	return *c.TelemetryEnabled
}

// Validate rejects modes other than development and production.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case ModeDevelopment, ModeProduction:
		return nil
	default:
		return fmt.Errorf("invalid mode %q: want %s or %s", c.Mode, ModeDevelopment, ModeProduction)
	}
}

// applyEnv lets LAYERSTACK_MODE win over the file.
func (c *Config) applyEnv() {
	if mode := strings.TrimSpace(os.Getenv(ModeEnv)); mode != "" {
		c.Mode = strings.ToLower(mode)
	}
}

// fillDefaults fills fields a partial file left empty.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	if c.DebugKey == "" {
		c.DebugKey = def.DebugKey
	}
}

// LoadTOMLConfigFrom reads and validates the config at path. Unlike
// LoadConfig it reports every failure.
func LoadTOMLConfigFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadConfig loads the config from the config directory. It never fails: a
// missing file is created with defaults and a broken one is logged and
// replaced by defaults for this run.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return withEnv(DefaultConfig())
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	cfg, err := LoadTOMLConfigFrom(configPath)
	if err == nil {
		return cfg
	}
	if errors.Is(err, os.ErrNotExist) {
		defaultCfg := DefaultConfig()
		if saveErr := saveConfig(defaultCfg); saveErr != nil {
			log.WarningLog.Printf("failed to save default config: %v", saveErr)
		}
		return withEnv(defaultCfg)
	}

	log.WarningLog.Printf("failed to load config, using defaults: %v", err)
	return withEnv(DefaultConfig())
}

// withEnv applies the environment to a fallback config. An unusable mode
// from the environment is dropped in favour of development.
func withEnv(c *Config) *Config {
	c.applyEnv()
	if err := c.Validate(); err != nil {
		log.WarningLog.Printf("%s: %v, using %s", ModeEnv, err, ModeDevelopment)
		c.Mode = ModeDevelopment
	}
	return c
}

// saveConfig saves the configuration to disk
func saveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(configDir, ConfigFileName), buf.Bytes(), 0644)
}

// SaveConfig exports the saveConfig function for use by other packages
func SaveConfig(config *Config) error {
	return saveConfig(config)
}
