// Package settings manages persistent user settings for the topobuild CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/newtron-network/topobuild/pkg/model"
	"github.com/newtron-network/topobuild/pkg/util"
)

// Settings holds persistent user preferences. Command-line flags override
// every field.
type Settings struct {
	// Workbook is the default workbook (CSV directory or YAML file)
	Workbook string `json:"workbook,omitempty"`

	// Inventory is the default YAML inventory file
	Inventory string `json:"inventory,omitempty"`

	// DefaultLagMode applies to LAG members whose row has no mode
	DefaultLagMode string `json:"default_lag_mode,omitempty"`

	// SkipMalformed skips malformed rows instead of aborting the table
	SkipMalformed bool `json:"skip_malformed,omitempty"`

	// SwitchesGroup receives the VLAN definitions
	SwitchesGroup string `json:"switches_group,omitempty"`

	LogLevel string `json:"log_level,omitempty"`

	// AuditLog is the JSON-lines audit file; empty disables auditing
	AuditLog string `json:"audit_log,omitempty"`
}

// Keys lists the settable keys in display order
var Keys = []string{"workbook", "inventory", "default_lag_mode", "skip_malformed", "switches_group", "log_level", "audit_log"}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "topobuild_settings.json"
	}
	return filepath.Join(home, ".topobuild", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks enumerated values
func (s *Settings) Validate() error {
	v := &util.ValidationBuilder{}
	if s.DefaultLagMode != "" && !model.LagMode(s.DefaultLagMode).Valid() {
		v.AddErrorf("default_lag_mode: unknown LAG mode %q", s.DefaultLagMode)
	}
	if s.LogLevel != "" {
		switch s.LogLevel {
		case "debug", "info", "warn", "warning", "error":
		default:
			v.AddErrorf("log_level: unknown level %q", s.LogLevel)
		}
	}
	return v.Build()
}

// Set assigns a setting by key. The settings are validated afterwards and
// left unchanged on error.
func (s *Settings) Set(key, value string) error {
	next := *s
	switch key {
	case "workbook":
		next.Workbook = value
	case "inventory":
		next.Inventory = value
	case "default_lag_mode", "lag_mode":
		next.DefaultLagMode = value
	case "skip_malformed":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("skip_malformed: %q is not a boolean", value)
		}
		next.SkipMalformed = b
	case "switches_group":
		next.SwitchesGroup = value
	case "log_level":
		next.LogLevel = value
	case "audit_log":
		next.AuditLog = value
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}

// Get returns a setting by key as a string
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "workbook":
		return s.Workbook, nil
	case "inventory":
		return s.Inventory, nil
	case "default_lag_mode", "lag_mode":
		return s.DefaultLagMode, nil
	case "skip_malformed":
		if !s.SkipMalformed {
			return "", nil
		}
		return "true", nil
	case "switches_group":
		return s.SwitchesGroup, nil
	case "log_level":
		return s.LogLevel, nil
	case "audit_log":
		return s.AuditLog, nil
	}
	return "", fmt.Errorf("unknown setting: %s", key)
}

// GetLagMode returns the default LAG mode (with fallback)
func (s *Settings) GetLagMode() model.LagMode {
	if s.DefaultLagMode != "" {
		return model.LagMode(s.DefaultLagMode)
	}
	return model.LagModeActive
}

// GetSwitchesGroup returns the VLAN group (with fallback)
func (s *Settings) GetSwitchesGroup() string {
	if s.SwitchesGroup != "" {
		return s.SwitchesGroup
	}
	return "switches"
}

// GetLogLevel returns the log level (with fallback)
func (s *Settings) GetLogLevel() string {
	if s.LogLevel != "" {
		return s.LogLevel
	}
	return "warn"
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
