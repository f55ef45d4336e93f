// Package config provides settings management for the macro recorder.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Settings represents the persisted application settings.
type Settings struct {
	// RateHz is the default sampling rate for new recordings in Hertz.
	RateHz int `json:"rate_hz"`

	// SpeedMultiplier is the default playback speed multiplier.
	SpeedMultiplier float64 `json:"speed_multiplier"`

	// MacroDir is the directory where recordings are stored.
	MacroDir string `json:"macro_dir"`

	// APIEnabled enables the HTTP API server for remote control.
	APIEnabled bool `json:"api_enabled"`

	// APIPort is the port for the API server.
	APIPort int `json:"api_port"`

	// APIToken is an optional authentication token for API requests.
	APIToken string `json:"api_token,omitempty"`

	// KeepAwake prevents the system from sleeping while a recording or
	// playback session is active.
	KeepAwake bool `json:"keep_awake"`
}

// DefaultSettings returns Settings with sensible defaults.
func DefaultSettings() *Settings {
	dir, err := dataDir()
	if err != nil {
		dir = "."
	}
	return &Settings{
		RateHz:          100,
		SpeedMultiplier: 1.0,
		MacroDir:        filepath.Join(dir, "macros"),
		APIEnabled:      false,
		APIPort:         18750,
		KeepAwake:       true,
	}
}

// Validate checks the settings for invalid values.
func (s *Settings) Validate() error {
	if s.RateHz <= 0 {
		return fmt.Errorf("rate_hz must be a positive integer, got %d", s.RateHz)
	}
	if s.SpeedMultiplier <= 0 {
		return fmt.Errorf("speed_multiplier must be positive, got %v", s.SpeedMultiplier)
	}
	if s.APIPort <= 0 || s.APIPort > 65535 {
		return fmt.Errorf("api_port out of range: %d", s.APIPort)
	}
	if s.MacroDir == "" {
		return fmt.Errorf("macro_dir must not be empty")
	}
	return nil
}

// Manager handles loading and saving settings.
type Manager struct {
	mu           sync.Mutex
	settingsPath string
	settings     *Settings
	onChanged    func()
}

// NewManager creates a settings manager backed by the platform user config
// directory.
func NewManager() (*Manager, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return NewManagerWithPath(filepath.Join(dir, "settings.json")), nil
}

// NewManagerWithPath creates a settings manager backed by the given file.
func NewManagerWithPath(path string) *Manager {
	return &Manager{
		settingsPath: path,
		settings:     DefaultSettings(),
	}
}

// dataDir returns the per-user application data directory.
func dataDir() (string, error) {
	const app = "macro-recorder"

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", app), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, app), nil
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", app), nil
	}
}

// Load reads the settings from disk. A missing file leaves the defaults in
// place.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.settingsPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	loaded := DefaultSettings()
	if err := json.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	m.settings = loaded
	if m.onChanged != nil {
		m.onChanged()
	}
	return nil
}

// Save writes the settings to disk.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.settingsPath, data, 0644)
}

// Get returns a copy of the current settings.
func (m *Manager) Get() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.settings
}

// Set replaces the current settings after validation.
func (m *Manager) Set(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.settings = &s
	onChanged := m.onChanged
	m.mu.Unlock()

	if onChanged != nil {
		onChanged()
	}
	return nil
}

// RegisterChangeCallback installs a callback invoked whenever the settings
// change.
func (m *Manager) RegisterChangeCallback(cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = cb
}
