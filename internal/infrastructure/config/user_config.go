package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfig holds colonyctl preferences stored in ~/.colony/colonyctl.yaml
type UserConfig struct {
	// Socket of the daemon to talk to when --socket is not given
	SocketPath string `yaml:"socket_path,omitempty"`

	// Output format for list commands: table or json
	Output string `yaml:"output,omitempty"`

	// Profession used by "worker spawn" when none is given
	DefaultProfession string `yaml:"default_profession,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a handler for the file under the user's home
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".colony", "colonyctl.yaml")), nil
}

// NewUserConfigHandlerAt creates a handler for an explicit file path
func NewUserConfigHandlerAt(path string) *UserConfigHandler {
	return &UserConfigHandler{configPath: path}
}

// Load reads the user config; a missing file yields an empty config
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	data, err := os.ReadFile(h.configPath)
	if os.IsNotExist(err) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}
	return &cfg, nil
}

// Save writes the user config, creating its directory
func (h *UserConfigHandler) Save(cfg *UserConfig) error {
	if err := os.MkdirAll(filepath.Dir(h.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}
	if err := os.WriteFile(h.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	return nil
}

// Set updates one preference by key
func (h *UserConfigHandler) Set(key, value string) error {
	cfg, err := h.Load()
	if err != nil {
		return err
	}
	switch key {
	case "socket_path":
		cfg.SocketPath = value
	case "output":
		if value != "table" && value != "json" {
			return fmt.Errorf("output must be table or json, got %q", value)
		}
		cfg.Output = value
	case "default_profession":
		cfg.DefaultProfession = value
	default:
		return fmt.Errorf("unknown preference %q", key)
	}
	return h.Save(cfg)
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
