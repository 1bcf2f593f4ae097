package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tunnelctl/pkg/logging"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/tunnelctl"
	projectConfigDir = ".tunnelctl"
	configFileName   = "config.yaml"
)

// LoadConfig loads the tunnelctl configuration by layering default, user, and project settings.
func LoadConfig() (TunnelctlConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		logging.Warn("Config", "Could not determine user config path: %v", err)
	} else if config, err = overlayFile(config, userConfigPath); err != nil {
		return TunnelctlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		logging.Warn("Config", "Could not determine project config path: %v", err)
	} else if config, err = overlayFile(config, projectConfigPath); err != nil {
		return TunnelctlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	if err := config.Validate(); err != nil {
		return TunnelctlConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// LoadConfigFromPath layers a single explicit file over the defaults. Unlike
// the implicit locations, the file must exist.
func LoadConfigFromPath(path string) (TunnelctlConfig, error) {
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return TunnelctlConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	config := mergeConfigs(GetDefaultConfig(), overlay)
	if err := config.Validate(); err != nil {
		return TunnelctlConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func overlayFile(base TunnelctlConfig, path string) (TunnelctlConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return base, err
	}
	logging.Debug("Config", "Loaded %s", path)
	return mergeConfigs(base, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a TunnelctlConfig from a YAML file.
func loadConfigFromFile(filePath string) (TunnelctlConfig, error) {
	var config TunnelctlConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return TunnelctlConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return TunnelctlConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in the
// overlay leave the base untouched.
func mergeConfigs(base, overlay TunnelctlConfig) TunnelctlConfig {
	merged := base

	if len(overlay.Backend.Command) > 0 {
		merged.Backend.Command = append([]string(nil), overlay.Backend.Command...)
	}
	if len(overlay.Backend.Env) > 0 {
		env := make(map[string]string, len(base.Backend.Env)+len(overlay.Backend.Env))
		for k, v := range base.Backend.Env {
			env[k] = v
		}
		for k, v := range overlay.Backend.Env {
			env[k] = v
		}
		merged.Backend.Env = env
	}
	if overlay.Backend.WorkDir != "" {
		merged.Backend.WorkDir = overlay.Backend.WorkDir
	}
	if overlay.Backend.ProfilesFile != "" {
		merged.Backend.ProfilesFile = overlay.Backend.ProfilesFile
	}

	if overlay.State.LogCapacity != 0 {
		merged.State.LogCapacity = overlay.State.LogCapacity
	}
	if overlay.State.DefaultLogFilter != "" {
		merged.State.DefaultLogFilter = overlay.State.DefaultLogFilter
	}
	if overlay.State.ClearErrorOnRecovery != nil {
		v := *overlay.State.ClearErrorOnRecovery
		merged.State.ClearErrorOnRecovery = &v
	}

	if overlay.Logging.Level != "" {
		merged.Logging.Level = overlay.Logging.Level
	}

	if overlay.MCP.Name != "" {
		merged.MCP.Name = overlay.MCP.Name
	}
	if overlay.MCP.Version != "" {
		merged.MCP.Version = overlay.MCP.Version
	}
	if overlay.MCP.Transport != "" {
		merged.MCP.Transport = overlay.MCP.Transport
	}
	if overlay.MCP.Host != "" {
		merged.MCP.Host = overlay.MCP.Host
	}
	if overlay.MCP.Port != 0 {
		merged.MCP.Port = overlay.MCP.Port
	}

	return merged
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
