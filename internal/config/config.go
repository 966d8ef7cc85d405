package config

import (
	"fmt"

	"github.com/dooshek/wakeful/internal/fileops"
	"github.com/dooshek/wakeful/internal/logger"
	"github.com/dooshek/wakeful/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	configFilename = "wakeful.yaml"

	// DefaultResetIntervalSec is the legacy strategy timer period.
	DefaultResetIntervalSec = 15

	// MinResetIntervalSec guards against a zero or negative ticker period.
	MinResetIntervalSec = 1
)

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() *types.Config {
	return &types.Config{
		Inhibit: types.InhibitConfig{
			Strategy:         types.StrategyAuto,
			Reason:           "wakeful is keeping the session awake",
			ResetIntervalSec: DefaultResetIntervalSec,
			Notifications:    true,
		},
		Log: types.LogConfig{
			Level: "info",
		},
	}
}

func LoadConfig() (*types.Config, error) {
	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file operations: %w", err)
	}

	if err := fileOps.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := fileOps.LoadConfig(configFilename)
	if err != nil {
		if err == fileops.ErrConfigNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config types.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	Normalize(&config)
	return &config, nil
}

func SaveConfig(config *types.Config) error {
	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		return fmt.Errorf("failed to initialize file operations: %w", err)
	}

	// Try to load existing config first
	existingConfig, err := LoadConfig()
	if err != nil {
		// Just log the error but continue with new config
		logger.Warnf("Failed to load existing config: %v", err)
	} else if existingConfig != nil {
		// We have an existing config, merge the new settings into it
		mergeConfigs(existingConfig, config)
		config = existingConfig
	}

	// Marshal the config to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Save the config using fileOps
	if err := fileOps.SaveConfig(configFilename, data); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Normalize fills in defaults for unset or invalid fields
func Normalize(config *types.Config) {
	defaults := DefaultConfig()

	if !config.Inhibit.Strategy.IsValid() {
		if config.Inhibit.Strategy != "" {
			logger.Warnf("Unknown strategy %q in config, falling back to auto", config.Inhibit.Strategy)
		}
		config.Inhibit.Strategy = defaults.Inhibit.Strategy
	}
	if config.Inhibit.Reason == "" {
		config.Inhibit.Reason = defaults.Inhibit.Reason
	}
	if config.Inhibit.ResetIntervalSec < MinResetIntervalSec {
		config.Inhibit.ResetIntervalSec = defaults.Inhibit.ResetIntervalSec
	}
	if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}
}

// mergeConfigs merges the sourceConfig into targetConfig, preserving existing values in targetConfig
// that are not explicitly set in sourceConfig
func mergeConfigs(targetConfig, sourceConfig *types.Config) {
	if sourceConfig.Inhibit.Strategy != "" {
		targetConfig.Inhibit.Strategy = sourceConfig.Inhibit.Strategy
	}
	if sourceConfig.Inhibit.Reason != "" {
		targetConfig.Inhibit.Reason = sourceConfig.Inhibit.Reason
	}
	if sourceConfig.Inhibit.ResetIntervalSec != 0 {
		targetConfig.Inhibit.ResetIntervalSec = sourceConfig.Inhibit.ResetIntervalSec
	}
	targetConfig.Inhibit.Notifications = sourceConfig.Inhibit.Notifications

	if sourceConfig.Log.Level != "" {
		targetConfig.Log.Level = sourceConfig.Log.Level
	}
	if sourceConfig.Log.Filename != "" {
		targetConfig.Log.Filename = sourceConfig.Log.Filename
	}
}
