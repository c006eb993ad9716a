package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads server configuration.
// Search order: customPath -> ~/.blockduel/config.yaml -> ./configs/blockduel.yaml -> defaults
// STORAGE_TYPE and REDIS_URL environment variables override the file.
func Load(customPath string) (Config, error) {
	cfg := Default()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return applyEnvOverrides(cfg), nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return applyEnvOverrides(cfg), nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/blockduel.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return applyEnvOverrides(cfg), nil
		}
	}

	return applyEnvOverrides(cfg), nil
}

// applyEnvOverrides lets deployment environments steer the backends without
// editing the config file.
func applyEnvOverrides(cfg Config) Config {
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Storage.Redis.URL = v
		cfg.Transport.URL = v
	}
	return cfg
}

// userConfigPath returns the path to the user config file, or empty if home
// is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".blockduel", filename)
}
