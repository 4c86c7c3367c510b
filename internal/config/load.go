package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var ErrConfigNotFound = errors.New("config not found")

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	voicelinkDir := filepath.Join(configDir, "voicelink")
	if err := os.MkdirAll(voicelinkDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(voicelinkDir, "config.toml"), nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

// LoadFile decodes the file at path on top of DefaultConfig.
func LoadFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s (run voicelink configure)", ErrConfigNotFound, configPath)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	log.Printf("Config: loading configuration from %s", configPath)
	config := DefaultConfig()
	meta, err := toml.DecodeFile(configPath, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Printf("Config: ignoring unknown keys: %s", strings.Join(keys, ", "))
	}

	if config.Providers == nil {
		config.Providers = make(map[string]ProviderConfig)
	}
	config.Translation.Target = normalizeTarget(config.Translation.Target)

	log.Printf("Config: configuration loaded successfully")
	return config, nil
}

func normalizeTarget(target string) string {
	t := strings.ToLower(strings.TrimSpace(target))
	if t == "none" || t == "off" {
		return ""
	}
	return t
}

// Save writes config to the default path.
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(configPath, config)
}

func SaveDefaultConfig() error {
	return Save(DefaultConfig())
}

// SaveFile renders config as commented TOML. Provider keys are written with
// owner-only permissions.
func SaveFile(configPath string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(render(config)), 0600); err != nil {
		return fmt.Errorf("failed to write config content: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	log.Printf("Config: saved configuration to %s", configPath)
	return nil
}
