// Package config manages application configuration from files and environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	StartRow int    `mapstructure:"start_row"`
	Column   int    `mapstructure:"column"`
	Template string `mapstructure:"template"`

	Output struct {
		Dir   string `mapstructure:"dir"`
		Color bool   `mapstructure:"color"`
	} `mapstructure:"output"`

	Watch struct {
		DebounceMs int  `mapstructure:"debounce_ms"`
		Recursive  bool `mapstructure:"recursive"`
	} `mapstructure:"watch"`

	History struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"history"`
}

// Load reads the configuration from ~/.copykit/config.yaml and environment
// variables.
func Load() (*Config, error) {
	configDir := configDir()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	// Defaults
	viper.SetDefault("start_row", 1)
	viper.SetDefault("column", 1)
	viper.SetDefault("output.color", true)
	viper.SetDefault("watch.debounce_ms", 500)
	viper.SetDefault("history.enabled", true)

	// Environment variable overrides
	viper.SetEnvPrefix("COPYKIT")
	viper.AutomaticEnv()

	// Read config file (non-fatal if missing)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".copykit"
	}
	return filepath.Join(home, ".copykit")
}
