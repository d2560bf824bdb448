package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Game   GameConfig   `mapstructure:"game"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig holds the listen settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// GameConfig holds gameplay policy settings
type GameConfig struct {
	// ColorPolicy decides the first joiner's side when no preference is
	// supplied: "white" or "random"
	ColorPolicy string `mapstructure:"color_policy"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from an optional config.yaml and CHESSROOM_*
// environment variables, with env taking precedence
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("game.color_policy", "white")
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("CHESSROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; env and defaults suffice
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Game.ColorPolicy != "white" && cfg.Game.ColorPolicy != "random" {
		return nil, fmt.Errorf("invalid color_policy %q: must be 'white' or 'random'", cfg.Game.ColorPolicy)
	}

	return &cfg, nil
}
