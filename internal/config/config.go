package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	TCPAddr         string        `mapstructure:"tcp_addr" validate:"required"`
	HTTPAddr        string        `mapstructure:"http_addr"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	OutboxSize      int           `mapstructure:"outbox_size" validate:"min=1"`
	MaxLineLength   int           `mapstructure:"max_line_length" validate:"min=64"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	PingPeriod      time.Duration `mapstructure:"ping_period" validate:"min=0"`
	RateLimit       int           `mapstructure:"rate_limit" validate:"min=0"`
	RateInterval    time.Duration `mapstructure:"rate_interval" validate:"min=0"`
	Backpressure    string        `mapstructure:"backpressure" validate:"oneof=drop kick"`
	Secret          string        `mapstructure:"secret" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

const envPrefix = "LOBBY"

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default). A missing
// file is not an error: defaults and LOBBY_* variables still apply.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("tcp_addr", ":5000")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("outbox_size", 64)
	v.SetDefault("max_line_length", 4096)
	v.SetDefault("idle_timeout", "0s")
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("ping_period", "54s")
	v.SetDefault("rate_limit", 0)
	v.SetDefault("rate_interval", "1s")
	v.SetDefault("backpressure", "drop")
	v.SetDefault("secret", "lobby-dev-secret")
	v.SetDefault("shutdown_timeout", "5s")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Str("tcp", cfg.TCPAddr).Str("http", cfg.HTTPAddr).Str("backpressure", cfg.Backpressure).Msg("config ready")
	return &cfg, nil
}
