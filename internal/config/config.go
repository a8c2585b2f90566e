package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode            string        `mapstructure:"mode"`
	Port            int           `mapstructure:"port"`
	Secret          string        `mapstructure:"secret"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	StripeKey       string        `mapstructure:"stripe_key"`
	ChatDuration    time.Duration `mapstructure:"chat_duration"`
	SendBuffer      int           `mapstructure:"send_buffer"`
	MatchRateLimit  int           `mapstructure:"match_rate_limit"`
	MatchRateWindow time.Duration `mapstructure:"match_rate_window"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("secret", "dev-secret")
	v.SetDefault("redis_addr", "")
	v.SetDefault("stripe_key", "")
	v.SetDefault("chat_duration", "5m")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("match_rate_limit", 10)
	v.SetDefault("match_rate_window", "1m")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
