package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	DatabaseURL         string `mapstructure:"DATABASE_URL"`
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	ServerPort          string `mapstructure:"SERVER_PORT"`
	ScrapeWorkers       int    `mapstructure:"SCRAPE_WORKERS"`
	FetchTimeout        int    `mapstructure:"FETCH_TIMEOUT"` // in seconds
	ScrapeIntervalHours int    `mapstructure:"SCRAPE_INTERVAL_HOURS"`
	SeenCacheTTLHours   int    `mapstructure:"SEEN_CACHE_TTL_HOURS"`
	TelegramToken       string `mapstructure:"TELEGRAM_TOKEN"`
	TelegramChatID      int64  `mapstructure:"TELEGRAM_CHAT_ID"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	// Set default values
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SCRAPE_WORKERS", 10)
	viper.SetDefault("FETCH_TIMEOUT", 15) // in seconds
	viper.SetDefault("SCRAPE_INTERVAL_HOURS", 1)
	viper.SetDefault("SEEN_CACHE_TTL_HOURS", 48)
	viper.SetDefault("TELEGRAM_TOKEN", "")
	viper.SetDefault("TELEGRAM_CHAT_ID", 0)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
