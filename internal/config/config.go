package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all runtime settings. It is loaded once at startup and
// passed into the wiring; nothing reads viper after that.
type Config struct {
	Host        string
	Port        string
	Debug       bool
	DatabaseDSN string
	RabbitMQURL string // empty disables event publishing
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	viper.SetDefault("APP_HOST", "0.0.0.0")
	viper.SetDefault("APP_PORT", "8000")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DATABASE_DSN", "spatiality.db")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv() // Load environment variables

	return &Config{
		Host:        viper.GetString("APP_HOST"),
		Port:        viper.GetString("APP_PORT"),
		Debug:       viper.GetBool("APP_DEBUG"),
		DatabaseDSN: viper.GetString("DATABASE_DSN"),
		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
	}
}

// Addr returns the host:port pair the HTTP server should listen on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
