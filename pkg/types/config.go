// Package types provides configuration types for the journal backend.
package types

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root server configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server" json:"server"`
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Log      LogConfig      `mapstructure:"log" json:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host" json:"host"`
	Port           int           `mapstructure:"port" json:"port"`
	WebSocketPath  string        `mapstructure:"websocketPath" json:"websocketPath"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout" json:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout" json:"writeTimeout"`
	EnableMetrics  bool          `mapstructure:"enableMetrics" json:"enableMetrics"`
	AllowedOrigins []string      `mapstructure:"allowedOrigins" json:"allowedOrigins"`
}

// DatabaseConfig represents SQLite storage configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
}

// LoadConfig reads configuration from an optional YAML file and the
// JOURNAL_* environment, falling back to defaults. An empty path skips
// the file and a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.websocketPath", "/ws")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.enableMetrics", true)
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("database.path", "./data/journal.db")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("JOURNAL")
	// Nested keys map to underscores: server.port -> JOURNAL_SERVER_PORT.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("journal")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
