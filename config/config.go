// Package config loads identityctl settings from an optional YAML file and
// IDENTITY_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the settings of the identity stores and the CLI around them.
type Config struct {
	MongoURI        string        `mapstructure:"mongo_uri"`
	MongoDBName     string        `mapstructure:"mongo_db_name"`
	UsersCollection string        `mapstructure:"users_collection"`
	RolesCollection string        `mapstructure:"roles_collection"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	RoleCacheTTL    time.Duration `mapstructure:"role_cache_ttl"`
	LogLevel        string        `mapstructure:"log_level"`
	LogPretty       bool          `mapstructure:"log_pretty"`
	OtelServiceName string        `mapstructure:"otel_service_name"`
}

// Load reads configuration from file, environment variables and defaults.
// Environment variables win over the file, the file wins over defaults. A
// non-empty configFile is read instead of searching the default locations and
// must exist.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("identity")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/shadow-identity/")
		v.AddConfigPath("$HOME/.shadow-identity")
	}

	v.SetEnvPrefix("IDENTITY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db_name", "shadow_identity")
	v.SetDefault("users_collection", "identity_users")
	v.SetDefault("roles_collection", "identity_roles")
	v.SetDefault("connect_timeout", "10s")
	v.SetDefault("role_cache_ttl", "0s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("otel_service_name", "shadow-identity")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &cfg, nil
}
