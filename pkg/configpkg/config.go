// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Supported token types.
const (
	TokenTypePaseto = "paseto"
	TokenTypeJWT    = "jwt"
)

const minSymmetricKeySize = 32

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
// Config is loaded once at start-up and passed by value, so it is read-only afterwards.
type Config struct {
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBSource          string        `mapstructure:"DB_SOURCE"`
	ServerAddress     string        `mapstructure:"SERVER_ADDRESS"`
	TokenSymmetricKey string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	TokenType         string        `mapstructure:"TOKEN_TYPE"`
	Environement      string        `mapstructure:"GO_ENV"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	HistoryCacheTTL   time.Duration `mapstructure:"HISTORY_CACHE_TTL"`
	AMQPURL           string        `mapstructure:"AMQP_URL"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	setDefaults(v)

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	if err := c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}

// setDefaults registers every key so AutomaticEnv can override it
// even when the config file does not mention it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("TOKEN_SYMMETRIC_KEY", "")
	v.SetDefault("TOKEN_TYPE", TokenTypePaseto)
	v.SetDefault("GO_ENV", "production")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("HISTORY_CACHE_TTL", "30s")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// Validate checks that the values needed to start the server are present.
func (c Config) Validate() error {
	if c.DBSource == "" {
		return errors.New("DB_SOURCE is required")
	}

	if len(c.TokenSymmetricKey) < minSymmetricKeySize {
		return fmt.Errorf("TOKEN_SYMMETRIC_KEY must be at least %d characters", minSymmetricKeySize)
	}

	switch c.TokenType {
	case TokenTypePaseto, TokenTypeJWT:
	default:
		return fmt.Errorf("unsupported TOKEN_TYPE %q", c.TokenType)
	}

	return nil
}
