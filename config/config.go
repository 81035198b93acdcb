package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DBType          string  `mapstructure:"DB_TYPE"` // sqlite, postgres, mysql
	DSN             string  `mapstructure:"DSN"`
	SkipAutoMigrate bool    `mapstructure:"SKIP_AUTO_MIGRATE"`
	LogLevel        string  `mapstructure:"LOG_LEVEL"`
	Port            int     `mapstructure:"PORT"`
	SecretKey       string  `mapstructure:"SECRET_KEY"`
	BaseURL         string  `mapstructure:"BASE_URL"`
	MailProvider    string  `mapstructure:"MAIL_PROVIDER"` // sendgrid, log
	MailAPIKey      string  `mapstructure:"MAIL_API_KEY"`
	MailSender      string  `mapstructure:"MAIL_SENDER"`
	BcryptCost      int     `mapstructure:"BCRYPT_COST"`
	RateLimit       float64 `mapstructure:"RATE_LIMIT"` // requests per second per IP
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("DB_TYPE", "sqlite")
	viper.SetDefault("DSN", "gatehouse.db") // Default to sqlite if not provided
	viper.SetDefault("SKIP_AUTO_MIGRATE", false)
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("MAIL_PROVIDER", "log")
	// Registered empty so AutomaticEnv can see the keys.
	viper.SetDefault("SECRET_KEY", "")
	viper.SetDefault("MAIL_API_KEY", "")
	viper.SetDefault("MAIL_SENDER", "")
	viper.SetDefault("BCRYPT_COST", 12)
	viper.SetDefault("RATE_LIMIT", 20)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Everything else has a workable default; the signing secret does not.
	if cfg.SecretKey == "" {
		return nil, errors.New("config: SECRET_KEY is required")
	}

	return &cfg, nil
}
