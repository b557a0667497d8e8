package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the API process reads from the environment.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`

	DBUser     string `env:"DB_USER" envDefault:"habitlens_user"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"secret"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME" envDefault:"habitlens_db"`

	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"habitlens"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"100"`
}

// DSN renders the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Load reads the .env file when present, then parses the environment.
// In production the variables are injected directly and the missing
// .env file is expected.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be at least 1")
	}
	return nil
}
