package config

import (
	"fmt"
	"time"
)

// JWTConfig настройки токенов
type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// RateLimitConfig ограничение частоты запросов; Requests=0 отключает лимит
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// ServerConfig конфигурация сервера
type ServerConfig struct {
	Log             LogConfig       `yaml:"log"`
	Addr            string          `yaml:"addr"`
	DBPath          string          `yaml:"db_path"`
	JWT             JWTConfig       `yaml:"jwt"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
}

// DefaultServerConfig возвращает конфигурацию сервера по умолчанию
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:   ":8080",
		DBPath: "playsync.db",
		JWT: JWTConfig{
			TokenTTL: 30 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Requests: 600,
			Window:   time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadServerConfig загружает конфигурацию сервера из файла и окружения
func LoadServerConfig(path string, lookup LookupFunc) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if err := loadYAML(path, &cfg); err != nil {
		return ServerConfig{}, err
	}

	env := &envReader{lookup: lookup}
	env.string("ADDR", &cfg.Addr)
	env.string("DB_PATH", &cfg.DBPath)
	env.string("JWT_SECRET", &cfg.JWT.Secret)
	env.duration("JWT_TOKEN_TTL", &cfg.JWT.TokenTTL)
	env.int("RATE_LIMIT_REQUESTS", &cfg.RateLimit.Requests)
	env.duration("RATE_LIMIT_WINDOW", &cfg.RateLimit.Window)
	env.string("LOG_LEVEL", &cfg.Log.Level)
	env.string("LOG_FORMAT", &cfg.Log.Format)
	env.duration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)
	if err := env.err(); err != nil {
		return ServerConfig{}, err
	}

	return cfg, nil
}

// Validate проверяет обязательные значения
func (c ServerConfig) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr is required", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path is required", ErrInvalidConfig)
	case c.JWT.Secret == "":
		return fmt.Errorf("%w: jwt secret is required (PLAYSYNC_JWT_SECRET)", ErrInvalidConfig)
	case c.JWT.TokenTTL < 0:
		return fmt.Errorf("%w: jwt token_ttl must not be negative", ErrInvalidConfig)
	case c.RateLimit.Requests < 0:
		return fmt.Errorf("%w: rate_limit requests must not be negative", ErrInvalidConfig)
	case c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0:
		return fmt.Errorf("%w: rate_limit window must be positive", ErrInvalidConfig)
	}
	return nil
}
