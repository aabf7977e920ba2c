package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/internal/validation"
)

// ClientConfig конфигурация клиента
type ClientConfig struct {
	Log            LogConfig     `yaml:"log"`
	ServerURL      string        `yaml:"server_url"`
	DBPath         string        `yaml:"db_path"`
	Actor          string        `yaml:"actor"`
	AutoResolve    string        `yaml:"auto_resolve"` // пусто, server_wins или client_wins
	Parallelism    int           `yaml:"parallelism"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultClientConfig возвращает конфигурацию клиента по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ServerURL:      "http://localhost:8080",
		DBPath:         "playsync-client.db",
		Parallelism:    4,
		RequestTimeout: 30 * time.Second,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// LoadClientConfig загружает конфигурацию клиента из файла и окружения
func LoadClientConfig(path string, lookup LookupFunc) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	if err := loadYAML(path, &cfg); err != nil {
		return ClientConfig{}, err
	}

	env := &envReader{lookup: lookup}
	env.string("SERVER_URL", &cfg.ServerURL)
	env.string("CLIENT_DB_PATH", &cfg.DBPath)
	env.string("ACTOR", &cfg.Actor)
	env.string("AUTO_RESOLVE", &cfg.AutoResolve)
	env.int("PARALLELISM", &cfg.Parallelism)
	env.duration("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	env.string("LOG_LEVEL", &cfg.Log.Level)
	env.string("LOG_FORMAT", &cfg.Log.Format)
	if err := env.err(); err != nil {
		return ClientConfig{}, err
	}

	return cfg, nil
}

// AutoResolveStrategy возвращает стратегию автоматического разрешения, если она задана
func (c ClientConfig) AutoResolveStrategy() (models.Strategy, bool, error) {
	if c.AutoResolve == "" {
		return "", false, nil
	}

	strategy, err := models.ParseStrategy(c.AutoResolve)
	if err != nil {
		return "", false, fmt.Errorf("%w: auto_resolve: %w", ErrInvalidConfig, err)
	}
	if strategy == models.StrategyMerge {
		return "", false, fmt.Errorf("%w: auto_resolve cannot be merge", ErrInvalidConfig)
	}

	return strategy, true, nil
}

// Validate проверяет обязательные значения
func (c ClientConfig) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: server_url %q must be an http(s) url", ErrInvalidConfig, c.ServerURL)
	}

	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path is required", ErrInvalidConfig)
	}

	if c.Actor != "" {
		if err := validation.ValidateActor(c.Actor); err != nil {
			return fmt.Errorf("%w: actor: %w", ErrInvalidConfig, err)
		}
	}

	if c.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be >= 1", ErrInvalidConfig)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	}

	if _, _, err := c.AutoResolveStrategy(); err != nil {
		return err
	}

	return nil
}
