// Package config содержит конфигурацию клиента заметок.
package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "sharenotes/pkg/config"
	"sharenotes/pkg/logger"
)

const serviceName = "sharenotes"

// Config представляет полную конфигурацию клиента.
type Config struct {
	API        APIConfig        `yaml:"api"`
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
	Redis      RedisConfig      `yaml:"redis"`
	Access     AccessConfig     `yaml:"access"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Shutdown   ShutdownConfig   `yaml:"shutdown"`
}

// Load загружает конфигурацию из файла (если указан) и переменных окружения.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, serviceName, path)
	if err != nil {
		return nil, fmt.Errorf("client config: %w", err)
	}

	logger.Log(ctx).Info(ctx, "client configuration",
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.Duration("api_timeout", cfg.API.Timeout),
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("log_level", cfg.Logging.Level),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Int("access_max_attempts", cfg.Access.MaxAttempts),
		zap.String("public_dismiss", cfg.Access.Dismiss))

	return cfg, nil
}
