package config

import (
	"fmt"
	"time"
)

// HTTPConfig представляет конфигурацию локальной консоли.
type HTTPConfig struct {
	Host         string        `yaml:"host" env:"SHARENOTES_HTTP_HOST" env-default:"127.0.0.1"`
	Port         int           `yaml:"port" env:"SHARENOTES_HTTP_PORT" env-default:"8090"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SHARENOTES_HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SHARENOTES_HTTP_WRITE_TIMEOUT" env-default:"15s"`
	// Token защищает маршруты консоли, кроме /healthz и /metrics.
	Token string `yaml:"token" env:"SHARENOTES_HTTP_TOKEN"`
}

// GetAddress возвращает адрес консоли.
func (c *HTTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
