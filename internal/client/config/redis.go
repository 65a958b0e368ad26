package config

import (
	"net"
	"strconv"
	"time"
)

// RedisConfig представляет конфигурацию Redis для счетчика попыток доступа.
type RedisConfig struct {
	Enabled        bool          `yaml:"enabled" env:"SHARENOTES_REDIS_ENABLED" env-default:"false"`
	Host           string        `yaml:"host" env:"SHARENOTES_REDIS_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"SHARENOTES_REDIS_PORT" env-default:"6379"`
	Password       string        `yaml:"password" env:"SHARENOTES_REDIS_PASSWORD"`
	DB             int           `yaml:"db" env:"SHARENOTES_REDIS_DB" env-default:"0"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"SHARENOTES_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"SHARENOTES_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"SHARENOTES_REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize       int           `yaml:"pool_size" env:"SHARENOTES_REDIS_POOL_SIZE" env-default:"10"`
	DefaultTTL     time.Duration `yaml:"default_ttl" env:"SHARENOTES_REDIS_DEFAULT_TTL" env-default:"15m"`
}

// GetAddress возвращает адрес Redis.
func (c *RedisConfig) GetAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
