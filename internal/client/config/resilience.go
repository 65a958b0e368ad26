package config

import "time"

// ResilienceConfig настраивает retry и circuit breaker для вызовов API.
type ResilienceConfig struct {
	MaxAttempts      int           `yaml:"max_attempts" env:"SHARENOTES_RETRY_MAX_ATTEMPTS" env-default:"3"`
	InitialBackoff   time.Duration `yaml:"initial_backoff" env:"SHARENOTES_RETRY_INITIAL_BACKOFF" env-default:"100ms"`
	MaxBackoff       time.Duration `yaml:"max_backoff" env:"SHARENOTES_RETRY_MAX_BACKOFF" env-default:"1s"`
	ErrorThreshold   int           `yaml:"error_threshold" env:"SHARENOTES_BREAKER_ERROR_THRESHOLD" env-default:"5"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout" env:"SHARENOTES_BREAKER_TIMEOUT" env-default:"10s"`
	SuccessThreshold int           `yaml:"success_threshold" env:"SHARENOTES_BREAKER_SUCCESS_THRESHOLD" env-default:"2"`
}
