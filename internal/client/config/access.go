package config

import "time"

// Режимы скрытия окна ввода пароля публичной заметки.
const (
	DismissOnSuccess  = "on_success"
	DismissOptimistic = "optimistic"
)

// AccessConfig настраивает публичный доступ по паролю.
type AccessConfig struct {
	MaxAttempts int           `yaml:"max_attempts" env:"SHARENOTES_ACCESS_MAX_ATTEMPTS" env-default:"5"`
	Window      time.Duration `yaml:"window" env:"SHARENOTES_ACCESS_WINDOW" env-default:"10m"`
	Dismiss     string        `yaml:"dismiss" env:"SHARENOTES_ACCESS_DISMISS" env-default:"on_success"`
}
