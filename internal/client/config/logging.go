package config

import "sharenotes/pkg/logger"

// LoggingConfig представляет конфигурацию логирования.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"SHARENOTES_LOGGER_LEVEL" env-default:"info"`
	Mode       string `yaml:"mode" env:"SHARENOTES_LOGGER_MODE" env-default:"production"`
	File       string `yaml:"file" env:"SHARENOTES_LOGGER_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"SHARENOTES_LOGGER_MAX_SIZE_MB" env-default:"10"`
	MaxBackups int    `yaml:"max_backups" env:"SHARENOTES_LOGGER_MAX_BACKUPS" env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" env:"SHARENOTES_LOGGER_MAX_AGE_DAYS" env-default:"7"`
}

// GetEnvironment возвращает режим работы логгера.
func (c *LoggingConfig) GetEnvironment() logger.Environment {
	if c.Mode == "development" {
		return logger.Development
	}
	return logger.Production
}
