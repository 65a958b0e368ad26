package config

import (
	"strings"
	"time"
)

// APIConfig описывает подключение к REST API заметок.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url" env:"SHARENOTES_API_BASE_URL" env-default:"http://localhost:8080/"`
	Token          string        `yaml:"token" env:"SHARENOTES_API_TOKEN"`
	Timeout        time.Duration `yaml:"timeout" env:"SHARENOTES_API_TIMEOUT" env-default:"10s"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout" env:"SHARENOTES_API_REFRESH_TIMEOUT" env-default:"10s"`
	// Location задает часовой пояс полей формы (YYYY-MM-DDTHH:mm).
	Location string `yaml:"location" env:"SHARENOTES_API_LOCATION" env-default:"Local"`
	// AccountID и AccountLogin переопределяют владельца, прочитанного из токена.
	AccountID    int64  `yaml:"account_id" env:"SHARENOTES_ACCOUNT_ID"`
	AccountLogin string `yaml:"account_login" env:"SHARENOTES_ACCOUNT_LOGIN"`
}

// GetBaseURL возвращает базовый адрес API, оканчивающийся на "/".
func (c *APIConfig) GetBaseURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/"
}

// GetLocation возвращает часовой пояс формы; неизвестное имя дает time.Local.
func (c *APIConfig) GetLocation() *time.Location {
	if c.Location == "" || c.Location == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.Local
	}
	return loc
}
