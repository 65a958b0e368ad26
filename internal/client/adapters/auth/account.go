// Package auth определяет текущего пользователя клиента по bearer-токену.
package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"sharenotes/internal/client/config"
	"sharenotes/internal/client/domain/entities"
)

// Ошибки чтения аккаунта.
var (
	ErrNoAccount    = errors.New("account is not configured")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims - утверждения токена, из которых читается владелец заметок.
type Claims struct {
	UserID any `json:"user_id,omitempty"`
	UID    any `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// AccountFromToken читает логин (sub) и идентификатор (user_id или uid) из токена.
// Подпись токена не проверяется.
func AccountFromToken(token string) (entities.Account, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return entities.Account{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	account := entities.Account{Login: claims.Subject}
	for _, raw := range []any{claims.UserID, claims.UID} {
		if id, ok := numericID(raw); ok {
			account.ID = id
			break
		}
	}
	return account, nil
}

func numericID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

// ResolveAccount возвращает аккаунт из токена с переопределениями из конфигурации.
func ResolveAccount(cfg *config.APIConfig) (entities.Account, error) {
	var account entities.Account
	if cfg.Token != "" {
		fromToken, err := AccountFromToken(cfg.Token)
		if err != nil {
			return entities.Account{}, err
		}
		account = fromToken
	}
	if cfg.AccountID != 0 {
		account.ID = cfg.AccountID
	}
	if cfg.AccountLogin != "" {
		account.Login = cfg.AccountLogin
	}
	if account.ID == 0 && account.Login == "" {
		return entities.Account{}, ErrNoAccount
	}
	return account, nil
}
