package middleware

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"sharenotes/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorInvalidToken       = "invalid console token"
)

// NewAuthMiddleware создает промежуточное ПО, требующее Bearer-токен консоли.
func NewAuthMiddleware(token string) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return unauthorized(ctx, ErrorNoAuthHeader)
		}

		provided, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			log.Debug(requestCtx, ErrorInvalidTokenFormat)
			return unauthorized(ctx, ErrorInvalidTokenFormat)
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			log.Warn(requestCtx, ErrorInvalidToken, zap.String("path", ctx.Path()))
			return unauthorized(ctx, ErrorInvalidToken)
		}

		return ctx.Next()
	}
}

func unauthorized(ctx fiber.Ctx, message string) error {
	if err := ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": message}); err != nil {
		return fmt.Errorf("%s: %w", message, err)
	}
	return nil
}
