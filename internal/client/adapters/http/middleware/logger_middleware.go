// Package middleware содержит промежуточное ПО локальной консоли.
package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"sharenotes/pkg/logger"
)

// Константы для логирования.
const (
	LogRequestStarted   = "request started"
	LogRequestCompleted = "request completed"
	LogRequestFailed    = "request failed"
)

// HeaderRequestID - заголовок идентификатора запроса.
const HeaderRequestID = "X-Request-ID"

const requestContextKey = "requestContext"

// RequestContext возвращает контекст запроса с логгером и идентификатором запроса.
func RequestContext(ctx fiber.Ctx) context.Context {
	if requestCtx, ok := ctx.Locals(requestContextKey).(context.Context); ok {
		return requestCtx
	}
	return ctx.Context()
}

// NewLoggerMiddleware создает промежуточное ПО логирования запросов. Входящий
// X-Request-ID сохраняется, отсутствующий генерируется.
func NewLoggerMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		start := time.Now()
		requestCtx, requestID := logger.WithRequestID(ctx.Context(), ctx.Get(HeaderRequestID))

		log := logger.Log(requestCtx).With(
			zap.String("path", ctx.Path()),
			zap.String("method", ctx.Method()),
			zap.String("ip", ctx.IP()),
		)
		requestCtx = logger.WithLogger(requestCtx, log)
		ctx.Locals(requestContextKey, requestCtx)
		ctx.Set(HeaderRequestID, requestID)

		log.Debug(requestCtx, LogRequestStarted)

		err := ctx.Next()

		fields := []zap.Field{
			zap.Int("status", ctx.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			log.Error(requestCtx, LogRequestFailed, append(fields, zap.Error(err))...)
			return fmt.Errorf("request processing error: %w", err)
		}

		log.Info(requestCtx, LogRequestCompleted, fields...)
		return nil
	}
}
