package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
)

// RequestObserver учитывает обработанные запросы.
type RequestObserver interface {
	ObserveRequest(method, route, status string)
}

// NewMetricsMiddleware учитывает запросы по шаблону маршрута.
func NewMetricsMiddleware(observer RequestObserver) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		err := ctx.Next()
		observer.ObserveRequest(ctx.Method(), ctx.Route().Path, strconv.Itoa(ctx.Response().StatusCode()))
		return err
	}
}
