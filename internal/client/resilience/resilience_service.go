package resilience

import (
	"context"

	"go.uber.org/zap"

	"sharenotes/pkg/logger"
)

const logExecute = "executing operation with resilience"

// ServiceResilience объединяет Circuit Breaker и повторные попытки для одного сервиса.
type ServiceResilience struct {
	serviceName    string
	circuitBreaker *CircuitBreaker
	retry          *Retry
}

// NewServiceResilience создает обертку отказоустойчивости для сервиса serviceName.
func NewServiceResilience(serviceName string, cb CircuitBreakerConfig, retry RetryConfig) *ServiceResilience {
	return &ServiceResilience{
		serviceName:    serviceName,
		circuitBreaker: NewCircuitBreaker(serviceName, cb),
		retry:          NewRetry(serviceName, retry),
	}
}

// Execute выполняет операцию через Circuit Breaker. Повторы включаются только
// для идемпотентных операций.
func (r *ServiceResilience) Execute(ctx context.Context, operationName string, idempotent bool, operation func() error) error {
	logger.Log(ctx).Debug(ctx, logExecute,
		zap.String("service", r.serviceName),
		zap.String("operation", operationName),
		zap.Bool("idempotent", idempotent))

	return r.circuitBreaker.Execute(ctx, func() error {
		if !idempotent {
			return operation()
		}
		return r.retry.Execute(ctx, operation)
	})
}

// State возвращает состояние Circuit Breaker сервиса.
func (r *ServiceResilience) State() CircuitState {
	return r.circuitBreaker.GetState()
}
