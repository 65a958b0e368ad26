package logger

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
)

var (
	globalMu sync.RWMutex
	global   *Logger

	// fallback пишет только предупреждения и ошибки, пока глобальный logger не задан.
	fallback = newFallback()
)

func newFallback() *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	return &Logger{l: l.With(zap.String("logger", "fallback"))}
}

// SetGlobalLogger задает logger для контекстов без собственного. nil
// возвращает резервный.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	global = l
	globalMu.Unlock()
}

// WithLogger возвращает контекст, в котором Log отдает l.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// Log возвращает logger контекста, иначе глобальный, иначе резервный.
func Log(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*Logger); ok {
			return l
		}
	}

	globalMu.RLock()
	defer globalMu.RUnlock()
	if global != nil {
		return global
	}
	return fallback
}

// WithRequestID кладет в контекст идентификатор запроса и возвращает его.
// Для пустого id генерируется UUID.
func WithRequestID(ctx context.Context, id string) (context.Context, string) {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDKey, id), id
}

// RequestIDFrom возвращает идентификатор запроса или пустую строку.
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
