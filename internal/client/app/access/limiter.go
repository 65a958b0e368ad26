// Package access ограничивает число неудачных попыток открыть публичную заметку.
package access

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"sharenotes/internal/client/config"
	"sharenotes/internal/client/ports/cache"
	"sharenotes/pkg/logger"
)

// ErrTooManyAttempts возвращается, когда лимит попыток в окне исчерпан.
var ErrTooManyAttempts = errors.New("too many password attempts")

// Исходы попыток.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeLocked  = "locked"
)

// Константы для логирования.
const (
	LogAttemptLocked = "public note locked after failed attempts"
	LogAttemptFailed = "public note password rejected"
	LogCacheFailure  = "attempt counter unavailable"
)

const keyPrefix = "sharenotes:public_attempts:"

// Observer получает исходы попыток.
type Observer interface {
	ObserveAttempt(outcome string)
}

// Limiter считает неудачные попытки по ID заметки в окне времени.
type Limiter struct {
	cache       cache.Cache
	maxAttempts int
	window      time.Duration
	observer    Observer
}

// Option настраивает Limiter.
type Option func(*Limiter)

// WithObserver подключает наблюдателя попыток.
func WithObserver(o Observer) Option {
	return func(l *Limiter) {
		l.observer = o
	}
}

// NewLimiter создает ограничитель. MaxAttempts <= 0 отключает ограничение.
func NewLimiter(c cache.Cache, cfg *config.AccessConfig, opts ...Option) *Limiter {
	l := &Limiter{
		cache:       c,
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// Allow проверяет, можно ли отправить пароль для заметки.
// Недоступный кэш не блокирует попытку.
func (l *Limiter) Allow(ctx context.Context, id int64) error {
	if l.maxAttempts <= 0 {
		return nil
	}

	value, err := l.cache.Get(ctx, key(id))
	if err != nil {
		logger.Log(ctx).Warn(ctx, LogCacheFailure, zap.Int64("note_id", id), zap.Error(err))
		return nil
	}
	if value == "" {
		return nil
	}

	failures, err := strconv.Atoi(value)
	if err != nil || failures < l.maxAttempts {
		return nil
	}

	l.observe(OutcomeLocked)
	logger.Log(ctx).Warn(ctx, LogAttemptLocked, zap.Int64("note_id", id), zap.Int("failures", failures))
	return fmt.Errorf("%w: note %d, retry in %s", ErrTooManyAttempts, id, l.window)
}

// Failure учитывает неудачную попытку и возвращает число оставшихся.
func (l *Limiter) Failure(ctx context.Context, id int64) int {
	l.observe(OutcomeFailure)
	if l.maxAttempts <= 0 {
		return -1
	}

	failures, err := l.cache.Incr(ctx, key(id), l.window)
	if err != nil {
		logger.Log(ctx).Warn(ctx, LogCacheFailure, zap.Int64("note_id", id), zap.Error(err))
		return l.maxAttempts
	}

	logger.Log(ctx).Info(ctx, LogAttemptFailed, zap.Int64("note_id", id), zap.Int64("failures", failures))
	return max(l.maxAttempts-int(failures), 0)
}

// Success сбрасывает счетчик после успешной попытки.
func (l *Limiter) Success(ctx context.Context, id int64) {
	l.observe(OutcomeSuccess)
	if l.maxAttempts <= 0 {
		return
	}
	if err := l.cache.Delete(ctx, key(id)); err != nil {
		logger.Log(ctx).Warn(ctx, LogCacheFailure, zap.Int64("note_id", id), zap.Error(err))
	}
}

func (l *Limiter) observe(outcome string) {
	if l.observer != nil {
		l.observer.ObserveAttempt(outcome)
	}
}
