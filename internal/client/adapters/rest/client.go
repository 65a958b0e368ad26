// Package rest содержит клиент REST API заметок на базе клиента fiber.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/client"
	"go.uber.org/zap"

	"sharenotes/internal/client/config"
	"sharenotes/internal/client/resilience"
	"sharenotes/pkg/logger"
)

// Пути REST API.
const (
	PathNotes      = "api/notes"
	PathPublicNote = "api/public/note"
	PathUsers      = "api/admin/users"
)

// Заголовки запросов.
const (
	HeaderRequestID      = "X-Request-ID"
	HeaderPublicPassword = "password"
	MIMEMergePatchJSON   = "application/merge-patch+json"
)

// Константы для логирования.
const (
	LogRequestSent   = "api request completed"
	LogRequestFailed = "api request failed"
)

// serviceName - имя сервиса в логах и метриках отказоустойчивости.
const serviceName = "notes-api"

// CircuitObserver получает смену состояния Circuit Breaker.
type CircuitObserver interface {
	ObserveCircuitState(service string, state int)
}

// Client реализует порты api.NotesAPI и api.UsersAPI поверх REST.
type Client struct {
	http       *client.Client
	baseURL    string
	token      string
	resilience *resilience.ServiceResilience
	observer   CircuitObserver
	now        func() time.Time
}

// Option настраивает Client.
type Option func(*Client)

// WithClock подменяет источник времени для cacheBuster.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithCircuitObserver подключает наблюдателя состояния Circuit Breaker.
func WithCircuitObserver(o CircuitObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient создает клиент REST API.
func NewClient(apiCfg *config.APIConfig, resCfg *config.ResilienceConfig, opts ...Option) *Client {
	cbConfig := resilience.DefaultCircuitBreakerConfig()
	retryConfig := resilience.DefaultRetryConfig()
	if resCfg != nil {
		cbConfig.ErrorThreshold = resCfg.ErrorThreshold
		cbConfig.Timeout = resCfg.BreakerTimeout
		cbConfig.SuccessThreshold = resCfg.SuccessThreshold
		retryConfig.MaxAttempts = resCfg.MaxAttempts
		retryConfig.InitialBackoff = resCfg.InitialBackoff
		retryConfig.MaxBackoff = resCfg.MaxBackoff
	}
	cbConfig.IsFailure = isServiceFailure
	retryConfig.ShouldRetry = shouldRetry

	c := &Client{
		http:    client.New().SetTimeout(apiCfg.Timeout),
		baseURL: apiCfg.GetBaseURL(),
		token:   apiCfg.Token,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if observer := c.observer; observer != nil {
		cbConfig.OnStateChange = func(name string, state resilience.CircuitState) {
			observer.ObserveCircuitState(name, int(state))
		}
	}
	c.resilience = resilience.NewServiceResilience(serviceName, cbConfig, retryConfig)
	return c
}

type request struct {
	method      string
	path        string
	auth        bool
	params      map[string]string
	headers     map[string]string
	body        any
	contentType string
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

func isIdempotent(method string) bool {
	switch method {
	case fiber.MethodGet, fiber.MethodPut, fiber.MethodDelete:
		return true
	default:
		return false
	}
}

// call выполняет запрос с учетом отказоустойчивости и декодирует ответ в out.
func (c *Client) call(ctx context.Context, operation string, req request, out any) error {
	return c.resilience.Execute(ctx, operation, isIdempotent(req.method), func() error {
		return c.send(ctx, req, out)
	})
}

func (c *Client) send(ctx context.Context, r request, out any) error {
	log := logger.Log(ctx).With(zap.String("method", r.method), zap.String("path", r.path))
	start := time.Now()

	req := c.http.R().
		SetContext(ctx).
		SetMethod(r.method).
		SetURL(c.baseURL+r.path).
		SetHeader(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	if id := logger.RequestIDFrom(ctx); id != "" {
		req.SetHeader(HeaderRequestID, id)
	}
	if r.auth && c.token != "" {
		req.SetHeader(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	for key, value := range r.headers {
		req.SetHeader(key, value)
	}
	for key, value := range r.params {
		req.SetParam(key, value)
	}
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			client.ReleaseRequest(req)
			return fmt.Errorf("encode %s body: %w", r.path, err)
		}
		contentType := r.contentType
		if contentType == "" {
			contentType = fiber.MIMEApplicationJSON
		}
		req.SetRawBody(data).SetHeader(fiber.HeaderContentType, contentType)
	}

	resp, err := req.Send()
	if err != nil {
		client.ReleaseRequest(req)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", r.method, r.path, ctxErr)
		}
		log.Warn(ctx, LogRequestFailed, zap.Error(err))
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, r.method, r.path, err)
	}
	defer resp.Close()

	status := resp.StatusCode()
	log.Debug(ctx, LogRequestSent, zap.Int("status", status), zap.Duration("latency", time.Since(start)))

	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return newAPIError(r.method, r.path, status, resp.Body())
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", r.method, r.path, err)
	}
	return nil
}
