package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Ошибки REST API.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNoteNotFound = errors.New("note not found")
	ErrServer       = errors.New("server error")
	ErrTransport    = errors.New("transport error")
)

// APIError - ответ API с неуспешным статусом (problem+json).
type APIError struct {
	Method  string `json:"-"`
	Path    string `json:"-"`
	Status  int    `json:"status"`
	Title   string `json:"title,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	switch {
	case e.Detail != "":
		msg += ": " + e.Detail
	case e.Title != "":
		msg += ": " + e.Title
	}
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	return msg
}

// Is сопоставляет статус ответа с ошибками пакета.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.Status == http.StatusBadRequest
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNoteNotFound:
		return e.Status == http.StatusNotFound
	case ErrServer:
		return e.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{}
	if len(body) > 0 {
		_ = json.Unmarshal(body, apiErr)
	}
	apiErr.Method = method
	apiErr.Path = path
	apiErr.Status = status
	return apiErr
}

// StatusCode возвращает HTTP-статус ошибки или 0 для ошибок транспорта.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// shouldRetry разрешает повтор при ошибках транспорта, 429 и 5xx.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= http.StatusInternalServerError
	}
	return errors.Is(err, ErrTransport)
}

// isServiceFailure определяет ошибки, которые учитывает Circuit Breaker.
func isServiceFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return true
}

// StatusCode возвращает HTTP-статус ответа.
func (e *APIError) StatusCode() int {
	return e.Status
}
