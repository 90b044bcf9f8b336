// Пакет apiclient — HTTP-клиент REST backend ремонтной мастерской.
// Единая точка исходящих запросов: базовый URL, Bearer-токен сессии,
// разворачивание конверта {success, message, data} и реакция на 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/repairshop-portal/internal/domain/model"
)

// maxBodySize — ограничение размера ответа backend (8 MiB).
const maxBodySize = 8 << 20

// Метрики исходящих запросов к backend.
var (
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rp_backend_requests_total",
			Help: "Общее количество запросов портала к REST backend",
		},
		[]string{"method", "path", "status"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rp_backend_request_duration_seconds",
			Help:    "Длительность запросов портала к REST backend в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// TokenProvider — функция, возвращающая токен текущей сессии.
// Пустая строка означает, что сессии нет.
type TokenProvider func(ctx context.Context) (string, error)

// UnauthorizedHandler вызывается, когда backend отклонил токен сессии.
type UnauthorizedHandler func(ctx context.Context)

// Request — описание одного запроса к backend.
type Request struct {
	// Method — HTTP-метод.
	Method string
	// Path — путь относительно базового URL, начинается с /.
	Path string
	// Query — параметры строки запроса (может быть nil).
	Query url.Values
	// Body — тело запроса, сериализуется в JSON (может быть nil).
	Body any
	// Public — запрос без токена (вход, регистрация). 401 на такой запрос
	// не завершает сессию.
	Public bool
}

// Client — HTTP-клиент backend.
// Безопасен для конкурентного использования.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenProvider
	onUnauthorized UnauthorizedHandler
	logger         *slog.Logger
}

// New создаёт клиент backend.
// httpClient == nil — используется клиент с таймаутом 30s.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "backend_client")),
	}
}

// WithSession возвращает копию клиента, привязанную к сессии:
// tokens подставляет Bearer-токен, onUnauthorized вызывается при 401.
// Исходный клиент не изменяется, транспорт общий.
func (c *Client) WithSession(tokens TokenProvider, onUnauthorized UnauthorizedHandler) *Client {
	clone := *c
	clone.tokens = tokens
	clone.onUnauthorized = onUnauthorized
	return &clone
}

// Do выполняет запрос и разворачивает конверт ответа в out.
// out == nil — данные ответа игнорируются.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metricPath := normalizePath(r.Path)
	if err != nil {
		backendRequestsTotal.WithLabelValues(r.Method, metricPath, "error").Inc()
		c.logger.Warn("Backend недоступен",
			slog.String("method", r.Method),
			slog.String("path", r.Path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("запрос %s %s: %w", r.Method, r.Path, err)
	}
	defer resp.Body.Close()

	backendRequestsTotal.WithLabelValues(r.Method, metricPath, strconv.Itoa(resp.StatusCode)).Inc()
	backendRequestDuration.WithLabelValues(r.Method, metricPath).Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("чтение ответа %s %s: %w", r.Method, r.Path, err)
	}

	c.logger.Debug("Ответ backend",
		slog.String("method", r.Method),
		slog.String("path", r.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body, resp.StatusCode),
			Method:     r.Method,
			Path:       r.Path,
		}
		if resp.StatusCode == http.StatusUnauthorized && !r.Public {
			c.unauthorized(ctx, r)
		}
		return apiErr
	}

	return c.unwrap(r, resp.StatusCode, body, out)
}

// newRequest формирует HTTP-запрос: URL, JSON-тело, заголовки, токен.
func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	reqURL := c.baseURL + r.Path
	if len(r.Query) > 0 {
		reqURL += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("сериализация тела %s %s: %w", r.Method, r.Path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("создание запроса %s %s: %w", r.Method, r.Path, err)
	}
	req.Header.Set("Accept", "application/json")
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if r.Public {
		return req, nil
	}

	// Авторизованный запрос без сессии не отправляется
	token := ""
	if c.tokens != nil {
		token, err = c.tokens(ctx)
		if err != nil {
			return nil, fmt.Errorf("получение токена сессии: %w", err)
		}
	}
	if token == "" {
		c.unauthorized(ctx, r)
		return nil, fmt.Errorf("%s %s: %w", r.Method, r.Path, ErrUnauthorized)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return req, nil
}

// unwrap разбирает конверт успешного ответа.
func (c *Client) unwrap(r Request, status int, body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		if out == nil {
			return nil
		}
		return &APIError{StatusCode: status, Message: "пустой ответ backend", Method: r.Method, Path: r.Path}
	}

	var env model.RawEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("декодирование ответа %s %s: %w", r.Method, r.Path, err)
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "операция не выполнена"
		}
		return &APIError{StatusCode: status, Message: msg, Method: r.Method, Path: r.Path}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("декодирование data %s %s: %w", r.Method, r.Path, err)
	}
	return nil
}

// unauthorized вызывает обработчик отклонённой сессии.
func (c *Client) unauthorized(ctx context.Context, r Request) {
	c.logger.Info("Backend отклонил сессию",
		slog.String("method", r.Method),
		slog.String("path", r.Path),
	)
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

// errorMessage извлекает текст ошибки из тела ответа: конверт,
// ErrorResponse или сырой текст.
func errorMessage(body []byte, status int) string {
	var env model.RawEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}

	var errResp model.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}

	text := strings.TrimSpace(string(body))
	if text == "" || strings.HasPrefix(text, "<") {
		return http.StatusText(status)
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

// normalizePath заменяет числовые сегменты пути на {id} для предотвращения
// роста кардинальности метрик.
// /admin/repair-order/42/assign → /admin/repair-order/{id}/assign
func normalizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}
