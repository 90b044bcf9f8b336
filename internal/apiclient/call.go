package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

// Get выполняет GET и возвращает развёрнутые данные типа T.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, &out)
	return out, err
}

// Post выполняет POST с JSON-телом и возвращает развёрнутые данные типа T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, &out)
	return out, err
}

// PostPublic — POST без токена сессии (вход, регистрация).
func PostPublic[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Public: true}, &out)
	return out, err
}
