// Пакет model — доменные модели портала ремонтной мастерской.
// Структуры повторяют JSON-контракт REST backend (camelCase).
package model

import "encoding/json"

// Envelope — единая обёртка ответа backend: {success, message, data}.
type Envelope[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      T      `json:"data"`
	Timestamp string `json:"timestamp,omitempty"`
}

// RawEnvelope — обёртка с неразобранным data, используется клиентом
// до того, как известен целевой тип.
type RawEnvelope = Envelope[json.RawMessage]

// ErrorResponse — тело ошибки backend вне конверта.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	ErrorID string `json:"errorId,omitempty"`
}

// Page — страница результатов с пагинацией.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	CurrentPage   int `json:"currentPage"`
	Size          int `json:"size"`
}
