package api

// Error codes returned in ErrorResponse.Error
const (
	CodeNotFound          = "not_found"
	CodeConflictNotFound  = "conflict_not_found"
	CodeAlreadyExists     = "already_exists"
	CodeInvalidResolution = "invalid_resolution"
	CodeInvalidRequest    = "invalid_request"
	CodeAlreadyResolved   = "already_resolved"
	CodeStoreUnavailable  = "store_unavailable"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal"
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error     string `json:"error"`                // код ошибки
	Message   string `json:"message,omitempty"`    // дополнительное сообщение
	RequestID string `json:"request_id,omitempty"` // id запроса из лога сервера
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status string `json:"status"`
}
