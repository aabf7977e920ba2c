package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/pkg/api"
)

// Transport errors that have no counterpart in the engine error taxonomy
var (
	// ErrUnauthorized indicates a missing, invalid or expired token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates that the request actor does not match the token
	ErrForbidden = errors.New("forbidden")
)

const defaultTimeout = 30 * time.Second

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures the client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithToken sets the bearer token sent with every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetToken replaces the bearer token
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the bearer token
func (c *Client) Token() string {
	return c.token
}

// SessionURL returns the WebSocket URL of the session channel
func (c *Client) SessionURL() (string, error) {
	u, err := url.Parse(c.baseURL + "/api/v1/session")
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	return u.String(), nil
}

// Health проверяет доступность сервера и его хранилища
func (c *Client) Health(ctx context.Context) error {
	status, body, err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return decodeError(status, body)
	}
	return nil
}

// CreateEntity создает сущность на сервере
func (c *Client) CreateEntity(ctx context.Context, id string, payload []byte) (*models.VersionedEntity, error) {
	req := api.CreateEntityRequest{ID: id, Payload: payload}

	var resp api.EntityResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/entities", req, &resp, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("create entity request failed: %w", err)
	}

	return resp.Model(), nil
}

// GetEntity получает текущее состояние сущности
func (c *Client) GetEntity(ctx context.Context, id string) (*models.VersionedEntity, error) {
	var resp api.EntityResponse
	if err := c.call(ctx, http.MethodGet, "/api/v1/entities/"+url.PathEscape(id), nil, &resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get entity request failed: %w", err)
	}

	return resp.Model(), nil
}

// ListEntities получает список сущностей
func (c *Client) ListEntities(ctx context.Context) ([]*models.VersionedEntity, error) {
	var resp []api.EntityResponse
	if err := c.call(ctx, http.MethodGet, "/api/v1/entities", nil, &resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("list entities request failed: %w", err)
	}

	entities := make([]*models.VersionedEntity, 0, len(resp))
	for i := range resp {
		entities = append(entities, resp[i].Model())
	}

	return entities, nil
}

// SaveEntity отправляет запись под оптимистичной блокировкой.
// Конфликт возвращается в SaveResult.Conflict, а не как ошибка.
func (c *Client) SaveEntity(ctx context.Context, intent models.WriteIntent) (*models.SaveResult, error) {
	req := api.SaveRequest{
		BaseVersion: intent.BaseVersion,
		Payload:     intent.ProposedPayload,
		Actor:       intent.Actor,
	}

	result, err := c.save(ctx, http.MethodPut, "/api/v1/entities/"+url.PathEscape(intent.EntityID), req)
	if err != nil {
		return nil, fmt.Errorf("save entity request failed: %w", err)
	}

	return result, nil
}

// ResolveConflict разрешает конфликт на сервере
func (c *Client) ResolveConflict(
	ctx context.Context,
	conflictID string,
	strategy models.Strategy,
	payload []byte,
	actor string,
) (*models.SaveResult, error) {
	req := api.ResolveRequest{
		Strategy: string(strategy),
		Payload:  payload,
		Actor:    actor,
	}

	path := "/api/v1/conflicts/" + url.PathEscape(conflictID) + "/resolve"
	result, err := c.save(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, fmt.Errorf("resolve conflict request failed: %w", err)
	}

	return result, nil
}

// GetConflict получает запись о конфликте
func (c *Client) GetConflict(ctx context.Context, id string) (*models.ConflictRecord, error) {
	var resp api.ConflictResponse
	if err := c.call(ctx, http.MethodGet, "/api/v1/conflicts/"+url.PathEscape(id), nil, &resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get conflict request failed: %w", err)
	}

	return resp.Model(), nil
}

// GetConflictHistory получает историю конфликтов сущности
func (c *Client) GetConflictHistory(ctx context.Context, entityID string) ([]*models.ConflictRecord, error) {
	var resp api.ConflictHistoryResponse
	path := "/api/v1/entities/" + url.PathEscape(entityID) + "/conflicts"
	if err := c.call(ctx, http.MethodGet, path, nil, &resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get conflict history request failed: %w", err)
	}

	records := make([]*models.ConflictRecord, 0, len(resp.Conflicts))
	for i := range resp.Conflicts {
		records = append(records, resp.Conflicts[i].Model())
	}

	return records, nil
}

// GetConflictAnalytics получает статистику конфликтов за период
func (c *Client) GetConflictAnalytics(ctx context.Context, timeRange models.TimeRange) (*models.ConflictAnalytics, error) {
	query := url.Values{}
	if !timeRange.From.IsZero() {
		query.Set("from", timeRange.From.UTC().Format(time.RFC3339))
	}
	if !timeRange.To.IsZero() {
		query.Set("to", timeRange.To.UTC().Format(time.RFC3339))
	}

	path := "/api/v1/analytics/conflicts"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var resp api.AnalyticsResponse
	if err := c.call(ctx, http.MethodGet, path, nil, &resp, http.StatusOK); err != nil {
		return nil, fmt.Errorf("get analytics request failed: %w", err)
	}

	return resp.Model(), nil
}

// save выполняет запрос, который может завершиться коммитом (200) или конфликтом (409)
func (c *Client) save(ctx context.Context, method, path string, body any) (*models.SaveResult, error) {
	status, respBody, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	if status == http.StatusOK || status == http.StatusConflict {
		var resp api.SaveResponse
		if err := json.Unmarshal(respBody, &resp); err == nil {
			switch {
			case resp.Status == api.StatusSaved && resp.Entity != nil:
				return resp.Model(), nil
			case resp.Status == api.StatusConflict && resp.Conflict != nil:
				return resp.Model(), nil
			}
		}
	}

	return nil, decodeError(status, respBody)
}

// call выполняет запрос и декодирует ответ, если статус равен expected
func (c *Client) call(ctx context.Context, method, path string, body, result any, expected int) error {
	status, respBody, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	if status != expected {
		return decodeError(status, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// doRequest выполняет HTTP запрос.
// Сетевые ошибки возвращаются как models.ErrStoreUnavailable: коммита не было.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, fmt.Errorf("request aborted: %w", ctx.Err())
		}
		return 0, nil, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to read response body: %w", models.ErrStoreUnavailable, err)
	}

	return resp.StatusCode, respBody, nil
}

// codeErrors сопоставляет коды ошибок сервера с ошибками движка
var codeErrors = map[string]error{
	api.CodeNotFound:          models.ErrNotFound,
	api.CodeConflictNotFound:  models.ErrConflictNotFound,
	api.CodeAlreadyExists:     models.ErrAlreadyExists,
	api.CodeInvalidResolution: models.ErrInvalidResolution,
	api.CodeInvalidRequest:    models.ErrInvalidIntent,
	api.CodeAlreadyResolved:   models.ErrAlreadyResolved,
	api.CodeStoreUnavailable:  models.ErrStoreUnavailable,
	api.CodeRateLimited:       models.ErrStoreUnavailable, // реплей встанет на паузу до следующего sync
	api.CodeUnauthorized:      ErrUnauthorized,
	api.CodeForbidden:         ErrForbidden,
}

// statusErrors используется, если тело ответа не содержит известного кода
var statusErrors = map[int]error{
	http.StatusNotFound:           models.ErrNotFound,
	http.StatusUnauthorized:       ErrUnauthorized,
	http.StatusForbidden:          ErrForbidden,
	http.StatusTooManyRequests:    models.ErrStoreUnavailable,
	http.StatusBadGateway:         models.ErrStoreUnavailable,
	http.StatusServiceUnavailable: models.ErrStoreUnavailable,
	http.StatusGatewayTimeout:     models.ErrStoreUnavailable,
}

func decodeError(status int, body []byte) error {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if target, ok := codeErrors[errResp.Error]; ok {
			return fmt.Errorf("%w: %s", target, errResp.Message)
		}
	}

	if target, ok := statusErrors[status]; ok {
		return fmt.Errorf("%w: server returned status %d", target, status)
	}

	return fmt.Errorf("request failed with status %d: %s", status, strings.TrimSpace(string(body)))
}
