package storage

import (
	"context"
	"strings"
)

// AuthStorage хранит токены актора, по одному на сервер
type AuthStorage interface {
	// SaveAuth stores the token for auth.ServerURL, replacing an earlier one
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth returns ErrAuthNotFound if there is no token for the server
	GetAuth(ctx context.Context, serverURL string) (*AuthData, error)

	// DeleteAuth returns ErrAuthNotFound if there is no token for the server
	DeleteAuth(ctx context.Context, serverURL string) error

	// ListAuth returns tokens of every server ordered by server URL
	ListAuth(ctx context.Context) ([]*AuthData, error)
}

// AuthData represents authentication information in storage.
// Token is the bearer JWT issued by the server; its subject is the actor.
type AuthData struct {
	Actor     string `json:"actor"`
	Token     string `json:"token"`
	ServerURL string `json:"server_url"`
	ExpiresAt int64  `json:"expires_at"` // Unix seconds, 0 - без срока
}

// Expired reports whether the token is past its expiry at unix time now
func (a *AuthData) Expired(now int64) bool {
	return a.ExpiresAt > 0 && now >= a.ExpiresAt
}

// ServerKey нормализует URL сервера: http://host:8080/ и http://host:8080 один ключ
func ServerKey(serverURL string) string {
	return strings.TrimRight(strings.TrimSpace(serverURL), "/")
}
