package handlers

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/pkg/api"
)

// SessionConfig configures the session channel
type SessionConfig struct {
	// PingInterval is how often the server pings connected clients
	PingInterval time.Duration
	// WriteTimeout for WebSocket writes
	WriteTimeout time.Duration
	// BufferSize is the per-connection event buffer
	BufferSize int
}

// DefaultSessionConfig returns default session configuration
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		BufferSize:   64,
	}
}

type sessionClient struct {
	events chan api.SessionEvent
	done   chan struct{}
	actor  string
	once   sync.Once
}

func (c *sessionClient) close() {
	c.once.Do(func() { close(c.done) })
}

// SessionHub рассылает события коммитов подключенным клиентам.
// Само подключение служит клиенту сигналом online/offline.
type SessionHub struct {
	logger   *slog.Logger
	clients  map[*sessionClient]struct{}
	upgrader websocket.Upgrader
	config   SessionConfig
	mu       sync.RWMutex
}

// NewSessionHub создает новый hub
func NewSessionHub(logger *slog.Logger, cfg SessionConfig) *SessionHub {
	defaults := DefaultSessionConfig()
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaults.BufferSize
	}

	return &SessionHub{
		logger:  logger,
		config:  cfg,
		clients: make(map[*sessionClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Publish отправляет событие коммита всем клиентам.
// Не блокируется: при переполненном буфере событие для клиента отбрасывается.
func (h *SessionHub) Publish(event models.CommitEvent) {
	msg := api.SessionEvent{
		Type:     api.EventCommitted,
		At:       event.At,
		EntityID: event.EntityID,
		Actor:    event.Actor,
		Version:  event.Version,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.events <- msg:
		default:
			h.logger.Warn("session buffer full, dropping event",
				slog.String("actor", c.actor),
				slog.String("entity_id", event.EntityID),
			)
		}
	}
}

// Count returns the number of connected clients
func (h *SessionHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close отключает всех клиентов
func (h *SessionHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}

func (h *SessionHub) register(c *sessionClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *SessionHub) unregister(c *sessionClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// ServeWS обрабатывает GET /api/v1/session
func (h *SessionHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer func() { _ = conn.Close() }()

	client := &sessionClient{
		actor:  actor,
		events: make(chan api.SessionEvent, h.config.BufferSize),
		done:   make(chan struct{}),
	}
	h.register(client)
	defer h.unregister(client)

	h.logger.Info("session opened", slog.String("actor", actor))
	defer h.logger.Info("session closed", slog.String("actor", actor))

	// Читаем входящие сообщения только ради control frames и обнаружения разрыва
	go func() {
		defer client.close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, api.SessionEvent{Type: api.EventHello, At: time.Now(), Actor: actor}); err != nil {
		return
	}

	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-client.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(h.config.WriteTimeout))
			return
		case <-r.Context().Done():
			return
		case event := <-client.events:
			if err := h.write(conn, event); err != nil {
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (h *SessionHub) write(conn *websocket.Conn, event api.SessionEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout)); err != nil {
		return err
	}
	if err := conn.WriteJSON(event); err != nil {
		h.logger.Debug("session write failed", slog.Any("error", err))
		return err
	}
	return nil
}
