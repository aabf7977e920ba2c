// Package session следит за каналом сессии сервера.
// Установленное WebSocket соединение означает online, его разрыв означает offline.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/iudanet/playsync/pkg/api"
)

// Watcher поддерживает соединение с каналом сессии и сообщает о смене состояния
type Watcher struct {
	dialer     *websocket.Dialer
	logger     *slog.Logger
	onOnline   func(ctx context.Context)
	onOffline  func(err error)
	onEvent    func(event api.SessionEvent)
	url        string
	token      string
	minBackoff time.Duration
	maxBackoff time.Duration
	pongWait   time.Duration
}

// Option configures the watcher
type Option func(*Watcher)

// WithBackoff задает границы экспоненциальной задержки переподключения
func WithBackoff(minBackoff, maxBackoff time.Duration) Option {
	return func(w *Watcher) {
		if minBackoff > 0 {
			w.minBackoff = minBackoff
		}
		if maxBackoff >= w.minBackoff {
			w.maxBackoff = maxBackoff
		}
	}
}

// WithPongWait задает максимальное время тишины до признания соединения мертвым
func WithPongWait(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pongWait = d
		}
	}
}

// OnOnline вызывается синхронно после установки соединения, долгую работу запускайте в горутине
func OnOnline(fn func(ctx context.Context)) Option {
	return func(w *Watcher) { w.onOnline = fn }
}

// OnOffline вызывается после разрыва соединения
func OnOffline(fn func(err error)) Option {
	return func(w *Watcher) { w.onOffline = fn }
}

// OnEvent вызывается для каждого события коммита
func OnEvent(fn func(event api.SessionEvent)) Option {
	return func(w *Watcher) { w.onEvent = fn }
}

// NewWatcher создает watcher для url канала сессии
func NewWatcher(url, token string, logger *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		url:        url,
		token:      token,
		logger:     logger,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second, Proxy: http.ProxyFromEnvironment},
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
		pongWait:   75 * time.Second,
		onOnline:   func(context.Context) {},
		onOffline:  func(error) {},
		onEvent:    func(api.SessionEvent) {},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// newBackoff: экспонента с разбросом 20%, чтобы клиенты не переподключались разом после рестарта сервера
func (w *Watcher) newBackoff() retry.Backoff {
	return retry.WithCappedDuration(w.maxBackoff, retry.WithJitterPercent(20, retry.NewExponential(w.minBackoff)))
}

// Run держит соединение до отмены ctx, переподключаясь с растущей задержкой
func (w *Watcher) Run(ctx context.Context) error {
	backoff := w.newBackoff()

	for {
		connected, err := w.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if connected {
			backoff = w.newBackoff()
			w.onOffline(err)
		}

		delay, _ := backoff.Next()
		w.logger.Debug("session reconnect scheduled",
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// session устанавливает одно соединение и читает его до разрыва
func (w *Watcher) session(ctx context.Context) (bool, error) {
	header := http.Header{}
	if w.token != "" {
		header.Set("Authorization", "Bearer "+w.token)
	}

	conn, resp, err := w.dialer.DialContext(ctx, w.url, header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return false, fmt.Errorf("session handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return false, fmt.Errorf("session dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Закрываем соединение при отмене, чтобы прервать ReadJSON
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	extend := func(string) error {
		return conn.SetReadDeadline(time.Now().Add(w.pongWait))
	}
	if err := extend(""); err != nil {
		return false, err
	}
	conn.SetPingHandler(func(data string) error {
		if err := extend(data); err != nil {
			return err
		}
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(10*time.Second))
	})

	w.logger.Info("session online", slog.String("url", w.url))
	w.onOnline(ctx)

	for {
		var event api.SessionEvent
		if err := conn.ReadJSON(&event); err != nil {
			w.logger.Info("session offline", slog.Any("error", err))
			return true, err
		}
		_ = extend("")

		if event.Type == api.EventCommitted {
			w.onEvent(event)
		}
	}
}
