package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/iudanet/playsync/internal/client/api"
	"github.com/iudanet/playsync/internal/client/storage"
	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/internal/validation"
)

// tokenClaims повторяет claims, которые выписывает сервер
type tokenClaims struct {
	Actor string `json:"actor"`
	jwt.RegisteredClaims
}

// parseToken читает claims без проверки подписи: секрет есть только у сервера
func parseToken(token string, now time.Time) (*tokenClaims, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims.Actor == "" {
		claims.Actor = claims.Subject
	}
	if err := validation.ValidateActor(claims.Actor); err != nil {
		return nil, fmt.Errorf("invalid token actor: %w", err)
	}

	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an actor token issued by the server",
		Long: `Store an actor token issued by the server.

Tokens are minted on the server host:
  playsync-server token --actor alice

The token is verified against the server unless --offline is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runLogin(cmd, token)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bearer token (prompted when omitted on a terminal)")

	return cmd
}

func (o *RootOptions) runLogin(cmd *cobra.Command, token string) error {
	ctx := cmd.Context()
	a := o.app

	if token == "" && o.IO.IsInteractive() {
		input, err := o.IO.ReadInput("Token: ")
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token = input
	}
	if token == "" {
		return fmt.Errorf("--token is required")
	}

	claims, err := parseToken(token, o.Now())
	if err != nil {
		return err
	}

	if a.cfg.Actor != "" && a.cfg.Actor != claims.Actor {
		return fmt.Errorf("configured actor %q does not match token actor %q", a.cfg.Actor, claims.Actor)
	}

	verified := false
	if !o.Offline {
		a.client.SetToken(token)
		_, err := a.client.ListEntities(ctx)
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			return fmt.Errorf("server rejected token: %w", err)
		case errors.Is(err, models.ErrStoreUnavailable):
			a.logger.Warn("Server is unreachable, token stored without verification", "error", err)
		case err != nil:
			return fmt.Errorf("failed to verify token: %w", err)
		default:
			verified = true
		}
	}

	auth := &storage.AuthData{
		Actor:     claims.Actor,
		Token:     token,
		ServerURL: a.cfg.ServerURL,
	}
	if claims.ExpiresAt != nil {
		auth.ExpiresAt = claims.ExpiresAt.Unix()
	}

	if err := a.store.SaveAuth(ctx, auth); err != nil {
		return fmt.Errorf("failed to save auth data: %w", err)
	}
	a.auth = auth

	if o.jsonOutput() {
		return o.printJSON(map[string]any{
			"actor":      auth.Actor,
			"server_url": auth.ServerURL,
			"expires_at": auth.ExpiresAt,
			"verified":   verified,
		})
	}

	o.IO.Printf("✓ Logged in as %s\n", auth.Actor)
	if !verified {
		o.IO.Println("⚠️  Token was not verified with the server.")
	}
	if auth.ExpiresAt > 0 {
		o.IO.Printf("Token expires: %s\n", time.Unix(auth.ExpiresAt, 0).Format(time.RFC3339))
	}

	return nil
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token of the current server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runLogout(cmd, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "remove tokens of every server")

	return cmd
}

func (o *RootOptions) runLogout(cmd *cobra.Command, all bool) error {
	ctx := cmd.Context()
	a := o.app

	servers := []string{a.cfg.ServerURL}
	if all {
		stored, err := a.store.ListAuth(ctx)
		if err != nil {
			return fmt.Errorf("failed to list stored tokens: %w", err)
		}
		servers = servers[:0]
		for _, auth := range stored {
			servers = append(servers, auth.ServerURL)
		}
	}

	for _, server := range servers {
		err := a.store.DeleteAuth(ctx, server)
		if errors.Is(err, storage.ErrAuthNotFound) && !all {
			return fmt.Errorf("%w for %s", ErrNotAuthenticated, server)
		}
		if err != nil {
			return fmt.Errorf("failed to delete auth data: %w", err)
		}
		o.IO.Printf("✓ Logged out of %s\n", server)
	}
	a.auth = nil

	// Очередь не очищаем: правки будут отправлены после следующего login
	counts, err := a.queue.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count queued edits: %w", err)
	}
	if waiting := counts[models.OperationPending] + counts[models.OperationConflictPendingResolution]; waiting > 0 {
		o.IO.Printf("⚠️  %d queued edit(s) will be replayed after the next login.\n", waiting)
	}

	return nil
}

// statusView - JSON представление команды status
type statusView struct {
	LastSync      *time.Time                     `json:"last_sync,omitempty"`
	LastReport    *storage.SyncReport            `json:"last_report,omitempty"`
	ExpiresAt     *time.Time                     `json:"expires_at,omitempty"`
	Queue         map[models.OperationStatus]int `json:"queue"`
	ServerURL     string                         `json:"server_url"`
	Actor         string                         `json:"actor,omitempty"`
	State         string                         `json:"state"`
	ServerError   string                         `json:"server_error,omitempty"`
	Authenticated bool                           `json:"authenticated"`
}

func newStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication, connectivity and queue status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runStatus(cmd)
		},
	}
}

func (o *RootOptions) runStatus(cmd *cobra.Command) error {
	ctx := cmd.Context()
	a := o.app

	view := statusView{
		ServerURL:     a.cfg.ServerURL,
		Authenticated: a.auth != nil,
	}
	if a.auth != nil {
		view.Actor = a.auth.Actor
		if a.auth.ExpiresAt > 0 {
			expiresAt := time.Unix(a.auth.ExpiresAt, 0)
			view.ExpiresAt = &expiresAt
		}
	}

	if !o.Offline {
		if err := a.client.Health(ctx); err != nil {
			a.coordinator.SetOnline(false)
			view.ServerError = err.Error()
		}
	}
	view.State = string(a.coordinator.Refresh(ctx))

	counts, err := a.queue.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count queued edits: %w", err)
	}
	view.Queue = counts

	lastSync, err := a.store.GetLastSyncTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("failed to get last sync time: %w", err)
	}
	if lastSync > 0 {
		ts := time.Unix(lastSync, 0)
		view.LastSync = &ts
	}

	view.LastReport, err = a.store.GetSyncReport(ctx)
	if err != nil {
		return fmt.Errorf("failed to get last sync report: %w", err)
	}

	if o.jsonOutput() {
		return o.printJSON(view)
	}

	o.IO.Println("=== Status ===")
	o.IO.Println()
	o.IO.Printf("Server:        %s\n", view.ServerURL)
	o.IO.Printf("State:         %s\n", view.State)
	if view.ServerError != "" {
		o.IO.Printf("Server error:  %s\n", view.ServerError)
	}

	if !view.Authenticated {
		o.IO.Println("Actor:         not authenticated")
	} else {
		o.IO.Printf("Actor:         %s\n", view.Actor)
		if view.ExpiresAt != nil {
			o.IO.Printf("Token expires: %s\n", view.ExpiresAt.Format(time.RFC3339))
			if !view.ExpiresAt.After(o.Now()) {
				o.IO.Println("⚠️  Token has expired. Please login again.")
			}
		}
	}

	if view.LastSync != nil {
		o.IO.Printf("Last sync:     %s\n", view.LastSync.Format(time.RFC3339))
	} else {
		o.IO.Println("Last sync:     never")
	}
	if report := view.LastReport; report != nil && !report.Drained() {
		o.IO.Printf("Last attempt:  %s, %d committed, %d conflict(s)\n",
			report.FinishedAt.Local().Format(time.RFC3339), report.Committed, report.Conflicts)
		if len(report.PausedEntities) > 0 {
			o.IO.Printf("Paused plays:  %s (server was unavailable)\n", strings.Join(report.PausedEntities, ", "))
		}
	}

	o.IO.Println()
	pending := counts[models.OperationPending]
	awaiting := counts[models.OperationConflictPendingResolution]
	switch {
	case awaiting > 0:
		o.IO.Printf("⚠️  %d edit(s) await conflict resolution, %d queued behind or elsewhere\n", awaiting, pending)
		o.IO.Println("Run 'playsync queue' to see them and 'playsync resolve' to resolve.")
	case pending > 0:
		o.IO.Printf("⚠️  Pending sync: %d edit(s) waiting to be replayed\n", pending)
		o.IO.Println("Run 'playsync sync' to replay them.")
	default:
		o.IO.Println("✓ No queued edits")
	}

	return nil
}
