package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/playsync/internal/client/api"
	"github.com/iudanet/playsync/internal/client/iocli"
	"github.com/iudanet/playsync/internal/client/queue"
	"github.com/iudanet/playsync/internal/client/storage"
	"github.com/iudanet/playsync/internal/client/storage/boltdb"
	"github.com/iudanet/playsync/internal/client/sync"
	"github.com/iudanet/playsync/internal/config"
)

var (
	// ErrNotAuthenticated is returned by commands that talk to the server before login
	ErrNotAuthenticated = errors.New("not authenticated. Please run 'playsync login' first")

	// ErrTokenExpired is returned when the stored token is past its expiry
	ErrTokenExpired = errors.New("token has expired. Please login again")

	// ErrUnresolvedConflict is returned when a command leaves a conflict awaiting resolution
	ErrUnresolvedConflict = errors.New("conflict awaits resolution")
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags and the dependencies shared by all commands.
type RootOptions struct {
	IO        iocli.IO
	LogOutput io.Writer         // куда пишет slog; по умолчанию os.Stderr
	LookupEnv config.LookupFunc // по умолчанию os.LookupEnv
	Now       func() time.Time

	app *app

	ConfigPath string
	ServerURL  string
	DBPath     string
	Actor      string
	Format     string
	Offline    bool
}

// app собирается в PersistentPreRunE и живет до Close
type app struct {
	cfg         config.ClientConfig
	logger      *slog.Logger
	store       *boltdb.Storage
	client      *api.Client
	queue       *queue.Queue
	coordinator *sync.Coordinator
	auth        *storage.AuthData // nil до login
}

// NewRootCommand creates the root command for the playsync client.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playsync",
		Short: "Collaborative play editor with offline sync",
		Long: `playsync edits shared plays stored on a playsync server.

Every write carries the version it was based on. A stale write is rejected
with a conflict record that can be resolved with server_wins, client_wins
or merge. Edits made offline are queued locally and replayed by 'sync'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.Close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	flags.StringVar(&opts.ServerURL, "server", "", "server URL (overrides config)")
	flags.StringVar(&opts.DBPath, "db", "", "path to local database (overrides config)")
	flags.StringVar(&opts.Actor, "actor", "", "expected actor name; must match the stored token")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.BoolVar(&opts.Offline, "offline", false, "do not contact the server, queue edits locally")

	cmd.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newStatusCommand(opts),
		newCreateCommand(opts),
		newGetCommand(opts),
		newListCommand(opts),
		newSaveCommand(opts),
		newQueueCommand(opts),
		newSyncCommand(opts),
		newResolveCommand(opts),
		newAbandonCommand(opts),
		newHistoryCommand(opts),
		newAnalyticsCommand(opts),
		newWatchCommand(opts),
	)

	return cmd
}

// Close releases the local database. Safe to call more than once.
func (o *RootOptions) Close() error {
	if o.app == nil {
		return nil
	}
	err := o.app.store.Close()
	o.app = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	if o.IO == nil {
		o.IO = iocli.NewStdio()
	}
	if o.LogOutput == nil {
		o.LogOutput = os.Stderr
	}
	if o.LookupEnv == nil {
		o.LookupEnv = os.LookupEnv
	}
	if o.Now == nil {
		o.Now = time.Now
	}

	cfg, err := config.LoadClientConfig(o.ConfigPath, o.LookupEnv)
	if err != nil {
		return err
	}

	// Флаги имеют приоритет над файлом и окружением
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = o.ServerURL
	}
	if flags.Changed("db") {
		cfg.DBPath = o.DBPath
	}
	if flags.Changed("actor") {
		cfg.Actor = o.Actor
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Log.NewLogger(o.LogOutput)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	auth, err := store.GetAuth(ctx, cfg.ServerURL)
	if err != nil {
		if !errors.Is(err, storage.ErrAuthNotFound) {
			_ = store.Close()
			return fmt.Errorf("failed to get auth data: %w", err)
		}
		auth = nil
	}

	clientOpts := []api.Option{api.WithTimeout(cfg.RequestTimeout)}
	if auth != nil {
		clientOpts = append(clientOpts, api.WithToken(auth.Token))
	}
	client := api.NewClient(cfg.ServerURL, clientOpts...)

	q := queue.New(store, logger)

	coordinatorOpts := []sync.Option{sync.WithParallelism(cfg.Parallelism)}
	if strategy, ok, _ := cfg.AutoResolveStrategy(); ok {
		coordinatorOpts = append(coordinatorOpts, sync.WithAutoResolve(strategy))
	}
	coordinator := sync.NewCoordinator(client, q, store, logger, coordinatorOpts...)
	coordinator.SetOnline(!o.Offline)

	o.app = &app{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		client:      client,
		queue:       q,
		coordinator: coordinator,
		auth:        auth,
	}

	return nil
}

// actor возвращает актора из сохраненного токена
func (o *RootOptions) actor() (string, error) {
	a := o.app
	if a.auth == nil {
		return "", ErrNotAuthenticated
	}
	if a.auth.Expired(o.Now().Unix()) {
		return "", ErrTokenExpired
	}
	if a.cfg.Actor != "" && a.cfg.Actor != a.auth.Actor {
		return "", fmt.Errorf("configured actor %q does not match token actor %q", a.cfg.Actor, a.auth.Actor)
	}
	return a.auth.Actor, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
